package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/askeladd/deckforge/internal/pkgservice"
	"github.com/askeladd/deckforge/internal/testutil"
)

// testEnv sets up a temp storage root, service, and router for testing.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*pkgservice.Service, http.Handler) {
	t.Helper()
	store, _ := testutil.TestStore(t)
	svc := pkgservice.NewService(store)
	router := NewRouter(svc, RouterOptions{
		AuthEnabled: authToken != "",
		AuthToken:   authToken,
	})
	return svc, router
}

func validBody() map[string]any {
	return map[string]any{
		"model": map[string]any{
			"name":   "Basic Model",
			"fields": []string{"Front", "Back"},
			"templates": []map[string]string{
				{"name": "Card 1", "qfmt": "{{Front}}", "afmt": "{{FrontSide}}<hr id='answer'>{{Back}}"},
			},
			"css": ".card { font-family: arial; }",
		},
		"decks": []map[string]any{
			{
				"name":        "Geography Deck",
				"description": "A deck for learning world geography",
				"notes": []map[string]any{
					{"fields": []string{"What is the capital of France?", "Paris"}, "tags": []string{"geography"}},
				},
			},
		},
	}
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRootGreeting(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp["message"], "Deckforge") {
		t.Errorf("message = %q", resp["message"])
	}
}

func TestGenerateAndDownload(t *testing.T) {
	store, root := testutil.TestStore(t)
	router := NewRouter(pkgservice.NewService(store), RouterOptions{})

	w := postJSON(t, router, "/generate_flashcards/", validBody())
	if w.Code != http.StatusOK {
		t.Fatalf("generate status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp GenerateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Message == "" {
		t.Error("empty message")
	}
	idx := strings.Index(resp.DownloadURL, "/download/")
	if idx < 0 {
		t.Fatalf("download_url = %q", resp.DownloadURL)
	}
	if !strings.HasPrefix(resp.DownloadURL, "http://") {
		t.Errorf("download_url not absolute: %q", resp.DownloadURL)
	}

	// Download the artifact through the API.
	req := httptest.NewRequest(http.MethodGet, resp.DownloadURL[idx:], nil)
	dw := httptest.NewRecorder()
	router.ServeHTTP(dw, req)
	if dw.Code != http.StatusOK {
		t.Fatalf("download status = %d", dw.Code)
	}
	if cd := dw.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	// The stream must be the stored artifact, byte for byte.
	filename := resp.DownloadURL[idx+len("/download/"):]
	want, err := os.ReadFile(filepath.Join(root, filename))
	if err != nil {
		t.Fatalf("read stored artifact: %v", err)
	}
	if !bytes.Equal(dw.Body.Bytes(), want) {
		t.Error("downloaded bytes differ from the stored artifact")
	}
	if len(want) < 4 || string(want[:2]) != "PK" {
		t.Error("artifact is not a zip archive")
	}
}

func TestGenerate_PublicBaseURL(t *testing.T) {
	store, _ := testutil.TestStore(t)
	svc := pkgservice.NewService(store)
	router := NewRouter(svc, RouterOptions{PublicBaseURL: "https://decks.example.com/"})

	w := postJSON(t, router, "/generate_flashcards/", validBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp GenerateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.HasPrefix(resp.DownloadURL, "https://decks.example.com/download/") {
		t.Errorf("download_url = %q", resp.DownloadURL)
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/generate_flashcards/", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerate_ShapeValidation(t *testing.T) {
	_, router := testEnv(t, "")

	noDecks := validBody()
	noDecks["decks"] = []map[string]any{}
	if w := postJSON(t, router, "/generate_flashcards/", noDecks); w.Code != http.StatusBadRequest {
		t.Errorf("no decks: status = %d, want 400", w.Code)
	}

	noFields := validBody()
	noFields["model"].(map[string]any)["fields"] = []string{}
	if w := postJSON(t, router, "/generate_flashcards/", noFields); w.Code != http.StatusBadRequest {
		t.Errorf("no model fields: status = %d, want 400", w.Code)
	}

	noTemplates := validBody()
	noTemplates["model"].(map[string]any)["templates"] = []map[string]string{}
	if w := postJSON(t, router, "/generate_flashcards/", noTemplates); w.Code != http.StatusBadRequest {
		t.Errorf("no templates: status = %d, want 400", w.Code)
	}
}

func TestDownload_NotFound(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodGet, "/download/never-built.apkg", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload_media/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUploadMedia_AndOverwrite(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadFile(t, router, "sound.mp3", []byte("first"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp MediaUploadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Filename != "sound.mp3" || resp.Status == "" {
		t.Errorf("response = %+v", resp)
	}

	// Same name again: last writer wins.
	if w := uploadFile(t, router, "sound.mp3", []byte("second")); w.Code != http.StatusOK {
		t.Fatalf("second upload status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/download/sound.mp3", nil)
	dw := httptest.NewRecorder()
	router.ServeHTTP(dw, req)
	if dw.Code != http.StatusOK {
		t.Fatalf("download status = %d", dw.Code)
	}
	body, _ := io.ReadAll(dw.Body)
	if string(body) != "second" {
		t.Errorf("downloaded %q, want the second upload's bytes", body)
	}
}

func TestUploadMedia_MissingFileField(t *testing.T) {
	_, router := testEnv(t, "")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "x")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload_media/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuth_TokenMode(t *testing.T) {
	_, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", w.Code)
	}

	// Health endpoints stay open.
	req = httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", w.Code)
	}
}
