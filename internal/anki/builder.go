package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/askeladd/deckforge/internal/models"
)

// fieldSeparator joins note field values in the flds column.
const fieldSeparator = "\x1f"

// MediaResolver maps a media filename from the request to a readable path
// on disk. Returning an error fails the build.
type MediaResolver func(name string) (string, error)

// WritePackage serializes pkg into w as an .apkg archive: a schema-11
// collection database, a media manifest, and the media payloads. Model and
// deck ids are assigned fresh for this call only; identical input produces
// semantically equivalent output with different ids. Nothing is written to
// w until the collection database has been built completely.
func WritePackage(ctx context.Context, w io.Writer, pkg models.Package, resolveMedia MediaResolver) error {
	tmpDir, err := os.MkdirTemp("", "deckforge-build-*")
	if err != nil {
		return fmt.Errorf("anki: create build dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "collection.anki2")
	if err := writeCollection(ctx, dbPath, pkg); err != nil {
		return err
	}

	zw := zip.NewWriter(w)

	entry, err := zw.Create("collection.anki2")
	if err != nil {
		return fmt.Errorf("anki: create archive entry: %w", err)
	}
	db, err := os.Open(dbPath)
	if err != nil {
		return fmt.Errorf("anki: open collection: %w", err)
	}
	_, err = io.Copy(entry, db)
	db.Close()
	if err != nil {
		return fmt.Errorf("anki: copy collection: %w", err)
	}

	manifest := make(map[string]string, len(pkg.MediaFiles))
	for i, name := range pkg.MediaFiles {
		index := strconv.Itoa(i)
		if err := addMediaEntry(zw, index, name, resolveMedia); err != nil {
			return err
		}
		manifest[index] = name
	}

	entry, err = zw.Create("media")
	if err != nil {
		return fmt.Errorf("anki: create media manifest: %w", err)
	}
	if err := json.NewEncoder(entry).Encode(manifest); err != nil {
		return fmt.Errorf("anki: write media manifest: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("anki: finalize archive: %w", err)
	}
	return nil
}

func addMediaEntry(zw *zip.Writer, index, name string, resolveMedia MediaResolver) error {
	if resolveMedia == nil {
		return fmt.Errorf("anki: media file %q requested but no resolver configured", name)
	}
	path, err := resolveMedia(name)
	if err != nil {
		return fmt.Errorf("anki: resolve media %q: %w", name, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("anki: open media %q: %w", name, err)
	}
	defer src.Close()

	entry, err := zw.Create(index)
	if err != nil {
		return fmt.Errorf("anki: create media entry: %w", err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("anki: copy media %q: %w", name, err)
	}
	return nil
}

// writeCollection builds the collection.anki2 database at dbPath.
func writeCollection(ctx context.Context, dbPath string, pkg models.Package) error {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("anki: open collection db: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, collectionSchemaSQL); err != nil {
		return fmt.Errorf("anki: apply collection schema: %w", err)
	}

	now := time.Now()
	ids := newIDAssigner()
	modelID := ids.Next()
	deckIDs := make([]int64, len(pkg.Decks))
	for i := range pkg.Decks {
		deckIDs[i] = ids.Next()
	}

	if err := insertColRow(ctx, conn, pkg, modelID, deckIDs, now); err != nil {
		return err
	}
	return insertNotes(ctx, conn, pkg, modelID, deckIDs, now)
}

func insertColRow(ctx context.Context, conn *sql.DB, pkg models.Package, modelID int64, deckIDs []int64, now time.Time) error {
	confJSON, err := json.Marshal(newColConf(modelID))
	if err != nil {
		return fmt.Errorf("anki: marshal conf: %w", err)
	}

	modelsJSON, err := json.Marshal(map[string]colModel{
		strconv.FormatInt(modelID, 10): newColModel(modelID, pkg.Model, now),
	})
	if err != nil {
		return fmt.Errorf("anki: marshal models: %w", err)
	}

	decks := map[string]colDeck{
		"1": newDefaultDeck(now),
	}
	for i, d := range pkg.Decks {
		decks[strconv.FormatInt(deckIDs[i], 10)] = newColDeck(deckIDs[i], d.Name, d.Description, now)
	}
	decksJSON, err := json.Marshal(decks)
	if err != nil {
		return fmt.Errorf("anki: marshal decks: %w", err)
	}

	dconfJSON, err := json.Marshal(map[string]colDeckConf{
		"1": newDefaultDeckConf(now),
	})
	if err != nil {
		return fmt.Errorf("anki: marshal dconf: %w", err)
	}

	crt := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	_, err = conn.ExecContext(ctx, `
		INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')
	`, crt.Unix(), now.UnixMilli(), now.UnixMilli(), collectionSchemaVersion,
		string(confJSON), string(modelsJSON), string(decksJSON), string(dconfJSON))
	if err != nil {
		return fmt.Errorf("anki: insert col row: %w", err)
	}
	return nil
}

// insertNotes materializes every note and its cards in input order. Field
// values bind to the model's fields by position: short notes are padded
// with empty values, excess values are dropped. One card is generated per
// template, scheduled as new.
func insertNotes(ctx context.Context, conn *sql.DB, pkg models.Package, modelID int64, deckIDs []int64, now time.Time) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("anki: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	noteStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')
	`)
	if err != nil {
		return fmt.Errorf("anki: prepare note insert: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl,
		                   factor, reps, lapses, left, odue, odid, flags, data)
		VALUES (?, ?, ?, ?, ?, -1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, '')
	`)
	if err != nil {
		return fmt.Errorf("anki: prepare card insert: %w", err)
	}
	defer cardStmt.Close()

	// Row ids start at the build timestamp and increment, matching how
	// Anki allocates ids for locally created rows.
	rowID := now.UnixMilli()
	nextID := func() int64 {
		id := rowID
		rowID++
		return id
	}

	for di, deck := range pkg.Decks {
		for _, note := range deck.Notes {
			fields := normalizeFields(note.Fields, len(pkg.Model.Fields))
			guid := note.GUID
			if guid == "" {
				guid = GUID(fields)
			}
			sortField := ""
			if len(fields) > 0 {
				sortField = fields[0]
			}

			noteID := nextID()
			_, err := noteStmt.ExecContext(ctx, noteID, guid, modelID, now.Unix(),
				formatTags(note.Tags), strings.Join(fields, fieldSeparator),
				sortField, fieldChecksum(sortField))
			if err != nil {
				return fmt.Errorf("anki: insert note: %w", err)
			}

			for ord := range pkg.Model.Templates {
				_, err := cardStmt.ExecContext(ctx, nextID(), noteID, deckIDs[di], ord, now.Unix())
				if err != nil {
					return fmt.Errorf("anki: insert card: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("anki: commit: %w", err)
	}
	return nil
}

// normalizeFields pads or truncates values to exactly n entries.
func normalizeFields(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}

// formatTags renders the notes.tags column: space-separated with leading
// and trailing spaces, or empty when the note has no tags.
func formatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return " " + strings.Join(tags, " ") + " "
}
