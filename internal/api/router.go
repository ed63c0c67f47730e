package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/askeladd/deckforge/internal/pkgservice"
)

// RouterOptions configures the HTTP router.
type RouterOptions struct {
	AuthEnabled   bool
	AuthToken     string
	PublicBaseURL string
	// Events, if non-nil, is mounted at GET /events (SSE stream of
	// artifact creation events).
	Events http.Handler
}

// NewRouter creates a chi router with all routes mounted at the root,
// matching the original API surface.
func NewRouter(svc *pkgservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc, opts.PublicBaseURL)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.AllowAll().Handler)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Group(func(gr chi.Router) {
		gr.Use(AuthMiddleware(opts.AuthEnabled, opts.AuthToken))

		gr.Get("/", h.Root)
		gr.Post("/generate_flashcards/", h.Generate)
		gr.Get("/download/{filename}", h.Download)
		gr.Post("/upload_media/", h.UploadMedia)

		if opts.Events != nil {
			gr.Get("/events", opts.Events.ServeHTTP)
		}
	})

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
