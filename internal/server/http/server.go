// Package http exposes the AudioVault service over HTTP: routing, bearer-token
// auth middleware, and JSON request handlers.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/audiovault/audiovault/internal/logging"
	"github.com/audiovault/audiovault/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	audio     *services.AudioFileService
	jwtSecret []byte
	validate  *validator.Validate
}

func NewServer(address string, l logging.Logger, us *services.UserService, as *services.AudioFileService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		audio:     as,
		jwtSecret: []byte(secretKey),
		validate:  validator.New(),
	}
}

// Router builds the chi router. CORS runs first so browser preflight
// requests never reach the auth middleware; everything except /login,
// /refresh and /ping requires a bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", s.handlePing)
	r.Post("/login", s.handleLogin)
	r.Post("/refresh", s.handleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users", s.handleListUsers)
		r.Put("/users/username", s.handleUpdateOwnUsername)
		r.Put("/users/password", s.handleUpdateOwnPassword)
		r.Put("/users/{id}", s.handleUpdateUser)
		r.Delete("/users/{id}", s.handleDeleteUser)

		r.Post("/audiofiles", s.handleUploadAudioFile)
		r.Get("/audiofiles", s.handleListAudioFiles)
		r.Get("/audiofiles/favourites", s.handleListFavourites)
		r.Delete("/audiofiles/{id}", s.handleDeleteAudioFile)
		r.Patch("/audiofiles/{id}/like", s.handleLikeAudioFile)
	})

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}
