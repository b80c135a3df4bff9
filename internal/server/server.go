// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: it opens the store, builds every
// service and handler, and decides which URL maps to which handler.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → sqlite.DB → service.*Service → handler.*Handler → routes
//
// Each layer only receives what it needs. Services get repository
// interfaces, handlers get narrow service interfaces, and nothing below the
// server knows the others are concrete.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/volcano-explorer/internal/auth"
	"github.com/sakif/volcano-explorer/internal/config"
	"github.com/sakif/volcano-explorer/internal/handler"
	"github.com/sakif/volcano-explorer/internal/middleware"
	"github.com/sakif/volcano-explorer/internal/moderation"
	sqliteRepo "github.com/sakif/volcano-explorer/internal/repository/sqlite"
	"github.com/sakif/volcano-explorer/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed when Start returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens (and migrates) the database and wires every route.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqliteRepo.New(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER:
//  1. RequestID    → X-Request-ID for tracing, read by the logger
//  2. RealIP       → client IP from proxy headers
//  3. Logger       → one line per request
//  4. Recoverer    → panics become 500 instead of killing the process
//  5. Authenticate → caller identity; bad or expired tokens stop here with 401
//
// Authorization itself lives in the services. RequireAuth only fronts routes
// whose single input is the path id, so it cannot reorder any validation.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.Auth.JWTSecret, s.config.Auth.JWTIssuer, s.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.Auth.BcryptCost)
	filter := moderation.NewFilter(s.config.Moderation.ExtraWords()...)

	// === Services ===
	volcanoes := service.NewVolcanoService(s.db, s.logger)
	accounts := service.NewAccountService(s.db, passwords, tokens, s.logger)
	favorites := service.NewFavoriteService(s.db, volcanoes, s.logger)
	comments := service.NewCommentService(s.db, volcanoes, filter, s.logger)
	images := service.NewImageService(s.db, volcanoes, s.logger)
	guesses := service.NewGuessService(s.db, volcanoes, service.YearBounds{
		MinYear:       s.config.Guess.MinYear,
		MaxYearsAhead: s.config.Guess.MaxYearsAhead,
	}, s.logger)

	// === Handlers ===
	volcanoH := handler.NewVolcanoHandler(volcanoes, s.logger)
	userH := handler.NewUserHandler(accounts, s.logger)
	favoriteH := handler.NewFavoriteHandler(favorites, s.logger)
	commentH := handler.NewCommentHandler(comments, s.logger)
	imageH := handler.NewImageHandler(images, s.logger)
	guessH := handler.NewGuessHandler(guesses, s.logger)
	metaH := handler.NewMetaHandler(handler.Owner{
		Name:          s.config.Owner.Name,
		StudentNumber: s.config.Owner.StudentNumber,
	}, s.db, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(auth.Authenticate(tokens))

	r := s.router

	r.Get("/me", metaH.HandleMe)
	r.Get("/health", metaH.HandleHealth)

	r.Get("/countries", volcanoH.HandleCountries)
	r.Get("/volcanoes", volcanoH.HandleList)
	r.Get("/volcanoes/random", volcanoH.HandleRandom)
	r.Get("/volcanoes/list", volcanoH.HandleListByIDs)

	r.Route("/volcano/{id}", func(r chi.Router) {
		r.Get("/", volcanoH.HandleGet)
		r.Get("/comments", commentH.HandleList)
		r.Post("/comments", commentH.HandlePost)
		r.Get("/images", imageH.HandleList)
		r.Post("/images", imageH.HandlePost)
		r.Get("/eruptions", guessH.HandleStats)
		r.Post("/eruptions", guessH.HandleSet)
	})

	r.Route("/comments/{commentID}", func(r chi.Router) {
		r.Get("/", commentH.HandleGet)
		r.Put("/", commentH.HandleUpdate)
		r.With(auth.RequireAuth).Delete("/", commentH.HandleDelete)
		r.With(auth.RequireAuth).Post("/report", commentH.HandleReport)
	})

	r.Route("/images/{imageID}", func(r chi.Router) {
		r.With(auth.RequireAuth).Delete("/", imageH.HandleDelete)
		r.With(auth.RequireAuth).Post("/report", imageH.HandleReport)
	})

	r.Route("/user", func(r chi.Router) {
		r.Post("/register", userH.HandleRegister)
		r.Post("/login", userH.HandleLogin)
		r.Get("/{email}/profile", userH.HandleGetProfile)
		r.Put("/{email}/profile", userH.HandleUpdateProfile)
		r.Get("/{email}/favorites", favoriteH.HandleList)
	})

	r.Post("/favorites", favoriteH.HandleAdd)
	r.Delete("/favorites/{volcanoID}", favoriteH.HandleRemove)

	return nil
}

// Start serves until ctx is cancelled, then shuts down gracefully:
//  1. stop accepting new connections
//  2. wait up to server.shutdown_timeout for in-flight requests
//  3. close the database (checkpoints the WAL, releases the file)
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.config.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.Database.Path),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// Close releases the database without serving. Start closes it itself.
func (s *Server) Close() error {
	return s.db.Close()
}
