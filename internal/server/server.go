// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency in the app is wired here,
// in one place.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Load() → Server.New() creates:
//	  sqlite.DB        → UserRepository + FavoriteRepository
//	  redis.Client     → session.Store
//	  catalog.Client   → BrowseService
//	  services         → handlers → routes
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services, the router gets handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"

	"github.com/sakif/gameshelf/internal/auth"
	"github.com/sakif/gameshelf/internal/catalog"
	"github.com/sakif/gameshelf/internal/config"
	"github.com/sakif/gameshelf/internal/handler"
	"github.com/sakif/gameshelf/internal/middleware"
	sqliteRepo "github.com/sakif/gameshelf/internal/repository/sqlite"
	"github.com/sakif/gameshelf/internal/service"
	"github.com/sakif/gameshelf/internal/session"
)

// Server owns the router and every long-lived resource behind it. The
// database and Redis connections are opened in New and closed during
// graceful shutdown in Start.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	rdb    *redis.Client
}

// New assembles the full dependency chain and registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	// Fail at startup, not on the first request, if Redis is unreachable.
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		rdb:    rdb,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /                        → redirect to /titles
//	GET  /static/*                → static files (CSS, images)
//	GET  /titles                  → games added over the last nine months
//	GET  /titles/upcoming         → games releasing over the next nine months
//	GET  /titles/newest           → games from the last month
//	GET  /titles/next_page        → follow the session's forward cursor
//	GET  /titles/previous_page    → follow the session's backward cursor
//	GET  /titles/{id}             → single game page
//	GET  /genre/{slug}            → recent games of one genre
//	GET  /genre/next_page         → forward cursor (genre context rides in the session)
//	GET  /genre/previous_page     → backward cursor
//	GET/POST /signup, /login      → auth forms
//	POST /logout                  → destroy session
//	POST /favorites               → add a favorite          (login required)
//	GET  /favorites               → favorites shelf         (login required)
//	POST /favorites/{id}/delete   → remove a favorite       (login required)
//	POST /account/delete          → delete account+favorites (login required)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Static files bypass the session middleware; a CSS request should not
	// mint a session or hit Redis.
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	render, err := handler.NewRenderer(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	codec, err := session.NewCodec(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session codec: %w", err)
	}
	store := session.NewStore(s.rdb)

	catalogClient := catalog.New(s.config.RawgBaseURL, s.config.RawgAPIKey, s.logger)

	authService := service.NewAuthService(s.db, auth.NewPasswordService(), s.logger)
	favoriteService := service.NewFavoriteService(s.db, s.logger)
	browseService := service.NewBrowseService(catalogClient, s.logger)

	pages := handler.NewPageHandler(browseService, render, s.logger)
	authHandler := handler.NewAuthHandler(authService, render, s.logger)
	favorites := handler.NewFavoriteHandler(favoriteService, render, s.logger)

	s.router.Group(func(r chi.Router) {
		r.Use(session.Middleware(store, codec, s.logger))

		r.Get("/", pages.HandleRoot)

		r.Get("/titles", pages.HandleHome)
		r.Get("/titles/upcoming", pages.HandleUpcoming)
		r.Get("/titles/newest", pages.HandleNewest)
		r.Get("/titles/next_page", pages.HandleNextPage)
		r.Get("/titles/previous_page", pages.HandlePreviousPage)
		r.Get("/titles/{id}", pages.HandleGameDetail)

		r.Get("/genre/{slug}", pages.HandleGenre)
		r.Get("/genre/next_page", pages.HandleNextPage)
		r.Get("/genre/previous_page", pages.HandlePreviousPage)

		r.Get("/signup", authHandler.HandleSignupForm)
		r.Post("/signup", authHandler.HandleSignup)
		r.Get("/login", authHandler.HandleLoginForm)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		// Routes that require a logged-in session.
		r.Group(func(pr chi.Router) {
			pr.Use(auth.RequireUser)

			pr.Get("/favorites", favorites.HandleList)
			pr.Post("/favorites", favorites.HandleAdd)
			pr.Post("/favorites/{id}/delete", favorites.HandleRemove)
			pr.Post("/account/delete", authHandler.HandleDeleteAccount)
		})
	})

	return nil
}

// Start runs the HTTP server until a shutdown signal arrives, then drains
// in-flight requests and closes the database and Redis connections.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.rdb.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("redis", s.config.RedisAddr),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
