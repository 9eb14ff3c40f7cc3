// Package server assembles the application: it opens the store, builds the
// services and handlers, and mounts them on a chi router.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config
//	  → sqldb.DB (Users/Recipes/Favorites/MealPlans stores)
//	  → auth.PasswordService, auth.TokenService
//	  → service.*Service (take repository interfaces)
//	  → handler.*Handler (take services)
//	  → routes
//
// This is the composition root: the only place that knows the concrete type
// behind every interface.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/mealdb/internal/auth"
	"github.com/sakif/mealdb/internal/config"
	"github.com/sakif/mealdb/internal/handler"
	"github.com/sakif/mealdb/internal/mealdb"
	"github.com/sakif/mealdb/internal/middleware"
	"github.com/sakif/mealdb/internal/repository/sqldb"
	"github.com/sakif/mealdb/internal/service"
)

// shutdownTimeout is how long in-flight requests get to finish.
const shutdownTimeout = 30 * time.Second

// Server owns the router and the database pool. The pool is closed when
// Start returns, or by Close for servers that never start (tests).
type Server struct {
	router chi.Router
	config config.Config
	logger *slog.Logger
	db     *sqldb.DB
}

// New opens and migrates the database described by cfg and wires every
// route. A failure at any step closes what was already opened.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL.Duration)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	meals, err := mealdb.NewClient(cfg.MealDB.BaseURL, cfg.MealDB.Timeout.Duration, logger)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	db, err := sqldb.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(passwords, tokens, meals)
	return s, nil
}

// setupRoutes configures middleware and every route.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: tags the request so log lines can be correlated
//  2. RealIP: client address from proxy headers
//  3. Logger and Metrics: observe the final status, including panics
//  4. Recoverer: turns a panic into a 500
//  5. CORS: answers browser preflights, which carry no token
//  6. RateLimit: rejects before any work is done
//  7. Identify: first auth stage, never rejects
//
// The second auth stage (RequireIdentity, RequireAdmin, RequireSelfOrAdmin)
// is attached per route group below.
func (s *Server) setupRoutes(passwords *auth.PasswordService, tokens *auth.TokenService, meals handler.MealFetcher) {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(s.config.CORSAllowedOrigins))
	r.Use(middleware.RateLimit(s.config.RateLimit, s.config.RateBurst))
	r.Use(auth.Identify(tokens))

	// Set before Mount so mounted subrouters inherit them.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteStatus(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handler.WriteStatus(w, http.StatusMethodNotAllowed)
	})

	// === Stores and services ===
	users := s.db.Users()
	recipes := s.db.Recipes()
	favorites := s.db.Favorites()
	plans := s.db.MealPlans()

	authHandler := handler.NewAuthHandler(service.NewAuthService(users, tokens, passwords, s.logger), s.logger)
	userHandler := handler.NewUserHandler(service.NewUserService(users, passwords, tokens, s.logger), s.logger)
	recipeHandler := handler.NewRecipeHandler(service.NewRecipeService(recipes, users, s.logger), s.logger)
	favoriteHandler := handler.NewFavoriteHandler(service.NewFavoriteService(favorites, recipes, users, s.logger), s.logger)
	mealPlanHandler := handler.NewMealPlanHandler(service.NewMealPlanService(plans, users, s.logger), s.logger)
	mealsHandler := handler.NewMealsHandler(meals, s.logger)

	// === Public routes ===
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.HandleToken)
		r.Post("/register", authHandler.HandleRegister)
	})

	r.Mount("/meals", mealsHandler.Routes())

	// === Authenticated routes ===
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireIdentity)

		r.Route("/users", func(r chi.Router) {
			r.With(auth.RequireAdmin).Get("/", userHandler.HandleList)
			r.With(auth.RequireAdmin).Post("/", userHandler.HandleCreate)

			r.Route("/{username}", func(r chi.Router) {
				r.Use(auth.RequireSelfOrAdmin("username"))
				r.Get("/", userHandler.HandleGet)
				r.Patch("/", userHandler.HandleUpdate)
				r.Delete("/", userHandler.HandleDelete)
			})
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", recipeHandler.HandleCreate)
			r.Get("/", recipeHandler.HandleList)
			r.Get("/{id}", recipeHandler.HandleGet)
			r.Patch("/{id}", recipeHandler.HandleUpdate)
			r.Delete("/{id}", recipeHandler.HandleDelete)
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", favoriteHandler.HandleList)
			r.Get("/{recipeId}/status", favoriteHandler.HandleStatus)
			r.Post("/{recipeId}", favoriteHandler.HandleAdd)
			r.Delete("/{recipeId}", favoriteHandler.HandleRemove)
		})

		r.Route("/meal-plans", func(r chi.Router) {
			r.Post("/", mealPlanHandler.HandleCreate)
			r.Get("/", mealPlanHandler.HandleList)
			r.Get("/{id}", mealPlanHandler.HandleGet)
			r.Patch("/{id}", mealPlanHandler.HandleUpdate)
			r.Delete("/{id}", mealPlanHandler.HandleDelete)
		})
	})
}

// handleHealth reports whether the store answers. Load balancers take a
// 503 as "stop sending traffic here".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, "{\"status\":%q}\n", status)
}

// Handler exposes the router, for tests and for embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database pool.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
//  1. stop accepting new connections
//  2. wait up to shutdownTimeout for in-flight requests
//  3. close the database pool (deferred, so it also runs on error)
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("env", s.config.Env),
			slog.String("database", s.db.Dialect()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
