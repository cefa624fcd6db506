package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/clinicboard/backend/src/config"
	"github.com/username/clinicboard/backend/src/database"
	"github.com/username/clinicboard/backend/src/handlers"
	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/parsers"
	"github.com/username/clinicboard/backend/src/security"
	"github.com/username/clinicboard/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Requested-With, Cookie, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// summaryLayout maps the configured feed variant to its positional layout.
func summaryLayout() parsers.Layout {
	if config.Cfg.SummaryLayout == "dual" {
		baseYear := config.Cfg.SummaryBaseYear
		if baseYear == 0 {
			baseYear = time.Now().Year() - 1
			logger.L.Warn("SUMMARY_BASE_YEAR not set for dual layout, guessing", "baseYear", baseYear)
		}
		return parsers.DualYearLayout(baseYear)
	}
	return parsers.SingleYearLayout
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Clinicboard backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	trendCache := cache.New(cache.NoExpiration, 30*time.Minute)

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	emailService := services.NewEmailService()
	userHandler := handlers.NewUserHandler(authService, emailService)
	handlers.InitializeGoogleOAuthConfig()

	summaryParser := parsers.NewSummaryParser(summaryLayout())
	dashboardService := services.NewDashboardService(
		config.Cfg.SummaryCSVURL,
		config.Cfg.SummaryRefreshInterval,
		summaryParser,
		trendCache,
	)
	marginService := services.NewMarginService(database.DB, config.Cfg.MarginSaveDebounce)

	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	marginHandler := handlers.NewMarginHandler(marginService)

	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	go dashboardService.Run(refreshCtx)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	// Public GET routes, no CSRF needed.
	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken)
	apiRouter.HandleFunc("GET /api/auth/verify-email", userHandler.VerifyEmailHandler)
	apiRouter.HandleFunc("GET /api/auth/google/login", userHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", userHandler.HandleGoogleCallback)

	authActionRouter := http.NewServeMux()
	authActionRouter.HandleFunc("POST /login", userHandler.LoginUserHandler)
	authActionRouter.HandleFunc("POST /register", userHandler.RegisterUserHandler)
	authActionRouter.HandleFunc("POST /refresh", userHandler.RefreshTokenHandler)
	authActionRouter.Handle("POST /logout", userHandler.AuthMiddleware(http.HandlerFunc(userHandler.LogoutUserHandler)))
	authActionRouter.HandleFunc("POST /request-password-reset", userHandler.RequestPasswordResetHandler)
	authActionRouter.HandleFunc("POST /reset-password", userHandler.ResetPasswordHandler)

	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	apiRouter.Handle("/api/auth/", http.StripPrefix("/api/auth", csrfProtection(authActionRouter)))

	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.AuthMiddleware(handler))
	}

	apiRouter.Handle("GET /api/dashboard", applyCsrfAndAuth(dashboardHandler.HandleGetDashboard))
	apiRouter.Handle("POST /api/dashboard/refresh", applyCsrfAndAuth(dashboardHandler.HandleRefreshDashboard))
	apiRouter.Handle("GET /api/dashboard/trend", applyCsrfAndAuth(dashboardHandler.HandleGetTrend))

	apiRouter.Handle("GET /api/services", applyCsrfAndAuth(marginHandler.HandleListServices))
	apiRouter.Handle("POST /api/services", applyCsrfAndAuth(marginHandler.HandleCreateService))
	apiRouter.Handle("GET /api/services/{id}", applyCsrfAndAuth(marginHandler.HandleGetService))
	apiRouter.Handle("PATCH /api/services/{id}", applyCsrfAndAuth(marginHandler.HandleUpdateService))
	apiRouter.Handle("DELETE /api/services/{id}", applyCsrfAndAuth(marginHandler.HandleDeleteService))
	apiRouter.Handle("PATCH /api/services/{id}/expenses", applyCsrfAndAuth(marginHandler.HandleUpdateExpense))
	apiRouter.Handle("POST /api/services/{id}/expenses/custom", applyCsrfAndAuth(marginHandler.HandleAddCustomExpense))
	apiRouter.Handle("DELETE /api/services/{id}/expenses/custom/{expenseId}", applyCsrfAndAuth(marginHandler.HandleRemoveCustomExpense))

	apiRouter.Handle("POST /api/margin/calculate", applyCsrfAndAuth(marginHandler.HandleCalculate))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Clinicboard backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		logger.L.Info("Shutdown signal received")
		stopRefresh()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.L.Error("Server shutdown error", "error", err)
		}

		// Debounced margin edits must reach the database before exit.
		marginService.Flush()
		close(shutdownDone)
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
	<-shutdownDone
	logger.L.Info("Server stopped gracefully.")
}
