package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/username/fintrack/backend/src/config"
	"github.com/username/fintrack/backend/src/database"
	"github.com/username/fintrack/backend/src/handlers"
	"github.com/username/fintrack/backend/src/identity"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/security"
	"github.com/username/fintrack/backend/src/services"
	"github.com/username/fintrack/backend/src/utils"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Fintrack backend server starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}
	if len(config.Cfg.CSRFAuthKey) < 32 {
		logger.L.Error("CSRF_AUTH_KEY must be at least 32 bytes long.")
		os.Exit(1)
	}

	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret, config.Cfg.AccessTokenExpiry)
	identityService := identity.NewService(
		identity.NewProvider(config.Cfg),
		services.NewOAuthStateStore(config.Cfg.OAuthStateTTL),
		authService,
		database.DB,
		config.Cfg.SessionExpiry,
	)
	transactionStore := services.NewTransactionStore(database.DB)
	formStore := services.NewFormStore(config.Cfg.FormDraftTTL)
	notifier := services.NewNotifier(config.Cfg)

	userHandler := handlers.NewUserHandler(authService, identityService, formStore, database.DB)
	oauthHandler := handlers.NewOAuthHandler(identityService, config.Cfg.FrontendBaseURL)
	intakeHandler := handlers.NewIntakeHandler(formStore, transactionStore, notifier, database.DB, config.Cfg.LedgerLocation)
	txHandler := handlers.NewTransactionHandler(transactionStore)

	logger.L.Info("Configuring routes...")
	secureCookies := strings.HasPrefix(config.Cfg.FrontendBaseURL, "https://")
	csrfProtection := handlers.CSRFMiddleware(config.Cfg.CSRFAuthKey)
	applyCsrfAndAuth := func(handler http.HandlerFunc) http.Handler {
		return csrfProtection(userHandler.Protect(handler))
	}

	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/auth/csrf", handlers.GetCSRFToken(config.Cfg.CSRFAuthKey, secureCookies))
	apiRouter.HandleFunc("GET /api/auth/google/login", oauthHandler.HandleGoogleLogin)
	apiRouter.HandleFunc("GET /api/auth/google/callback", oauthHandler.HandleGoogleCallback)
	apiRouter.Handle("POST /api/auth/logout", applyCsrfAndAuth(userHandler.LogoutUserHandler))

	apiRouter.Handle("GET /api/user/me", userHandler.Protect(userHandler.HandleMe))

	apiRouter.Handle("GET /api/intake/form", userHandler.Protect(intakeHandler.HandleGetForm))
	apiRouter.Handle("PUT /api/intake/form", applyCsrfAndAuth(intakeHandler.HandlePutForm))
	apiRouter.Handle("POST /api/intake/salary", applyCsrfAndAuth(intakeHandler.HandleSubmitSalary))
	apiRouter.Handle("POST /api/intake/received", applyCsrfAndAuth(intakeHandler.HandleSubmitReceived))
	apiRouter.Handle("POST /api/intake/lending", applyCsrfAndAuth(intakeHandler.HandleSubmitLending))

	apiRouter.Handle("GET /api/transactions", userHandler.Protect(txHandler.HandleListTransactions))

	rootMux := http.NewServeMux()
	rootMux.Handle("/api/", apiRouter)
	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" || r.Method != http.MethodGet {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message":       "Fintrack Backend is running",
			"signInEnabled": identityService.Configured(),
		})
	})

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Limit(config.Cfg.RateLimitRPS), config.Cfg.RateLimitBurst)
	finalHandler := handlers.RequestLogger(
		handlers.EnableCORS(config.Cfg.AllowedOrigins)(
			handlers.RateLimit(limiter)(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.L.Error("Server forced to shutdown", "error", err)
	}
	if err := database.DB.Close(); err != nil {
		logger.L.Error("Failed to close database", "error", err)
	}
	logger.L.Info("Server stopped gracefully.")
}
