package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/username/finbook/backend/src/clients"
	"github.com/username/finbook/backend/src/config"
	"github.com/username/finbook/backend/src/database"
	"github.com/username/finbook/backend/src/handlers"
	"github.com/username/finbook/backend/src/logger"
	"github.com/username/finbook/backend/src/review"
	"github.com/username/finbook/backend/src/security"
	"github.com/username/finbook/backend/src/services"
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
		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PATCH, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Finbook import service starting...")

	if len(config.Cfg.JWTSecret) < 32 {
		logger.L.Error("JWT_SECRET configuration invalid. Must be at least 32 bytes.")
		os.Exit(1)
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing services and handlers...")
	authService := security.NewAuthService(config.Cfg.JWTSecret)
	sessionStore := review.NewStore(config.Cfg.SessionTTL, config.Cfg.SessionCleanupInterval)

	parserClient := clients.NewParserClient(config.Cfg.ParserServiceURL, config.Cfg.ClientTimeout)
	financeClient := clients.NewFinanceClient(config.Cfg.FinanceAPIURL, config.Cfg.ClientTimeout, nil)

	runRecorder := services.NewSQLiteRunRecorder(database.DB)
	importService := services.NewImportService(financeClient, runRecorder)

	uploadHandler := handlers.NewUploadHandler(parserClient, sessionStore)
	reviewHandler := handlers.NewReviewHandler(sessionStore, importService)
	categoryHandler := handlers.NewCategoryHandler(financeClient)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	protect := func(handler http.HandlerFunc) http.HandlerFunc {
		return handlers.AuthMiddleware(authService, handler)
	}

	apiRouter.HandleFunc("POST /api/import/upload", protect(uploadHandler.HandleUpload))
	apiRouter.HandleFunc("GET /api/import/sessions/{id}", protect(reviewHandler.HandleGetSession))
	apiRouter.HandleFunc("PATCH /api/import/sessions/{id}/transactions/{index}", protect(reviewHandler.HandleUpdateTransaction))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/transactions/{index}/toggle", protect(reviewHandler.HandleToggleInclusion))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/transactions/{index}/delete", protect(reviewHandler.HandleRequestDeleteOne))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/include-all", protect(reviewHandler.HandleSetAllIncluded))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/set-type", protect(reviewHandler.HandleSetAllType))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/clear-categories", protect(reviewHandler.HandleClearAllCategories))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/delete-included", protect(reviewHandler.HandleRequestDeleteIncluded))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/delete/confirm", protect(reviewHandler.HandleConfirmDelete))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/delete/cancel", protect(reviewHandler.HandleCancelDelete))
	apiRouter.HandleFunc("POST /api/import/sessions/{id}/submit", protect(reviewHandler.HandleSubmit))
	apiRouter.HandleFunc("GET /api/import/runs", protect(reviewHandler.HandleListImportRuns))
	apiRouter.HandleFunc("GET /api/categories", protect(categoryHandler.HandleListCategories))

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Finbook import service is running"})
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
		WriteTimeout: 120 * time.Second, // submissions wait on the slowest create-call
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
