package main

import (
	stdlog "log"
	"net/http"
	"time"

	"github.com/username/jomkira/backend/src/agent"
	"github.com/username/jomkira/backend/src/config"
	"github.com/username/jomkira/backend/src/guardrails"
	"github.com/username/jomkira/backend/src/handlers"
	"github.com/username/jomkira/backend/src/llm"
	"github.com/username/jomkira/backend/src/logger"
	"github.com/username/jomkira/backend/src/services"
	"github.com/username/jomkira/backend/src/session"
	"github.com/username/jomkira/backend/src/utils"
	"golang.org/x/time/rate"
)

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
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
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{}
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-Platform, X-Session-Id")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == http.MethodOptions {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverMiddleware is the outermost boundary: unexpected panics are logged
// with full detail server-side and surfaced as a generic internal error.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.L.Error("Unhandled panic in request handler",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec)
				utils.SendJSONError(w, "An internal server error occurred.", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel, config.Cfg.LogFormat)
	logger.L.Info("Banking assistant backend starting...", "app", config.Cfg.AppName)

	logger.L.Info("Initializing session store...",
		"ttl", config.Cfg.SessionTTL.String(), "capacity", config.Cfg.SessionMax)
	sessionStore := session.NewCacheStore(config.Cfg.SessionTTL, config.Cfg.SessionMax)

	logger.L.Info("Initializing model client...",
		"provider", config.Cfg.LLMProvider, "model", config.Cfg.LLMModel)
	llmClient := llm.NewHTTPClient(config.Cfg.OpenAIAPIKey, config.Cfg.OpenAIBaseURL)

	logger.L.Info("Initializing services and handlers...")
	txService := services.NewTransactionService()
	agentRuntime := agent.New(llmClient, config.Cfg.LLMModel, config.Cfg.AppName, txService)

	chatHandler := handlers.NewChatHandler(agentRuntime, sessionStore, config.Cfg.InitialBalance)
	aguiHandler := handlers.NewAGUIHandler(agentRuntime, sessionStore, config.Cfg.InitialBalance)

	// The guardrail registry is built once here and injected; there is no
	// ambient global registry.
	registry := guardrails.NewRegistry(guardrails.NewSanitizationCheck())
	interception := handlers.NewGuardrailMiddleware(registry, config.Cfg.MaxBodySizeBytes)

	logger.L.Info("Configuring routes...")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.HandleFunc("POST /api/chat", chatHandler.HandleChat)
	mux.HandleFunc("POST /agui/run", aguiHandler.HandleRun)
	mux.HandleFunc("POST /agui/", aguiHandler.HandleRun)

	logger.L.Info("Applying global middleware...")
	limiter := rate.NewLimiter(rate.Limit(config.Cfg.RateLimitRPS), config.Cfg.RateLimitBurst)
	finalHandler := recoverMiddleware(
		enableCORS(
			rateLimitMiddleware(limiter)(
				interception.Handler(mux))))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // agent runs stream for a while
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
