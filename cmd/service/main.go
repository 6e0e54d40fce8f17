package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecocampmy/campsite-chat-service/internal/chatbot"
	"github.com/ecocampmy/campsite-chat-service/internal/circuitbreaker"
	"github.com/ecocampmy/campsite-chat-service/internal/config"
	"github.com/ecocampmy/campsite-chat-service/internal/forecast"
	"github.com/ecocampmy/campsite-chat-service/internal/genai"
	"github.com/ecocampmy/campsite-chat-service/internal/health"
	httphandler "github.com/ecocampmy/campsite-chat-service/internal/http"
	"github.com/ecocampmy/campsite-chat-service/internal/lifecycle"
	"github.com/ecocampmy/campsite-chat-service/internal/observability"
	"github.com/ecocampmy/campsite-chat-service/internal/reply"
	"github.com/ecocampmy/campsite-chat-service/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	campsites, err := store.Open(cfg.DatabaseURL, cfg.DBMaxOpen, cfg.DBMaxIdle)
	if err != nil {
		logger.Fatal("campsite store", zap.Error(err))
	}

	weatherClient := forecast.NewOpenWeatherClient(cfg.WeatherAPIKey, cfg.WeatherAPIURL, cfg.WeatherAPITimeout)
	if cfg.WeatherAPIKey == "" {
		logger.Warn("weather API key not set; forecast replies degrade to unavailable")
	}

	genClient := genai.NewClient(cfg.GenAIKey, cfg.GenAIURL, cfg.GenAIModel, cfg.GenAITimeout, cfg.GenAIMaxRetries, cfg.GenAIRetryBaseDelay)
	if cfg.GenAIKey == "" {
		logger.Warn("generation API key not set; generated replies degrade to canned fallback")
	}
	if cfg.CircuitBreakerEnabled {
		cb := circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.CircuitBreakerFailureThreshold,
			SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
			Timeout:          cfg.CircuitBreakerTimeout,
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Info("generation circuit breaker transition",
					zap.String("from", from.String()), zap.String("to", to.String()))
			},
		})
		genClient.SetCircuitBreaker(cb)
		logger.Info("generation circuit breaker enabled",
			zap.Int("failure_threshold", cfg.CircuitBreakerFailureThreshold),
			zap.Duration("timeout", cfg.CircuitBreakerTimeout))
	}

	composer := reply.NewComposer(genClient, logger)
	bot := chatbot.New(campsites, weatherClient, composer, logger)

	tracker := &health.Tracker{}
	healthConfig := &httphandler.HealthConfig{
		DegradedWindow:   cfg.DegradedWindow,
		DegradedErrorPct: cfg.DegradedErrorPct,
		StorePing: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return campsites.Ping(ctx)
		},
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	}
	handler := httphandler.NewHandler(bot, tracker, healthConfig, logger, cfg.MaxMessageLength)

	router := mux.NewRouter()
	router.Use(httphandler.CorrelationIDMiddleware(logger))
	router.Use(httphandler.MetricsMiddleware)
	router.Use(httphandler.RecoveryMiddleware(logger))
	router.HandleFunc("/health", handler.GetHealth).Methods("GET")
	router.Handle("/metrics", observability.MetricsHandler())
	chatRouter := router.PathPrefix("/api").Subrouter()
	chatRouter.Use(httphandler.RateLimitMiddleware(limiter))
	chatRouter.Use(httphandler.TimeoutMiddleware(cfg.RequestTimeout))
	chatRouter.HandleFunc("/chatbot", handler.PostChat).Methods("POST")

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetShuttingDown(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := httphandler.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := httphandler.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", httphandler.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	if err := campsites.Close(); err != nil {
		logger.Error("store close", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
