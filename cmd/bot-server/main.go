// cmd/bot-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"answer-bot/internal/bots"
	"answer-bot/internal/common/cache"
	"answer-bot/internal/common/camunda"
	"answer-bot/internal/common/config"
	apphttp "answer-bot/internal/common/http"
	"answer-bot/internal/common/logger"
	"answer-bot/internal/common/observability"
	"answer-bot/internal/resolution"

	ra "answer-bot/internal/workers/answer-resolution/resolve-answer"
)

// permanentError stops retryWithBackoff early.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return fmt.Errorf("%s failed: %w", operationName, perm.err)
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting answer bot...",
		zap.String("strategy", string(cfg.Strategy())),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	if err := obs.EnableTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio); err != nil {
		zapLog.Warn("tracing disabled", zap.Error(err))
	}

	ctx := context.Background()

	// --- Answer pipeline ---
	transport := apphttp.NewClient(apphttp.WithScheme(cfg.Language.Scheme))
	resolver := resolution.NewResolver(resolution.ConfigFrom(cfg), transport, log,
		resolution.WithRecorder(obs),
		resolution.WithTracer(obs.Tracer()),
	)

	var answers bots.AnswerSource = resolver

	// --- Init Redis with retry ---
	if cfg.Cache.Enabled {
		var redisClient *redis.Client
		err = retryWithBackoff(func() error {
			redisClient = cache.NewRedis(cfg.Redis)
			if err := cache.Ping(ctx, redisClient); err != nil {
				redisClient.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		answers = bots.NewCachedAnswers(resolver, cache.FromConfig(redisClient, cfg), log)
	}

	// --- Init Zeebe worker with retry ---
	var answerWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
			if err != nil && !camunda.IsRetryable(err) {
				return &permanentError{err: err}
			}
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		handler := ra.NewHandler(
			ra.LoadConfig(cfg.Camunda),
			resolver,
			&resolveAnswerLoggerAdapter{log},
		)
		answerWorker = camunda.StartWorker(zeebe.GetClient(), ra.TaskType, camunda.WorkerConfig{
			MaxJobsActive: cfg.Camunda.MaxJobsActive,
			Timeout:       config.GetDuration(cfg.Camunda.Timeout),
		}, handler.Handle, zapLog)
	}

	// --- Bot endpoint ---
	processor := bots.NewProcessor(
		answers,
		bots.NewConnectorClient(nil, cfg.Bot.ConnectorToken),
		cfg.Bot.WelcomeText,
		log.With(map[string]interface{}{"component": "bot"}),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	bots.RegisterRoutes(r, bots.NewActivityHandler(processor, log), promhttp.Handler())

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Bot server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("bot server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down bot server", zap.Error(err))
	}
	if answerWorker != nil {
		answerWorker.Stop()
	}

	zapLog.Info("Answer bot stopped gracefully")
}

// resolveAnswerLoggerAdapter satisfies the worker's own Logger interface.
type resolveAnswerLoggerAdapter struct {
	logger.Logger
}

func (a *resolveAnswerLoggerAdapter) With(fields map[string]interface{}) ra.Logger {
	return &resolveAnswerLoggerAdapter{a.Logger.With(fields)}
}
