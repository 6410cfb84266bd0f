package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/api"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/cache"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/config"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/engine"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/metrics"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/repo"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/services"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/store"
	"github.com/Pinguicidgon/Asistente-IA-Nebrija/internal/utils"
)

func main() {
	// Local development keeps the model token in a .env file.
	_ = godotenv.Load()

	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting triage engine", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	knowledge, err := engine.LoadKnowledge(cfg.Knowledge.Path)
	if err != nil {
		logger.Error("failed to load knowledge pack", slog.Any("error", err))
		os.Exit(1)
	}

	faqMatcher, err := engine.NewFaqMatcher(knowledge)
	if err != nil {
		logger.Error("invalid FAQ patterns", slog.Any("error", err))
		os.Exit(1)
	}

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled && cfg.Cache.Addr != "" {
		provider, err := cache.NewValkeyProvider(cache.ValkeyConfig{
			Addr:         cfg.Cache.Addr,
			Username:     cfg.Cache.Username,
			Password:     cfg.Cache.Password,
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,
			TLS:          cfg.Cache.TLS,
		})
		if err != nil {
			logger.Warn("valkey cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	zeroShot := repo.NewZeroShotClient(
		cfg.ZeroShot.BaseURL,
		cfg.ZeroShot.Path,
		cfg.ZeroShot.APIToken,
		cfg.ZeroShot.Timeout,
		cacheProvider,
		cfg.Cache.ClassifyTTL,
	)

	pipeline := engine.NewPipeline(
		logger,
		engine.NewRuleMatcher(knowledge),
		engine.NewPriorityEstimator(knowledge),
		zeroShot,
	)

	triageService := services.NewTriageService(
		logger,
		faqMatcher,
		pipeline,
		engine.NewComposer(knowledge),
		store.NewFeedbackLedger(cfg.Stores.FeedbackPath),
		store.NewInteractionLog(cfg.Stores.InteractionPath),
		cfg.Stores.DatasetPath,
		cfg.Stores.ResultsPath,
	)

	handler := api.NewHandler(logger, triageService)
	server, err := api.NewServer(cfg.Server, handler.Routes())
	if err != nil {
		logger.Error("failed to create server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("triage engine stopped")
}
