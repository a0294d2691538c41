package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"airbnbprice/config"
	"airbnbprice/db"
	phttp "airbnbprice/http"
	"airbnbprice/logging"
	"airbnbprice/ml"
	"airbnbprice/monitoring"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config and build the logger
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, level, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load the model bundle; requirements are checked while decoding
	bundle, err := ml.LoadBundle(cfg.Model.Dir, cfg.Model.Prefix)
	if err != nil {
		logger.Fatal("failed to load model bundle",
			zap.String("dir", cfg.Model.Dir),
			zap.String("prefix", cfg.Model.Prefix),
			zap.Error(err),
		)
	}
	info := bundle.Info()
	logger.Info("model bundle loaded",
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.String("estimator", info.Estimator),
		zap.Strings("features", info.Features),
	)
	monitoring.SetModelInfo(info.Name, info.Version, info.Estimator)

	// 3. Open the prediction history
	if cfg.History.Enabled {
		if err := db.InitDB(cfg.History.Path); err != nil {
			logger.Fatal("failed to open prediction history", zap.String("path", cfg.History.Path), zap.Error(err))
		}
		logger.Info("prediction history enabled", zap.String("path", cfg.History.Path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 4. Start the prediction feed and follow config changes
	hub := monitoring.NewHub(logger, cfg.Http.AllowedOrigins)
	go hub.Run(ctx)

	go func() {
		err := config.Watch(ctx, *configPath, logger, func(next *config.Config) {
			if err := logging.SetLevel(level, next.Log.Level); err != nil {
				logger.Warn("ignoring log level change", zap.Error(err))
				return
			}
			logger.Info("log level updated", zap.String("level", level.String()))
		})
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}()

	// 5. Start HTTP server
	phttp.SetLogger(logger)
	phttp.SetModel(bundle)
	phttp.SetFeed(hub)
	phttp.SetDefaultLanguage(cfg.UI.DefaultLanguage)

	server, err := phttp.NewServer(cfg.Http, logger)
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 6. Handle graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-serverErr:
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = multierr.Combine(
		runErr,
		server.Stop(shutdownCtx),
		db.Close(),
	)
	if err != nil {
		logger.Error("shutdown finished with errors", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("exiting")
}
