package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/benzlokzik/singlefile-webserver/internal/config"
	"github.com/benzlokzik/singlefile-webserver/internal/logger"
	"github.com/benzlokzik/singlefile-webserver/internal/server"
)

func main() {
	var (
		configFilePath string
		documentRoot   string
	)
	flag.StringVar(&configFilePath, "config", "", "Path to the configuration file (JSON or TOML); optional")
	flag.StringVar(&documentRoot, "root", "", "Document root to serve; overrides the configuration file")
	flag.Parse()

	// 1. Load configuration. Without -config the server runs on defaults,
	// serving the current directory, so a bare invocation just works.
	var cfg *config.Config
	var err error
	if configFilePath != "" {
		absConfigPath, absErr := filepath.Abs(configFilePath)
		if absErr != nil {
			log.Fatalf("Error getting absolute path for config file %s: %v", configFilePath, absErr)
		}
		cfg, err = config.Load(absConfigPath)
		if err != nil {
			log.Fatalf("Failed to load configuration from %s: %v", absConfigPath, err)
		}
	} else {
		cfg = config.Default()
		config.ApplyEnvOverrides(cfg)
	}
	if documentRoot != "" {
		cfg.Server.DocumentRoot = documentRoot
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// 2. Initialize logger
	appLogger, err := logger.New(&cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if err := appLogger.Close(); err != nil {
			log.Printf("Error closing log target during shutdown: %v", err)
		}
	}()

	// 3. Run the server until a termination signal arrives. The port race and
	// accept loop live entirely inside Run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("starting server", logger.LogFields{
		"bind_host": cfg.Server.BindHost,
		"ports":     cfg.Server.CandidatePorts,
		"root":      cfg.Server.DocumentRoot,
	})

	srv := server.New(cfg, appLogger)
	if err := srv.Run(ctx); err != nil {
		appLogger.Error("server exited with an error", logger.LogFields{"error": err.Error()})
		appLogger.Close()
		os.Exit(1)
	}
}
