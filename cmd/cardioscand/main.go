package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cardioscan/internal/server"
	"cardioscan/pkg/config"
)

func main() {
	configPath := flag.String("config", "cardioscan.yaml", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// A .env file is optional; the environment still overrides the YAML.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *debug {
		cfg.Logging.Verbose = true
	}

	logger, err := newLogger(cfg.Logging.Verbose)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("cardioscan backend starting",
		zap.String("config", *configPath),
		zap.String("upload_dir", cfg.Storage.UploadDir),
		zap.String("slices_dir", cfg.Storage.SlicesDir))

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if verbose {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapCfg.Build()
}
