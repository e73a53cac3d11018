package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/fetchtray/fetchtray/server"
	"github.com/fetchtray/fetchtray/server/config"
)

func main() {
	// Parse optional config path from flag
	var configFile string
	flag.StringVar(&configFile, "conf", "./config.yml", "Config file path")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3044)
	v.SetDefault("paths.download_path", ".")
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.ffmpeg_path", "ffmpeg")
	v.SetDefault("paths.ffprobe_path", "ffprobe")
	v.SetDefault("paths.local_database_path", ".")
	v.SetDefault("downloads.concurrency", 3)
	v.SetDefault("downloads.fragment_concurrency", 5)
	v.SetDefault("downloads.auto_archive", true)
	v.SetDefault("logging.log_path", "fetchtray.log")
	v.SetDefault("logging.enable_file_logging", false)

	// Env binding
	v.SetEnvPrefix("FETCHTRAY")
	v.AutomaticEnv()

	cfg := config.Instance()
	cfg.SetPath(configFile)

	// Load YAML file if exists, otherwise bootstrap one from defaults
	firstRun := false
	if err := v.ReadInConfig(); err != nil {
		slog.Debug("using defaults")
		firstRun = true
	}

	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		slog.Error("failed to load config", "error", err)
	}

	if cfg.Downloads.Concurrency <= 0 {
		cfg.Downloads.Concurrency = 3
	}

	if firstRun {
		if err := cfg.Write(); err != nil {
			slog.Warn("could not write default config file", "error", err)
		}
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting fetchtray",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"concurrency", cfg.Downloads.Concurrency,
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited cleanly")
}
