package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	bolt "go.etcd.io/bbolt"

	"github.com/fetchtray/fetchtray/server/archive"
	"github.com/fetchtray/fetchtray/server/config"
	"github.com/fetchtray/fetchtray/server/internal/jobs"
	"github.com/fetchtray/fetchtray/server/internal/scheduler"
	"github.com/fetchtray/fetchtray/server/internal/spawn"
	"github.com/fetchtray/fetchtray/server/notifier"
	"github.com/fetchtray/fetchtray/server/rest"
	"github.com/fetchtray/fetchtray/server/status"
	"github.com/fetchtray/fetchtray/server/version"
)

type serverConfig struct {
	db      *bolt.DB
	history *archive.Service
	agg     *jobs.Aggregator
	sched   *scheduler.Scheduler
	vm      *version.Manager
	events  *notifier.Notifier
}

func Run(ctx context.Context) error {
	conf := config.Instance()

	// ---- LOGGING ---------------------------------------------------
	logWriters := []io.Writer{os.Stdout}

	if conf.Logging.EnableFileLogging {
		fd, err := os.OpenFile(conf.Logging.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		defer fd.Close()
		logWriters = append(logWriters, fd)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logWriters...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	// ----------------------------------------------------------------

	dbPath := filepath.Join(conf.Paths.LocalDatabasePath, "bolt.db")
	boltdb, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return err
	}

	versionStore, err := version.NewStore(boltdb)
	if err != nil {
		return err
	}

	history, err := archive.New(filepath.Join(conf.Paths.LocalDatabasePath, "archive.db"))
	if err != nil {
		return err
	}

	events := notifier.New()
	agg := jobs.NewAggregator(events)

	sched := scheduler.New(scheduler.Settings{
		DownloaderPath:      conf.Paths.DownloaderPath,
		FfmpegPath:          conf.Paths.FfmpegPath,
		Concurrency:         conf.Downloads.Concurrency,
		FragmentConcurrency: conf.Downloads.FragmentConcurrency,
	}, spawn.NewExecSpawner(), agg)

	vm := version.NewManager(
		versionStore,
		conf.Updates.ReleaseFeedURL,
		conf.Updates.CheckInterval,
		conf.Paths.DownloaderPath,
		conf.Paths.FfmpegPath,
		conf.Paths.FfprobePath,
	)
	go vm.RefreshIfDue(ctx)

	if conf.Downloads.AutoArchive {
		events.Subscribe(jobs.TopicItemComplete, func(payload any) {
			if ev, ok := payload.(jobs.ItemEvent); ok {
				history.Publish(&archive.Entry{
					JobId: ev.JobId,
					Title: ev.Item.Title,
				})
			}
		})
	}

	scfg := serverConfig{
		db:      boltdb,
		history: history,
		agg:     agg,
		sched:   sched,
		vm:      vm,
		events:  events,
	}

	srv := newServer(scfg)

	go gracefulShutdown(ctx, srv, &scfg)

	var (
		network = "tcp"
		address = fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)
	)

	// support unix sockets
	if strings.HasPrefix(conf.Server.Host, "/") {
		network = "unix"
		address = conf.Server.Host
	}

	listener, err := net.Listen(network, address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("fetchtray started", slog.String("address", address))

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		slog.Warn("http server stopped", slog.String("err", err.Error()))
	}

	return nil
}

func newServer(c serverConfig) *http.Server {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(corsMiddleware.Handler)

	// REST API handlers
	r.Route("/api/v1", rest.ApplyRouter(&rest.ContainerArgs{
		Aggregator: c.agg,
		Scheduler:  c.sched,
		Versions:   c.vm,
		History:    c.history,
	}))

	// progress notifications for the UI shell
	r.Get("/ws", c.events.Handler())

	// Status
	r.Route("/status", status.ApplyRouter(c.vm))

	return &http.Server{Handler: r}
}

func gracefulShutdown(ctx context.Context, srv *http.Server, cfg *serverConfig) {
	<-ctx.Done()
	slog.Info("shutdown signal received")

	// child processes first, they outlive the listener otherwise
	cfg.sched.Shutdown()

	defer func() {
		cfg.history.Close()
		cfg.db.Close()
		srv.Shutdown(context.Background())
	}()
}
