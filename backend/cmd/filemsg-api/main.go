package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itchan-dev/filemsg/backend/internal/router"
	"github.com/itchan-dev/filemsg/backend/internal/setup"
	"github.com/itchan-dev/filemsg/shared/config"
	"github.com/itchan-dev/filemsg/shared/logger"
)

const (
	shutdownTimeout     = 10 * time.Second
	limiterSweepPeriod  = 10 * time.Minute
	defaultHTTPPort     = "8080"
	readHeaderTimeout   = 5 * time.Second
	requestWriteTimeout = time.Minute
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "backend/config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		logger.Log.Error("failed to setup dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Close()

	// Tasks outlive the request context, they are only cut short by the drain deadline.
	deps.Queue.Start(context.Background())
	deps.GC.StartBackgroundCleanup(ctx, cfg.Public.MediaGC.Interval)

	r := router.New(deps)
	sweeperStop := make(chan struct{})
	defer close(sweeperStop)
	for _, limiter := range deps.Limiters {
		limiter.StartSweeper(limiterSweepPeriod, sweeperStop)
	}

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = defaultHTTPPort
	}
	server := &http.Server{
		Addr:              ":" + httpPort,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      requestWriteTimeout,
	}

	go func() {
		logger.Log.Info("server started", "port", httpPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("server shutdown failed", "error", err)
	}
	if err := deps.Queue.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn("post-processing queue not drained", "error", err)
	}
	logger.Log.Info("server stopped")
}
