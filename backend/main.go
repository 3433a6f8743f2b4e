package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"task-tracker/backend/config"
	"task-tracker/backend/global"
	"task-tracker/backend/initialize"

	"github.com/spf13/pflag"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "config/config.yaml", "Path to the YAML config file")
		listen     = pflag.String("listen", "", "Listen address host:port, overrides backend.http.host/port")
		logLevel   = pflag.String("log-level", "", "Log level, overrides backend.log.level")
	)
	pflag.Parse()

	if err := run(*configPath, *listen, *logLevel); err != nil {
		global.Logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(configPath, listen, logLevel string) error {
	v := config.New(configPath)
	if err := config.Read(v); err != nil {
		return err
	}
	if listen != "" {
		host, port, err := net.SplitHostPort(listen)
		if err != nil {
			return fmt.Errorf("--listen: %w", err)
		}
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("--listen port: %w", err)
		}
		v.Set("backend.http.host", host)
		v.Set("backend.http.port", p)
	}
	if logLevel != "" {
		v.Set("backend.log.level", logLevel)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	logFile, err := initialize.ConfigureLogger(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return err
	}
	defer logFile.Close()

	app, err := initialize.Build(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			global.Logger.Warn().Err(err).Msg("close stores")
		}
	}()

	config.Watch(v, func(next *config.Config) {
		if logLevel != "" {
			return
		}
		lvl := initialize.ApplyLogLevel(next.Log.Level)
		global.Logger.Info().Str("level", lvl.String()).Msg("config reloaded")
	}, func(err error) {
		global.Logger.Warn().Err(err).Msg("config reload rejected")
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		global.Logger.Info().Str("addr", srv.Addr).Str("db", cfg.DB.Driver).Msg("task tracker listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	global.Logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
