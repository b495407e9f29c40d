package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

type Site struct {
	cfg       *Config
	db        *sql.DB
	sessions  *sessionStore
	images    *ImageStore
	metrics   *Metrics
	limiter   *LoginLimiter
	templates map[string]*template.Template
}

func NewSite(cfg *Config, db *sql.DB) *Site {
	return &Site{
		cfg:       cfg,
		db:        db,
		sessions:  newSessionStore(db, cfg.SessionSecret, cfg.SessionMaxAge, cfg.SecureCookies),
		images:    NewImageStore(filepath.Join(cfg.PublicDir, "images")),
		metrics:   NewMetrics(),
		limiter:   NewLoginLimiter(cfg.LoginRatePerMinute),
		templates: loadTemplates(),
	}
}

func setupLogger(w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

func main() {
	setupLogger(os.Stdout)

	var err error
	if len(os.Args) > 1 && os.Args[1] == "passwd" {
		err = runPasswd(os.Args[2:], os.Stdin, os.Stdout, os.Stderr)
	} else {
		err = serve()
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	if err = seedDB(db, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	if err = cleanupExpiredSessions(db); err != nil {
		slog.Error("cleaning up expired sessions", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	site := NewSite(cfg, db)
	go site.sweep(ctx, time.Hour)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = newMetricsServer(cfg.MetricsAddr, site.metrics)
		go func() {
			slog.Info("metrics listening", "addr", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           site.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return shutdown(shutdownCtx, srv, metricsSrv)
	}

	return nil
}

func newMetricsServer(addr string, m *Metrics) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// shutdown stops the metrics listener, if any, then the site listener.
func shutdown(ctx context.Context, srv, metricsSrv *http.Server) error {
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			slog.Error("shutting down metrics server", "error", err)
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// sweep removes expired sessions and idle login limiters every interval
// until ctx is done.
func (s *Site) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := cleanupExpiredSessions(s.db); err != nil {
				slog.Error("cleaning up expired sessions", "error", err)
			}
			if s.limiter != nil {
				s.limiter.Sweep(interval)
			}
		}
	}
}
