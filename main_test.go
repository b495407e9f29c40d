package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

func serveOnLoopback(t *testing.T, srv *http.Server) <-chan error {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()
	return done
}

func TestShutdown_StopsMetricsServer(t *testing.T) {
	site := setupTestSite(t)

	srv := &http.Server{Handler: site.Routes()}
	metricsSrv := newMetricsServer("", site.metrics)
	siteDone := serveOnLoopback(t, srv)
	metricsDone := serveOnLoopback(t, metricsSrv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx, srv, metricsSrv); err != nil {
		t.Fatalf("shutdown() error: %v", err)
	}

	for name, done := range map[string]<-chan error{"site": siteDone, "metrics": metricsDone} {
		select {
		case err := <-done:
			if !errors.Is(err, http.ErrServerClosed) {
				t.Errorf("%s server: expected ErrServerClosed, got %v", name, err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("%s server still running after shutdown", name)
		}
	}
}

func TestShutdown_WithoutMetricsServer(t *testing.T) {
	srv := &http.Server{Handler: http.NotFoundHandler()}
	done := serveOnLoopback(t, srv)

	if err := shutdown(context.Background(), srv, nil); err != nil {
		t.Fatalf("shutdown() error: %v", err)
	}
	if err := <-done; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("expected ErrServerClosed, got %v", err)
	}
}
