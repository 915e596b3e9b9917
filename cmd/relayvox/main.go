package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lcampanelli/relayvox/internal/auth"
	"github.com/lcampanelli/relayvox/internal/config"
	"github.com/lcampanelli/relayvox/internal/exchange"
	"github.com/lcampanelli/relayvox/internal/history"
	"github.com/lcampanelli/relayvox/internal/httpapi"
	"github.com/lcampanelli/relayvox/internal/observability"
	"github.com/lcampanelli/relayvox/internal/session"
	"github.com/lcampanelli/relayvox/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if cfg.AppToken == "" {
		// Fail-closed: the verifier rejects everything without a token, so the
		// process still starts for health probes but serves no voice traffic.
		log.Printf("warning: APP_TOKEN is not set; all voice requests will be rejected")
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)
	verifier := auth.NewVerifier(cfg.AppToken)

	ctx := context.Background()
	store, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("exchange log init failed: %v", err)
	}
	defer store.Close()

	client, err := upstream.New(ctx, upstream.Config{
		Mode:       cfg.UpstreamMode,
		APIKey:     cfg.GeminiAPIKey,
		Candidates: cfg.ModelCandidates,
	})
	if err != nil {
		log.Fatalf("upstream client init failed: %v", err)
	}
	if _, ok := client.(*upstream.MockClient); ok {
		log.Printf("upstream: mock (no GEMINI_API_KEY configured)")
	} else {
		log.Printf("upstream: gemini, candidates %v", cfg.ModelCandidates)
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetEvictHook(func(_ *session.Session) {
		metrics.SessionEvents.WithLabelValues("evicted").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	engine := exchange.NewEngine(client, store, metrics, cfg.UpstreamTimeout)

	api := httpapi.New(cfg, verifier, sessions, engine, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
