package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"userdir/internal/audit"
	"userdir/internal/platform/config"
	"userdir/internal/platform/httpserver"
	"userdir/internal/platform/logger"
	"userdir/internal/platform/metrics"
	"userdir/internal/platform/redis"
	"userdir/internal/session"
	sessionStore "userdir/internal/session/store"
	httptransport "userdir/internal/transport/http"
	"userdir/internal/users/backend"
	"userdir/internal/users/handler"
	"userdir/internal/users/store/file"
)

const (
	auditBuffer     = 256
	shutdownTimeout = 10 * time.Second
)

// main wires configuration, stores and the HTTP router, then runs the server
// and the audit worker until a shutdown signal arrives.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	sessions, checks, closeSessions, err := buildSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	sink, closeSink, err := buildAuditSink(cfg)
	if err != nil {
		return err
	}
	defer closeSink()
	worker := audit.NewWorker(sink, auditBuffer, log)

	users := handler.New(
		buildBackend(cfg, log),
		session.NewManager(sessions, log, cfg.CookieSecure),
		log,
		handler.WithAuditPublisher(worker),
		handler.WithMetrics(m),
	)
	router := httptransport.NewRouter(log, m, prometheus.DefaultGatherer, checks, users)
	srv := httpserver.New(cfg.Addr, router)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	log.Info("starting userdir",
		"addr", ln.Addr().String(),
		"store", cfg.Store,
		"session_store", cfg.SessionStore,
	)
	return serve(ctx, srv, ln, worker, log)
}

// serve runs srv on ln until ctx is cancelled or the server fails. The audit
// worker keeps running until Shutdown has returned, so events emitted by
// in-flight requests are still drained.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, worker *audit.Worker, log *slog.Logger) error {
	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(workerCtx)
	})
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer stopWorker()
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func buildBackend(cfg config.Server, log *slog.Logger) backend.Backend {
	if cfg.Store == config.StoreFile {
		return backend.NewFile(file.New(cfg.UsersFile, file.WithLogger(log)))
	}
	return backend.NewCookie(cfg.CookieSecure)
}

// buildSessionStore also returns the health checks for the dependencies the
// chosen store needs.
func buildSessionStore(ctx context.Context, cfg config.Server) (sessionStore.Store, map[string]httptransport.HealthChecker, func(), error) {
	if cfg.SessionStore != config.SessionRedis {
		return sessionStore.NewInMemory(), nil, func() {}, nil
	}
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return nil, nil, nil, errors.New("redis session store requires REDIS_URL")
	}
	store := sessionStore.NewRedis(client.Client, sessionStore.WithTTL(cfg.Redis.SessionTTL))
	checks := map[string]httptransport.HealthChecker{"redis": client}
	return store, checks, func() { _ = client.Close() }, nil
}

// buildAuditSink keeps events in memory unless Kafka brokers are set. Kafka
// sits behind a breaker that falls back to memory while the brokers are down.
func buildAuditSink(cfg config.Server) (audit.Sink, func(), error) {
	local := audit.NewPublisher(audit.NewInMemoryStore(cfg.Audit.MemoryCapacity))
	if len(cfg.Audit.KafkaBrokers) == 0 {
		return local, func() {}, nil
	}
	client, err := audit.NewKafkaClient(cfg.Audit.KafkaBrokers, cfg.Audit.Topic)
	if err != nil {
		return nil, nil, err
	}
	publisher := audit.NewKafkaPublisher(client, cfg.Audit.Topic)
	return audit.NewBreaker(publisher, local), publisher.Close, nil
}
