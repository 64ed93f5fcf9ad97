// Command server wires the insider-threat scoring service: config, storage,
// the worker pool, the HTTP/WebSocket transport, and graceful shutdown.
// Business logic lives in the internal packages; main stays a wiring layer,
// following the teacher's cmd/server/main.go shape.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"vigil/internal/audittrail"
	"vigil/internal/authhttp"
	"vigil/internal/authn"
	"vigil/internal/behavior"
	"vigil/internal/broadcast"
	"vigil/internal/domain"
	"vigil/internal/explain"
	"vigil/internal/fusion"
	"vigil/internal/ingest"
	"vigil/internal/integrity"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/redis"
	"vigil/internal/queue"
	"vigil/internal/sensitivity"
	"vigil/internal/store"
	"vigil/internal/store/cache"
	"vigil/internal/store/memory"
	"vigil/internal/store/postgres"
	"vigil/internal/worker"
	"vigil/pkg/platform/middleware/auth"
	"vigil/pkg/platform/middleware/device"
	"vigil/pkg/platform/middleware/metadata"
	"vigil/pkg/platform/middleware/requestid"
	"vigil/pkg/platform/middleware/requesttime"
)

// systemStatusInterval is how often the queue's status snapshot is fanned
// out to connected admin sessions over the websocket channel.
const systemStatusInterval = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	st, closeStore, err := openStore(cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	revocation := cache.NewTokenRevocationList(clientOf(redisClient))
	tokens := authn.NewService(cfg.JWTSigningKey, "vigil", cfg.AccessTokenExpiry, cfg.RefreshTokenExpiry)
	validator := authn.NewValidatorAdapter(tokens)

	auditor, err := audittrail.New(cfg.KafkaBrokers, audittrail.NewSampler(0.1), log, audittrail.NewMetrics())
	if err != nil {
		return err
	}
	defer auditor.Close()

	q := queue.New(cfg.QueueCapacity, cfg.QueueNearCapacityPercent)

	history := behavior.NewHistory()
	model := behavior.DefaultForest(cfg.AnomalyContamination)
	scorer := behavior.NewScorer(history, model)
	classifier := sensitivity.NewClassifier(nil)
	verifier := integrity.NewVerifier(nil)
	fusionEngine := fusion.NewEngine(cfg.RiskWeights.Behavior, cfg.RiskWeights.Classification, cfg.RiskWeights.Integrity)
	explainer := explain.NewEngine(model, classifier, 1)

	hub := broadcast.New(validator, auditor, log, broadcast.NewMetrics())
	ingestHandler := ingest.New(q, auditor, log, ingest.NewMetrics())
	authHandler := authhttp.New(tokens, log)

	workerMetrics := worker.NewMetrics()
	workers := make([]*worker.Worker, 0, cfg.WorkerCount)
	for i := 0; i < cfg.WorkerCount; i++ {
		w := worker.New(q, st, history, scorer, classifier, verifier, fusionEngine, explainer, hub, auditor, log, workerMetrics)
		workers = append(workers, w.WithRegulatedMode(cfg.RegulatedMode))
	}

	router := newRouter(ingestHandler, authHandler, hub, validator, revocation, log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		group.Go(func() error {
			w.Run(groupCtx)
			return nil
		})
	}
	group.Go(func() error {
		statusLoop(groupCtx, q, hub)
		return nil
	})
	group.Go(func() error {
		log.Info("starting vigil", "addr", cfg.Addr, "workers", cfg.WorkerCount)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	return group.Wait()
}

// openStore constructs the production Postgres-backed store, layering a
// Redis cache-aside in front of its document methods when Redis is
// configured, or falls back to the in-memory store when DATABASE_URL is
// unset (local development, tests without a database).
func openStore(cfg config.Server, redisClient *redis.Client) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		return memory.New(), func() {}, nil
	}

	pg, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	st := &cachedStore{Store: pg, documents: cache.NewDocumentStore(pg, clientOf(redisClient))}
	return st, func() { _ = pg.Close() }, nil
}

// cachedStore layers a Redis cache-aside DocumentStore in front of the
// Postgres store's document methods while delegating every other store.Store
// method (including WithinTx) straight to the embedded Postgres store.
type cachedStore struct {
	*postgres.Store
	documents *cache.DocumentStore
}

func (c *cachedStore) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	return c.documents.GetDocument(ctx, documentID)
}

func (c *cachedStore) CreateDocument(ctx context.Context, doc *domain.Document) error {
	return c.documents.CreateDocument(ctx, doc)
}

func (c *cachedStore) UpdateDocument(ctx context.Context, doc *domain.Document) error {
	return c.documents.UpdateDocument(ctx, doc)
}

// clientOf extracts the underlying *redis.Client from the platform wrapper,
// tolerating a nil wrapper (Redis not configured).
func clientOf(c *redis.Client) *goredis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}

// statusLoop fans the queue's observability snapshot out to every connected
// admin session on a fixed interval, until ctx is canceled.
func statusLoop(ctx context.Context, q *queue.Queue, hub *broadcast.Hub) {
	ticker := time.NewTicker(systemStatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hub.BroadcastSystemStatus(q.Snapshot())
		}
	}
}

// newRouter assembles the chi router: public endpoints (token refresh,
// metrics) and the websocket upgrade (which authenticates itself via the
// token query parameter) ahead of the bearer-auth gate, and the ingest
// handler's routes (ingest, queue status) behind RequireAuth.
func newRouter(ingestHandler *ingest.Handler, authHandler *authhttp.Handler, hub *broadcast.Hub, validator auth.Validator, revocation auth.RevocationChecker, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/ws/admin", hub.HandleUpgrade)
	authHandler.Register(r)

	r.Group(func(protected chi.Router) {
		protected.Use(auth.RequireAuth(validator, revocation, log))
		ingestHandler.Register(protected)
	})

	return r
}
