// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contractgen-workers/internal/alerts"
	"contractgen-workers/internal/common/aws"
	"contractgen-workers/internal/common/camunda"
	"contractgen-workers/internal/common/config"
	"contractgen-workers/internal/common/database"
	"contractgen-workers/internal/common/logger"
	"contractgen-workers/internal/common/observability"
	"contractgen-workers/internal/generation/cache"
	"contractgen-workers/internal/generation/orchestrator"
	"contractgen-workers/internal/generation/persona"
	"contractgen-workers/internal/generation/provider"
	"contractgen-workers/internal/history"
	"contractgen-workers/internal/search"

	ac "contractgen-workers/internal/workers/generation/audit-contract"
	gc "contractgen-workers/internal/workers/generation/generate-contract"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.Int("providers", len(cfg.Providers)),
	)

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Result cache store ---
	var cacheStore cache.Store
	if cfg.Generation.CacheBackend == "redis" {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		cacheStore = cache.NewRedisStore(redis.Client)
		zapLog.Info("Redis result cache connected successfully")
	} else {
		cacheStore = cache.NewMemoryStore(cfg.Generation.CacheMaxEntries)
		zapLog.Info("Using in-memory result cache",
			zap.Int("maxEntries", cfg.Generation.CacheMaxEntries))
	}

	resultCache := cache.NewResultCache(
		cacheStore,
		cache.StaticVersions(cfg.Generation.TrackedDependency),
		cfg.Generation.CacheTTL,
		log,
	)

	// --- Out-of-band sinks: history, search, alerts ---
	var sinks []orchestrator.Sink

	if cfg.Generation.HistoryEnabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		sinks = append(sinks, history.NewStore(pg.DB, log))
		zapLog.Info("PostgreSQL history store connected successfully")
	}

	if cfg.Generation.SearchIndex != "" {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sinks = append(sinks, search.NewIndexer(esClient.Client, cfg.Generation.SearchIndex, log))
		zapLog.Info("Elasticsearch indexer connected successfully",
			zap.String("index", cfg.Generation.SearchIndex))
	}

	if cfg.Alerts.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.AWSRegion)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sesClient, err := aws.NewSESClient(ctx, cfg.Alerts.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		sinks = append(sinks, alerts.NewNotifier(cfg.Alerts, snsClient, sesClient, log))
		zapLog.Info("Degraded-result alerting enabled",
			zap.String("region", cfg.Alerts.AWSRegion))
	}

	// --- Provider chain and persona pipeline ---
	clients := make([]provider.Client, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		clients = append(clients, provider.NewHTTPClient(pc, log))
	}
	if len(clients) == 0 {
		zapLog.Warn("No providers configured; every generation will serve the template fallback")
	}

	chain := provider.NewChain(clients, provider.DefaultRetryPolicy, log)
	pipeline := persona.NewPipeline(chain, cfg.Generation.TaskDeadline, persona.Budgets{
		Analysis:   cfg.Generation.AnalysisTokens,
		Synthesis:  cfg.Generation.SynthesisTokens,
		RiskReview: cfg.Generation.RiskReviewTokens,
	}, log)

	engine := orchestrator.New(resultCache, pipeline, nil, sinks, log)

	// --- Register workers ---
	var workers []*camunda.CamundaWorker

	if cfg.Workers[gc.TaskType].Enabled {
		gcCfg := gc.LoadConfig()
		if t := cfg.Workers[gc.TaskType].Timeout; t > 0 {
			gcCfg.Timeout = time.Duration(t) * time.Millisecond
		}
		handler := gc.NewHandler(gcCfg, engine, log).WithObservability(obs)
		workers = append(workers, startWorker(zeebeClient, gc.TaskType, cfg.Workers[gc.TaskType], handler, zapLog))
	}

	if cfg.Workers[ac.TaskType].Enabled {
		acCfg := ac.LoadConfig()
		if t := cfg.Workers[ac.TaskType].Timeout; t > 0 {
			acCfg.Timeout = time.Duration(t) * time.Millisecond
		}
		handler := ac.NewHandler(acCfg, nil, log)
		workers = append(workers, startWorker(zeebeClient, ac.TaskType, cfg.Workers[ac.TaskType], handler, zapLog))
	}

	zapLog.Info("All workers registered successfully", zap.Int("workers", len(workers)))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := zeebeClient.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop(shutdownCtx)
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log *zap.Logger) *camunda.CamundaWorker {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 4
	}

	w := camunda.NewWorker(
		client.GetClient(),
		taskType,
		maxJobs,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handler,
		log,
	)
	w.Start()

	log.Info("worker registered",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobs),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}
