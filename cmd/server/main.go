// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"veil/internal/anonymize"
	"veil/internal/approval"
	"veil/internal/consent"
	consentservice "veil/internal/consent/service"
	"veil/internal/jwt"
	"veil/internal/perf"
	"veil/internal/platform/config"
	"veil/internal/platform/httpserver"
	"veil/internal/platform/logger"
	"veil/internal/platform/metrics"
	platformredis "veil/internal/platform/redis"
	"veil/internal/query"
	"veil/internal/translate"
	httptransport "veil/internal/transport/http"
	"veil/pkg/audit"
	auditmemory "veil/pkg/audit/store/memory"
	auditpostgres "veil/pkg/audit/store/postgres"
	"veil/pkg/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var db *sql.DB
	if cfg.Postgres.URL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.URL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("postgres unreachable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	var auditStore audit.Store
	var consentStore consent.Store
	if db != nil {
		auditStore = auditpostgres.New(db)
		consentStore = consent.NewPostgres(db)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
		consentStore = consent.NewInMemoryStore()
	}

	publisher := audit.NewPublisher(audit.WithLogger(log))
	auditWorker := worker.NewWorker(auditStore, publisher.Inbox(), log)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go func() {
		if err := auditWorker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	appMetrics := metrics.New()
	tracker := perf.NewTracker(perf.WithMetrics(appMetrics))

	consentSvc, err := consentservice.New(consentStore,
		consentservice.WithLogger(log),
		consentservice.WithAuditPublisher(publisher),
		consentservice.WithGracePeriod(cfg.Consent.WithdrawalGracePeriod),
	)
	if err != nil {
		log.Error("failed to build consent service", "error", err)
		os.Exit(1)
	}

	engine, err := anonymize.New(anonymize.NewInMemoryBudgetStore(), cfg.Privacy.HashSalt,
		anonymize.WithLogger(log),
		anonymize.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to build anonymization engine", "error", err)
		os.Exit(1)
	}

	translator, err := translate.New(translate.NewKeywordClassifier(),
		translate.WithLogger(log),
		translate.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to build translator", "error", err)
		os.Exit(1)
	}

	approvalSvc, err := approval.New(approval.NewInMemoryStore(),
		approval.WithLogger(log),
		approval.WithAuditPublisher(publisher),
	)
	if err != nil {
		log.Error("failed to build approval service", "error", err)
		os.Exit(1)
	}

	var cache query.Cache = query.NewInMemoryCache(cfg.Cache.TTL)
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		cache = query.NewRedisCache(redisClient, cfg.Cache.TTL, log)
		defer redisClient.Close()
	}

	var rawStore query.RawDataStore
	if db != nil {
		rawStore = query.NewPostgresRawStore(db)
	} else {
		rawStore = emptyRawStore{}
	}

	executor, err := query.New(approvalSvc, consentSvc, rawStore, engine, cache,
		cfg.Privacy, cfg.Retry,
		query.WithLogger(log),
		query.WithAuditPublisher(publisher),
		query.WithRecorder(tracker),
	)
	if err != nil {
		log.Error("failed to build query executor", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		JWTValidator: jwt.NewValidator(cfg.Server.JWTSigningKey),
		Consent:      consentSvc,
		Translator:   translator,
		Approvals:    approvalSvc,
		Executor:     executor,
		Budget:       engine,
		Analytics:    tracker,
		Health: func() error {
			if db != nil {
				return db.Ping()
			}
			return nil
		},
	})

	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting veil", "addr", cfg.Server.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	stopWorker()
}
