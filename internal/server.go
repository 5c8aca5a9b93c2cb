package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/clock"
	"github.com/2beens/lifedash/internal/config"
	"github.com/2beens/lifedash/internal/db"
	"github.com/2beens/lifedash/internal/middleware"
	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/reminders"
	"github.com/2beens/lifedash/internal/stats"
	"github.com/2beens/lifedash/internal/store"
	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/internal/telemetry/tracing"
	"github.com/2beens/lifedash/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

const maxRequestBodyBytes = 1 << 20

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server

	config *config.Config
	clock  clock.Clock

	dbPool      *pgxpool.Pool
	sqliteStore *store.SQLiteStore
	redisClient *redis.Client

	// recordStore is read directly by the reminder engine, so settings edits
	// show up on the next tick; analytics reads go through the cache.
	recordStore    store.RecordStore
	analyticsStore store.RecordStore
	ledger         reminders.Ledger
	settings       *reminders.StoreSettings
	scheduler      *reminders.Scheduler
	analyzer       *analytics.Analyzer

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	RedisPassword           string
	PostgresPassword        string
	HoneycombTracingEnabled bool
	ServiceName             string
	// Clock defaults to the wall clock in the configured timezone.
	Clock clock.Clock
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (_ *Server, err error) {
	cfg := params.Config
	s := &Server{
		config: cfg,
		clock:  params.Clock,
	}
	if s.clock == nil {
		s.clock = clock.NewReal(cfg.Location())
	}
	defer func() {
		if err != nil {
			s.closeBackends()
		}
	}()

	if cfg.UsesRedis() {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		rdbStatus := s.redisClient.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
	}

	var extraCollectors []prometheus.Collector
	s.recordStore, extraCollectors, err = s.openRecordStore(ctx, params)
	if err != nil {
		return nil, err
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("lifedash", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	serviceName := params.ServiceName
	if serviceName == "" {
		serviceName = "lifedash"
	}
	// use honeycomb distro to setup OpenTelemetry SDK
	s.otelShutdown, err = tracing.HoneycombSetup(params.HoneycombTracingEnabled, serviceName, s.redisClient)
	if err != nil {
		return nil, err
	}

	s.analyticsStore = s.recordStore
	if cfg.StoreCacheSizeMB > 0 && cfg.StoreBackend != config.StoreBackendMemory {
		s.analyticsStore = store.NewCachedStore(s.recordStore, cfg.StoreCacheSizeMB, cfg.StoreCacheTTL())
	}

	averageMode, err := analytics.ParseAverageMode(cfg.AverageMode)
	if err != nil {
		return nil, err
	}
	s.analyzer = analytics.NewAnalyzer(records.NewRepo(s.analyticsStore, s.metricsManager), averageMode)

	s.ledger, err = s.newLedger()
	if err != nil {
		return nil, err
	}
	s.settings = reminders.NewStoreSettings(s.recordStore)

	engine := reminders.NewEngine(reminders.EngineParams{
		Settings:       s.settings,
		Repo:           records.NewRepo(s.recordStore, s.metricsManager),
		Ledger:         s.ledger,
		Notifier:       s.newNotifier(),
		Location:       cfg.Location(),
		Retention:      cfg.LedgerRetention(),
		MetricsManager: s.metricsManager,
	})
	s.scheduler = reminders.NewScheduler(engine, s.clock, cfg.ReminderTick(), cfg.ReminderPassTimeout())

	return s, nil
}

func (s *Server) openRecordStore(ctx context.Context, params NewServerParams) (store.RecordStore, []prometheus.Collector, error) {
	cfg := params.Config
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warnln("using the in-memory record store, nothing will be persisted")
		return store.NewMemoryStore(), nil, nil
	case config.StoreBackendRedis:
		return store.NewRedisStore(s.redisClient, ""), nil, nil
	case config.StoreBackendSQLite:
		sqliteStore, err := store.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.sqliteStore = sqliteStore
		return sqliteStore, nil, nil
	case config.StoreBackendPostgres:
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("new db pool: %w", err)
		}
		s.dbPool = dbPool
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		psqlStore := store.NewPsqlStore(dbPool)
		if err := psqlStore.Migrate(ctx); err != nil {
			return nil, nil, fmt.Errorf("migrate record store: %w", err)
		}
		pgxpoolCollector := pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		)
		return psqlStore, []prometheus.Collector{pgxpoolCollector}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

func (s *Server) newLedger() (reminders.Ledger, error) {
	switch s.config.LedgerBackend {
	case config.LedgerBackendMemory:
		return reminders.NewMemoryLedger(), nil
	case config.LedgerBackendStore:
		return reminders.NewStoreLedger(s.recordStore), nil
	case config.LedgerBackendRedis:
		return reminders.NewRedisLedger(s.redisClient, ""), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend: %s", s.config.LedgerBackend)
	}
}

func (s *Server) newNotifier() reminders.Notifier {
	notifiers := reminders.MultiNotifier{reminders.LogNotifier{}}
	if s.config.NotifyRedisChannel != "" && s.redisClient != nil {
		notifiers = append(notifiers, reminders.NewRedisNotifier(s.redisClient, s.config.NotifyRedisChannel))
	}
	if s.config.NotifyWebhookURL != "" {
		notifiers = append(notifiers, reminders.NewWebhookNotifier(s.config.NotifyWebhookURL, nil))
	}
	return notifiers
}

// remindersView exposes the reminder state read by the HTTP handlers.
type remindersView struct {
	*reminders.StoreSettings
	reminders.Ledger
	*reminders.Scheduler
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("lifedash-router"))

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	statsHandler := stats.NewHandler(
		s.analyzer,
		remindersView{
			StoreSettings: s.settings,
			Ledger:        s.ledger,
			Scheduler:     s.scheduler,
		},
		s.clock,
	)
	statsHandler.SetupRoutes(r, rateLimiter, s.metricsManager, s.config.StatsRateLimitPerMin)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
	}).Methods("GET").Name("root")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest(maxRequestBodyBytes))

	return r
}

func (s *Server) metricsRouterSetup() *mux.Router {
	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	return metricsRouter
}

// Serve starts the API and metrics listeners and the reminder scheduler.
func (s *Server) Serve(ctx context.Context) {
	ipAndPort := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	if s.config.PrometheusMetricsPort != "" {
		metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
		s.metricsHttpServer = &http.Server{
			Addr:    metricsAddr,
			Handler: s.metricsRouterSetup(),
		}
		go func() {
			log.Debugf(" > metrics listening on: [%s]", metricsAddr)
			err := s.metricsHttpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("metrics service, listen and serve: %s", err)
			}
		}()
	}

	s.scheduler.Start(ctx)
	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	// let an in-flight reminder pass finish before the stores go away
	s.scheduler.Stop()
	log.Debugln("reminder scheduler stopped")

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.otelShutdown != nil {
		s.otelShutdown()
		log.Trace("otel shut down ...")
	}

	if err := s.closeBackends(); err != nil {
		log.Errorf("close backends: %s", err)
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) closeBackends() error {
	var err error
	if s.redisClient != nil {
		err = multierr.Append(err, s.redisClient.Close())
		s.redisClient = nil
	}
	if s.sqliteStore != nil {
		err = multierr.Append(err, s.sqliteStore.Close())
		s.sqliteStore = nil
	}
	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		s.dbPool = nil
		log.Debugln("db pool closed")
	}
	return err
}
