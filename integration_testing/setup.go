package integration_testing

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/2beens/lifedash/internal"
	"github.com/2beens/lifedash/internal/config"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	log "github.com/sirupsen/logrus"
)

const (
	serverPort = 9000
	serverHost = "localhost"

	postgresDBName   = "lifedash"
	postgresPassword = "postgres"
	notifyChannel    = "lifedash:reminders:test"
)

var serverEndpoint = fmt.Sprintf("http://%s:%d", serverHost, serverPort)

// Suite runs the service against dockerised redis and postgres.
type Suite struct {
	DB         *sql.DB
	Config     *config.Config
	dockerPool *dockertest.Pool
	server     *internal.Server
	teardown   []func()
}

func newSuite() (_ *Suite, err error) {
	suite := &Suite{
		teardown: make([]func(), 0),
	}
	defer func() {
		if err != nil {
			suite.cleanup()
		}
	}()

	// uses a sensible default on windows (tcp/http) and linux/osx (socket)
	suite.dockerPool, err = dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not create new dockertest pool: %w", err)
	}

	// uses pool to try to connect to Docker
	if err = suite.dockerPool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping dockertest pool: %w", err)
	}

	redisPort, err := suite.redisSetup()
	if err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}

	pgPort, err := suite.postgresSetup()
	if err != nil {
		return nil, fmt.Errorf("setup postgres: %w", err)
	}

	suite.Config = getTestConfig(redisPort, pgPort)
	return suite, nil
}

// SeedRecord upserts one record collection into the record_store table.
func (s *Suite) SeedRecord(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(
		`INSERT INTO record_store (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now();`,
		key, string(data),
	)
	return err
}

// StartServer builds the service from the suite config and starts serving.
func (s *Suite) StartServer(ctx context.Context) error {
	server, err := internal.NewServer(ctx, internal.NewServerParams{
		Config:                  s.Config,
		PostgresPassword:        postgresPassword,
		HoneycombTracingEnabled: false,
		ServiceName:             "lifedash-integration",
	})
	if err != nil {
		return fmt.Errorf("new server: %w", err)
	}
	s.server = server
	s.server.Serve(ctx)
	return nil
}

func (s *Suite) cleanup() {
	if s.server != nil {
		s.server.GracefulShutdown()
	}
	if s.DB != nil {
		s.DB.Close()
	}
	for _, teardown := range s.teardown {
		teardown()
	}
}

func getTestConfig(redisPort, postgresPort string) *config.Config {
	return &config.Config{
		Host:                 serverHost,
		Port:                 serverPort,
		LogLevel:             "debug",
		LogToStdout:          true,
		StoreBackend:         config.StoreBackendPostgres,
		RedisHost:            "localhost",
		RedisPort:            redisPort,
		PostgresHost:         "localhost",
		PostgresPort:         postgresPort,
		PostgresDBName:       postgresDBName,
		StoreCacheSizeMB:     1,
		StoreCacheTTLSeconds: 1,
		LedgerBackend:        config.LedgerBackendRedis,
		Timezone:             "UTC",
		ReminderTickSeconds:  1,
		LedgerRetentionHours: 48,
		NotifyRedisChannel:   notifyChannel,
		AverageMode:          "period_length",
		StatsRateLimitPerMin: 600,
		AllowedOrigins:       []string{"*"},
	}
}

func (s *Suite) redisSetup() (string, error) {
	redisResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Name:       "lifedash-redis",
		Tag:        "6.2",
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
	})
	if err != nil {
		return "", fmt.Errorf("run redis: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := redisResource.Close(); err != nil {
			log.Errorf("close redis resource: %s", err)
		}
	})

	return redisResource.GetPort("6379/tcp"), nil
}

func (s *Suite) postgresSetup() (string, error) {
	pgResource, err := s.dockerPool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDBName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	if err != nil {
		return "", fmt.Errorf("dockerpool run postgres: %w", err)
	}

	s.teardown = append(s.teardown, func() {
		if err := pgResource.Close(); err != nil {
			log.Errorf("close postgres resource: %s", err)
		}
	})

	pgPort := pgResource.GetPort("5432/tcp")
	dsn := fmt.Sprintf(
		"postgres://postgres:%s@localhost:%s/%s?sslmode=disable",
		postgresPassword, pgPort, postgresDBName,
	)

	if err := s.dockerPool.Retry(func() error {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return err
		}
		s.DB = db
		return nil
	}); err != nil {
		return "", fmt.Errorf("connect to postgres: %w", err)
	}

	if _, err := s.DB.Exec(initSQL); err != nil {
		return "", fmt.Errorf("run init script: %w", err)
	}
	log.Debugf("postgres ready on port %s", pgPort)

	return pgPort, nil
}

// initSQL mirrors the schema the service migrates on startup, so records
// can be seeded before the service connects.
const initSQL = `
CREATE TABLE IF NOT EXISTS record_store
(
    key        VARCHAR PRIMARY KEY,
    value      JSONB                    NOT NULL,
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
);
`
