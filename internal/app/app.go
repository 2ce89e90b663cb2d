package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/riskibarqy/fantasy-league-activation/external/espn"
	"github.com/riskibarqy/fantasy-league-activation/external/yahoo"
	"github.com/riskibarqy/fantasy-league-activation/internal/config"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/league"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/rawdata"
	"github.com/riskibarqy/fantasy-league-activation/internal/domain/season"
	"github.com/riskibarqy/fantasy-league-activation/internal/infrastructure/rawarchive"
	"github.com/riskibarqy/fantasy-league-activation/internal/infrastructure/repository/dynamo"
	"github.com/riskibarqy/fantasy-league-activation/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-league-activation/internal/infrastructure/repository/postgres"
	redisstore "github.com/riskibarqy/fantasy-league-activation/internal/infrastructure/repository/redis"
	"github.com/riskibarqy/fantasy-league-activation/internal/metrics"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/id"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/logging"
	"github.com/riskibarqy/fantasy-league-activation/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-league-activation/internal/usecase"
)

// Options overrides collaborators, mostly for tests.
type Options struct {
	Now func() time.Time
	// PlatformHTTPClient is used for every outbound platform call.
	PlatformHTTPClient *http.Client
	Leagues            league.Repository
	SeasonStore        season.Store
}

// Container holds the services every entrypoint shares.
type Container struct {
	Config     config.Config
	Logger     *logging.Logger
	Leagues    league.Repository
	Store      season.Store
	Activation *usecase.ActivationService
	Views      *usecase.ViewService
	Refresh    *usecase.RefreshService
	Gatherer   prometheus.Gatherer

	closers []func() error
}

func Build(ctx context.Context, cfg config.Config, logger *logging.Logger, opts Options) (*Container, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Container{Config: cfg, Logger: logger}

	var recorder usecase.Recorder = usecase.NopRecorder{}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewCollector(registry)
		c.Gatherer = registry
	}

	var db *sqlx.DB
	if cfg.StorageDriver == config.StoragePostgres && (opts.Leagues == nil || cfg.RawArchive == config.RawArchivePostgres) {
		opened, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		db = opened
		c.closers = append(c.closers, db.Close)
	}

	c.Leagues = opts.Leagues
	if c.Leagues == nil {
		if db != nil {
			c.Leagues = postgres.NewLeagueRepository(db)
		} else {
			c.Leagues = memory.NewLeagueRepository(nil).WithClock(opts.Now)
		}
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
		return loaded, nil
	}

	store, err := c.buildSeasonStore(ctx, opts, loadAWS)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Store = store

	archive, err := buildRawArchive(cfg, db, logger, loadAWS)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	sources := []usecase.PlatformSource{
		espn.NewSource(espn.NewClient(espn.ClientConfig{
			HTTPClient: opts.PlatformHTTPClient,
			BaseURL:    cfg.ESPNBaseURL,
			Timeout:    cfg.ESPNTimeout,
			RateLimit:  cfg.ESPNRateLimitRPS,
			RateBurst:  cfg.ESPNRateLimitBurst,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ESPNCircuitEnabled,
				FailureThreshold: cfg.ESPNCircuitFailureCount,
				OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
			},
		}), espn.SourceConfig{Archive: archive, Logger: logger, Recorder: recorder, Now: opts.Now}),
	}

	var tokens usecase.TokenExchanger
	if cfg.YahooEnabled {
		tokens = yahoo.NewTokenExchanger(yahoo.TokenConfig{
			ClientID:     cfg.YahooClientID,
			ClientSecret: cfg.YahooClientSecret,
			TokenURL:     cfg.YahooTokenURL,
			RedirectURL:  cfg.YahooRedirectURL,
			HTTPClient:   opts.PlatformHTTPClient,
			Logger:       logger,
		})
		sources = append(sources, yahoo.NewSource(yahoo.NewClient(yahoo.ClientConfig{
			HTTPClient: opts.PlatformHTTPClient,
			BaseURL:    cfg.YahooAPIBaseURL,
			Timeout:    cfg.YahooTimeout,
			GameKeyTTL: cfg.YahooGameKeyTTL,
			Logger:     logger,
		}), yahoo.SourceConfig{GameCode: cfg.YahooGameCode, Archive: archive, Logger: logger, Recorder: recorder, Now: opts.Now}))
	}

	c.Activation = usecase.NewActivationService(usecase.ActivationDeps{
		Leagues: c.Leagues,
		Store:   c.Store,
		Sources: sources,
		Tokens:  tokens,
		Discovery: usecase.NewSeasonDiscovery(usecase.DiscoveryConfig{
			Floor:    cfg.DiscoveryFloorSeason,
			Logger:   logger,
			Recorder: recorder,
		}),
		IDs:      id.NewUUIDGenerator(),
		Now:      opts.Now,
		Logger:   logger,
		Recorder: recorder,
	})
	c.Views = usecase.NewViewService(c.Leagues)
	c.Refresh = usecase.NewRefreshService(c.Leagues, c.Activation, usecase.RefreshConfig{
		Workers:  cfg.RefreshWorkers,
		Now:      opts.Now,
		Logger:   logger,
		Recorder: recorder,
	})

	return c, nil
}

func (c *Container) buildSeasonStore(ctx context.Context, opts Options, loadAWS func() (aws.Config, error)) (season.Store, error) {
	if opts.SeasonStore != nil {
		return opts.SeasonStore, nil
	}

	switch c.Config.SeasonStore {
	case config.SeasonStoreDynamoDB:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return dynamo.NewSeasonStore(dynamodb.NewFromConfig(awsCfg), dynamo.SeasonStoreConfig{
			Table:  c.Config.DynamoDBTable,
			Logger: c.Logger,
			Now:    opts.Now,
		}), nil
	case config.SeasonStoreRedis:
		client, err := redisstore.NewClient(ctx, c.Config.RedisURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client.Close)
		return redisstore.NewSeasonStore(client, redisstore.SeasonStoreConfig{
			KeyPrefix: c.Config.RedisKeyPrefix + ":",
			Logger:    c.Logger,
			Now:       opts.Now,
		}), nil
	default:
		return memory.NewSeasonStore(), nil
	}
}

func buildRawArchive(cfg config.Config, db *sqlx.DB, logger *logging.Logger, loadAWS func() (aws.Config, error)) (rawdata.Archive, error) {
	switch cfg.RawArchive {
	case config.RawArchivePostgres:
		if db == nil {
			return nil, fmt.Errorf("raw archive %s requires a postgres connection", cfg.RawArchive)
		}
		return postgres.NewRawPayloadRepository(db), nil
	case config.RawArchiveS3:
		awsCfg, err := loadAWS()
		if err != nil {
			return nil, err
		}
		return rawarchive.NewS3Archive(s3.NewFromConfig(awsCfg), rawarchive.S3Config{
			Bucket: cfg.RawArchiveBucket,
			Prefix: cfg.RawArchivePrefix,
			Logger: logger,
		})
	default:
		return nil, nil
	}
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
