package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/resolution"
	"github.com/Ramsey-B/fern/pkg/cache"
	"github.com/Ramsey-B/fern/pkg/container"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/extraction"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/routes/card"
	"github.com/Ramsey-B/fern/pkg/routes/health"
	resolutionroutes "github.com/Ramsey-B/fern/pkg/routes/resolution"
	"github.com/Ramsey-B/fern/pkg/startup"
)

const (
	depPostgres      = "postgres"
	depRedis         = "redis"
	depGraph         = "graph"
	depKafkaProducer = "kafka-producer"
	depResolver      = "resolver"
	depKafkaConsumer = "kafka-consumer"
	depHTTP          = "http"
)

type app struct {
	cfg     *config.Config
	logger  ectologger.Logger
	startup *startup.Startup
	checker *health.Checker

	db          *sqlx.DB
	redisStore  *cache.RedisStore
	graphClient *graph.Client
	producer    *kafka.Producer
	consumer    *kafka.Consumer
	resolver    *resolver.Service
	server      *echo.Echo
}

func newApp(cfg *config.Config, logger ectologger.Logger) *app {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		startup: startup.NewStartup(logger, cfg.StartupMaxAttempts),
		checker: health.NewChecker(cfg.Version),
	}

	a.startup.AddDependency(&startup.FuncDependency{Name: depPostgres, StartFunc: a.startPostgres, StopFunc: a.stopPostgres})

	resolverDeps := []string{depPostgres}
	if cfg.RedisEnabled {
		a.startup.AddDependency(&startup.FuncDependency{Name: depRedis, StartFunc: a.startRedis, StopFunc: a.stopRedis})
		resolverDeps = append(resolverDeps, depRedis)
	}
	if cfg.GraphEnabled {
		a.startup.AddDependency(&startup.FuncDependency{Name: depGraph, StartFunc: a.startGraph, StopFunc: a.stopGraph})
		resolverDeps = append(resolverDeps, depGraph)
	}
	if cfg.KafkaProducerEnabled {
		a.startup.AddDependency(&startup.FuncDependency{Name: depKafkaProducer, StartFunc: a.startProducer, StopFunc: a.stopProducer})
		resolverDeps = append(resolverDeps, depKafkaProducer)
	}

	a.startup.AddDependency(&startup.FuncDependency{Name: depResolver, Requires: resolverDeps, StartFunc: a.startResolver})

	if cfg.KafkaConsumerEnabled {
		a.startup.AddDependency(&startup.FuncDependency{
			Name:      depKafkaConsumer,
			Requires:  []string{depResolver},
			StartFunc: a.startConsumer,
			StopFunc:  func(context.Context) error { return a.consumer.Stop() },
		})
	}

	a.startup.AddDependency(&startup.FuncDependency{Name: depHTTP, Requires: []string{depResolver}, StartFunc: a.startHTTP, StopFunc: a.stopHTTP})

	return a
}

func (a *app) start(ctx context.Context) error {
	if err := a.startup.Start(ctx); err != nil {
		return err
	}
	a.checker.SetReady(true)
	return nil
}

func (a *app) stop(ctx context.Context) error {
	a.checker.SetReady(false)
	return a.startup.Stop(ctx)
}

func (a *app) startPostgres(ctx context.Context) error {
	db, err := database.Connect(ctx, database.Config{
		Host:            a.cfg.DatabaseHost,
		Port:            a.cfg.DatabasePort,
		User:            a.cfg.DatabaseUserName,
		Password:        a.cfg.DatabasePassword,
		Name:            a.cfg.DatabaseName,
		SSLMode:         a.cfg.DatabaseSSLMode,
		MaxOpenConns:    a.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    a.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: a.cfg.DatabaseConnMaxLifetime,
	}, a.logger)
	if err != nil {
		return err
	}

	err = database.MigrateUp(db, a.cfg.DatabaseName, a.logger, &database.MigrationConfig{
		MigrationFolderPath: a.cfg.DatabaseMigrationFolderPath,
		Version:             uint(a.cfg.DatabaseMigrationVersion),
		Force:               a.cfg.DatabaseMigrationForce,
	})
	if err != nil {
		db.Close()
		return err
	}

	a.db = db
	a.checker.AddCheck("database", health.PingFunc(db.PingContext))
	return nil
}

func (a *app) stopPostgres(context.Context) error {
	return a.db.Close()
}

func (a *app) startRedis(ctx context.Context) error {
	store, err := cache.NewRedisStore(ctx, cache.Config{
		Host:     a.cfg.RedisHost,
		Port:     a.cfg.RedisPort,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	}, a.logger)
	if err != nil {
		return err
	}
	a.redisStore = store
	a.checker.AddCheck("redis", store)
	return nil
}

func (a *app) stopRedis(context.Context) error {
	return a.redisStore.Close()
}

func (a *app) startGraph(ctx context.Context) error {
	client, err := graph.NewClient(graph.Config{
		Host:     a.cfg.GraphDBHost,
		Port:     a.cfg.GraphDBPort,
		Username: a.cfg.GraphDBUser,
		Password: a.cfg.GraphDBPassword,
	}, a.logger)
	if err != nil {
		return err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return fmt.Errorf("graph database unreachable: %w", err)
	}
	a.graphClient = client
	a.checker.AddCheck("graph", health.PingFunc(client.VerifyConnectivity))
	return nil
}

func (a *app) stopGraph(ctx context.Context) error {
	return a.graphClient.Close(ctx)
}

func (a *app) startProducer(context.Context) error {
	a.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      a.cfg.KafkaBrokers,
		Topic:        a.cfg.KafkaOutputTopic,
		BatchSize:    a.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(a.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: a.cfg.KafkaRequiredAcks,
		Compression:  a.cfg.KafkaCompression,
	}, a.logger)
	return nil
}

func (a *app) stopProducer(context.Context) error {
	return a.producer.Close()
}

func (a *app) startResolver(context.Context) error {
	deps := resolver.Dependencies{
		Repository: resolution.NewRepository(a.db, a.logger),
	}
	if a.redisStore != nil {
		deps.Cache = cache.NewResolutionCache(a.redisStore, a.cfg.ResolutionCacheTTL, a.logger)
	}
	if a.graphClient != nil {
		deps.Graph = graph.NewContactService(a.graphClient, a.logger)
	}
	if a.producer != nil {
		deps.Emitter = events.NewEmitter(a.producer, a.logger)
	}

	a.resolver = resolver.NewService(resolver.Config{
		Strategy:     a.cfg.Strategy(),
		MaxBatchSize: a.cfg.MaxBatchSize,
		Scoring:      matching.DefaultScoringConfig(),
	}, deps, a.logger)
	return nil
}

func (a *app) startConsumer(ctx context.Context) error {
	a.consumer = kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:       a.cfg.KafkaBrokers,
		Topic:         a.cfg.KafkaInputTopic,
		ConsumerGroup: a.cfg.KafkaConsumerGroup,
	}, a.logger, a.resolver.HandleMessage)
	return a.consumer.Start(ctx)
}

func (a *app) newExtractor() extraction.Extractor {
	var parser extraction.FieldParser
	if a.cfg.OpenAIAPIKey != "" {
		parser = extraction.NewLLMParser(a.cfg.OpenAIAPIKey, a.cfg.OpenAIModel, a.logger)
	} else {
		a.logger.Warn("OPENAI_API_KEY is not set, card uploads keep OCR text only")
	}
	return extraction.NewCardExtractor(extraction.NewOCREngine(a.cfg.OCRLanguages), parser, a.logger)
}

// registerServices fills the dependency container the route handlers resolve
// their collaborators from
func (a *app) registerServices() error {
	c, err := container.New(a.cfg.AppName, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create dependency container: %w", err)
	}

	pipeline := extraction.NewPipeline(a.newExtractor(), a.cfg.ExtractionConcurrency, a.logger)

	registrations := []error{
		ectoinject.RegisterInstance[ectologger.Logger](c, a.logger),
		ectoinject.RegisterInstance[resolutionroutes.Resolver](c, a.resolver),
		ectoinject.RegisterInstance[card.Resolver](c, a.resolver),
		ectoinject.RegisterInstance[card.BatchExtractor](c, pipeline),
	}
	return errors.Join(registrations...)
}

func (a *app) startHTTP(context.Context) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(a.logger)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: a.cfg.AllowOrigins}))
	e.Use(otelecho.Middleware(a.cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(a.logger))

	a.checker.RegisterRoutes(e)

	if err := a.registerServices(); err != nil {
		return err
	}

	api := e.Group("/api/v1", middleware.Container(a.cfg.AppName), middleware.RequireTenant())
	scorer := matching.NewScorer(matching.DefaultScoringConfig())
	resolutionroutes.NewHandler(scorer, a.cfg.MaxBatchSize).Register(api)
	card.NewHandler(a.cfg.MaxBatchSize).Register(api)

	e.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		ReadTimeout:       time.Duration(a.cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(a.cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(a.cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(a.cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}
	a.server = e

	go func() {
		if err := e.StartServer(e.Server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.WithError(err).Error("HTTP server stopped")
		}
	}()
	return nil
}

func (a *app) stopHTTP(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
