package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"google.golang.org/grpc"

	"github.com/tallerhub/taller-status/internal/configsource"
	"github.com/tallerhub/taller-status/internal/core"
	"github.com/tallerhub/taller-status/internal/events"
	tallergrpc "github.com/tallerhub/taller-status/internal/grpc"
	"github.com/tallerhub/taller-status/internal/metrics"
	"github.com/tallerhub/taller-status/internal/repair"
	"github.com/tallerhub/taller-status/internal/scheduler"
	"github.com/tallerhub/taller-status/internal/server"
	"github.com/tallerhub/taller-status/internal/state"
	"github.com/tallerhub/taller-status/internal/tracing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := server.LoadConfig()
	if cfg.APIKey == "" && !cfg.AllowInsecureNoAuth {
		logger.Error("refusing to start without API authentication", "hint", "set TALLER_API_KEY or TALLER_ALLOW_INSECURE_NO_AUTH=true for local development")
		os.Exit(1)
	}
	if cfg.AllowInsecureNoAuth {
		logger.Warn("running without authentication; set TALLER_API_KEY for any shared or production environment")
	}

	ctx := context.Background()

	otelShutdown, err := tracing.Setup(ctx, tracing.Config{
		ServiceName: "taller-status",
		Version:     core.Version,
		Enabled:     cfg.OTelEnabled,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Error("failed to initialize OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	var awsCfg aws.Config
	if cfg.Store == server.StoreDynamoDB || cfg.EventsQueueURL != "" {
		awsCfg, err = buildAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to configure AWS", "error", err)
			os.Exit(1)
		}
	}

	store, err := openStore(ctx, cfg, awsCfg)
	if err != nil {
		logger.Error("failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	logger.Info("state store ready", "store", store.Type())

	broker := events.NewBroker(logger)
	var sqsPublisher core.EventPublisher
	if cfg.EventsQueueURL != "" {
		sqsPublisher = events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.EventsQueueURL, cfg.EventsFIFO)
		logger.Info("publishing status events to SQS", "queue", cfg.EventsQueueURL, "fifo", cfg.EventsFIFO)
	}
	publisher := events.NewFanout(broker, sqsPublisher)

	engines := core.NewEngines()
	loader := configsource.NewLoader(configSource(cfg), engines,
		configsource.WithFallback(configsource.NewStaticSource(nil)),
		configsource.WithPublisher(publisher),
		configsource.WithLogger(logger),
	)
	if _, err := loader.Refresh(ctx); err != nil {
		logger.Error("failed to load status catalog", "error", err)
		os.Exit(1)
	}

	metrics.Init(core.Version, store.Type())

	backend := repair.New(engines, store, publisher)
	backend.SetLogger(logger)
	defer backend.Close()

	grpcServer := grpc.NewServer(tallergrpc.ServerOptions(cfg.APIKey)...)
	statusService := tallergrpc.Register(grpcServer, engines, backend)

	sched := scheduler.New(logger)
	if cfg.ConfigRefresh != "" {
		err := sched.Add("config-refresh", cfg.ConfigRefresh, func(ctx context.Context) error {
			_, err := loader.Refresh(ctx)
			statusService.UpdateHealth()
			return err
		})
		if err != nil {
			logger.Error("invalid config refresh schedule", "spec", cfg.ConfigRefresh, "error", err)
			os.Exit(1)
		}
	}
	sched.Start()
	defer sched.Stop()

	router := server.NewRouter(server.Deps{
		Backend:    backend,
		Engines:    engines,
		Reloader:   loader,
		Subscriber: broker,
		StoreType:  store.Type(),
	}, logger, cfg)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("taller-status listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Error("failed to listen for gRPC", "port", cfg.GRPCPort, "error", err)
			os.Exit(1)
		}
		logger.Info("gRPC server listening", "port", cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	sched.Stop()
	statusService.Shutdown()
	grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// SSE streams end when the broker closes their channels.
	_ = broker.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

func configSource(cfg server.Config) configsource.Source {
	switch {
	case cfg.ConfigURL != "":
		return configsource.NewHTTPSource(cfg.ConfigURL,
			configsource.WithToken(cfg.ConfigToken),
			configsource.WithMaxRetries(uint64(max(cfg.ConfigMaxRetries, 0))),
			configsource.WithAttemptTimeout(cfg.ConfigTimeout),
		)
	case cfg.ConfigFile != "":
		return configsource.NewFileSource(cfg.ConfigFile)
	default:
		return configsource.NewStaticSource(nil)
	}
}

func openStore(ctx context.Context, cfg server.Config, awsCfg aws.Config) (state.Store, error) {
	switch cfg.Store {
	case server.StoreMemory:
		return state.NewMemoryStore(), nil
	case server.StoreDynamoDB:
		store := state.NewDynamoDBStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable)
		if err := store.EnsureTable(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case server.StoreSQLite:
		return state.OpenSQLiteStore(cfg.SQLitePath)
	default:
		return nil, errors.New("unknown store " + cfg.Store)
	}
}

func buildAWSConfig(ctx context.Context, cfg server.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}

	// For LocalStack or custom endpoints
	if cfg.AWSEndpointURL != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               cfg.AWSEndpointURL,
					HostnameImmutable: true,
					PartitionID:       "aws",
				}, nil
			},
		)
		opts = append(opts,
			config.WithEndpointResolverWithOptions(customResolver),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "test")),
		)
	}

	return config.LoadDefaultConfig(ctx, opts...)
}
