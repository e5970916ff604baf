package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andreyxaxa/Photo-Intake/config"
	kafkactrl "github.com/andreyxaxa/Photo-Intake/internal/controller/kafka"
	"github.com/andreyxaxa/Photo-Intake/internal/controller/restapi"
	"github.com/andreyxaxa/Photo-Intake/internal/controller/worker/outbox"
	"github.com/andreyxaxa/Photo-Intake/internal/controller/worker/reconciler"
	infrakafka "github.com/andreyxaxa/Photo-Intake/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Photo-Intake/internal/repo"
	"github.com/andreyxaxa/Photo-Intake/internal/repo/media"
	"github.com/andreyxaxa/Photo-Intake/internal/repo/persistent"
	"github.com/andreyxaxa/Photo-Intake/internal/usecase/dashboard"
	outboxuc "github.com/andreyxaxa/Photo-Intake/internal/usecase/outbox"
	"github.com/andreyxaxa/Photo-Intake/internal/usecase/submission"
	"github.com/andreyxaxa/Photo-Intake/pkg/httpserver"
	"github.com/andreyxaxa/Photo-Intake/pkg/kafka/consumer"
	"github.com/andreyxaxa/Photo-Intake/pkg/kafka/producer"
	"github.com/andreyxaxa/Photo-Intake/pkg/logger"
	"github.com/andreyxaxa/Photo-Intake/pkg/minioclient"
	"github.com/andreyxaxa/Photo-Intake/pkg/mongodb"
	"github.com/andreyxaxa/Photo-Intake/pkg/postgres"
	"github.com/andreyxaxa/Photo-Intake/pkg/redis"
	"github.com/andreyxaxa/Photo-Intake/pkg/s3client"
)

const (
	_enrichmentFanOut = 8
	_closeTimeout     = 5 * time.Second
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Repository

	// mongo
	mdb, err := mongodb.New(cfg.Mongo.URI,
		mongodb.Database(cfg.Mongo.Database),
		mongodb.MaxPoolSize(cfg.Mongo.PoolMax),
		mongodb.ConnAttempts(cfg.Mongo.ConnAttempts),
		mongodb.ConnTimeout(cfg.Mongo.ConnTimeout),
		mongodb.ServerSelectionTimeout(cfg.Mongo.ServerSelectionTimeout),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - mongodb.New: %w", err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), _closeTimeout)
		defer closeCancel()
		if err := mdb.Close(closeCtx); err != nil {
			l.Error(fmt.Errorf("app - Run - mdb.Close: %w", err))
		}
	}()

	submissionRepo := persistent.NewSubmissionRepo(mdb)
	err = submissionRepo.EnsureIndexes(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - submissionRepo.EnsureIndexes: %w", err))
	}

	// postgres
	pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - postgres.New: %w", err))
	}
	defer pg.Close()

	// media host
	mediaGateway, err := newMediaGateway(ctx, cfg)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newMediaGateway: %w", err))
	}

	// redis, optional listing cache
	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - redis.New: %w", err))
		}
		defer rdb.Close()

		mediaGateway = media.NewCachedGateway(mediaGateway, rdb.Client, cfg.Redis.TTL, l)
	}

	outboxRepo := persistent.NewOutboxRepo(pg)

	// Use-Case
	submissionUseCase := submission.New(
		mediaGateway,
		submissionRepo,
		persistent.NewUploadIntentRepo(pg),
		outboxRepo,
		pg,
		submission.Limits{
			MaxImages:     cfg.Upload.MaxImages,
			MaxTotalSize:  cfg.Upload.MaxTotalSize,
			UploadTimeout: cfg.Upload.Timeout,
			Concurrency:   cfg.Upload.Concurrency,
		},
		l,
	)
	dashboardUseCase := dashboard.New(submissionRepo, mediaGateway, _enrichmentFanOut, l)
	outboxUseCase := outboxuc.New(outboxRepo, pg, l)

	// Kafka Producer
	kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
	}

	// Outbox Relay Worker
	outboxRelayWorker := outbox.New(
		outboxUseCase,
		infrakafka.NewEventProducer(kafkaProducer, cfg.Kafka.CreatedTopic),
		l,
		outbox.Intervals{
			Poll:       cfg.OutboxRelay.PollInterval,
			MarkFailed: cfg.OutboxRelay.MarkFailedInterval,
			Cleanup:    cfg.OutboxRelay.CleanupInterval,
		},
		cfg.OutboxRelay.Retention,
		cfg.OutboxRelay.ProcessBatchTimeout,
		cfg.OutboxRelay.BatchSize,
		cfg.OutboxRelay.MaxRetries,
	)

	// Intent Reconciler Worker
	reconcilerWorker := reconciler.New(
		submissionUseCase,
		l,
		cfg.Reconciler.Interval,
		cfg.Reconciler.StaleAfter,
		cfg.Reconciler.SweepTimeout,
		cfg.Reconciler.BatchSize,
	)

	// Kafka Consumer
	kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.ProcessedTopic)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
	}

	// Kafka as Controller
	kafkaController := kafkactrl.New(
		submissionUseCase,
		infrakafka.NewEventConsumer(kafkaConsumer),
		l,
		cfg.KafkaController.CommitTimeout,
		cfg.KafkaController.ProcessTimeout,
		cfg.KafkaController.Workers,
	)

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
		httpserver.ReadTimeout(cfg.HTTP.ReadTimeout),
		httpserver.WriteTimeout(cfg.HTTP.WriteTimeout),
		httpserver.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
	)
	restapi.NewRouter(httpServer.App, cfg, submissionUseCase, dashboardUseCase, l)

	// Start Components
	err = outboxRelayWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
	}
	err = reconcilerWorker.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - reconcilerWorker.Start: %w", err))
	}
	err = kafkaController.Start(ctx)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - kafkaController.Start: %w", err))
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	shutdown(ctx, l, "kafkaController", cfg.KafkaController.ShutdownTimeout, kafkaController.Shutdown)
	shutdown(ctx, l, "reconcilerWorker", cfg.Reconciler.ShutdownTimeout, reconcilerWorker.Shutdown)
	shutdown(ctx, l, "outboxRelayWorker", cfg.OutboxRelay.ShutdownTimeout, outboxRelayWorker.Shutdown)
}

func shutdown(ctx context.Context, l logger.Interface, name string, timeout time.Duration, f func(context.Context) error) {
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, timeout)
	defer shutdownCancel()

	err := f(shutdownCtx)
	if err != nil {
		l.Error(fmt.Errorf("app - Run - %s.Shutdown: %w", name, err))
	}
}

func newMediaGateway(ctx context.Context, cfg *config.Config) (repo.MediaGateway, error) {
	loadCtx, loadCancel := context.WithTimeout(ctx, cfg.Media.CfgLoadTimeout)
	defer loadCancel()

	switch cfg.Media.Driver {
	case config.MediaDriverMinio:
		mc, err := minioclient.New(loadCtx, cfg.Media.Endpoint, cfg.Media.AccessKey, cfg.Media.SecretKey, cfg.Media.Bucket,
			minioclient.Region(cfg.Media.Region),
			minioclient.UseSSL(cfg.Media.UseSSL),
		)
		if err != nil {
			return nil, fmt.Errorf("minioclient.New: %w", err)
		}

		return media.NewMinioGateway(mc, cfg.Media.PublicBaseURL), nil
	default:
		s3c, err := s3client.New(loadCtx, cfg.Media.Endpoint, cfg.Media.AccessKey, cfg.Media.SecretKey, cfg.Media.Bucket,
			s3client.Region(cfg.Media.Region),
			s3client.RetryMaxAttempts(cfg.Media.MaxRetries),
		)
		if err != nil {
			return nil, fmt.Errorf("s3client.New: %w", err)
		}

		return media.NewS3Gateway(s3c, cfg.Media.PublicBaseURL), nil
	}
}
