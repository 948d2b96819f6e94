package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/entity"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/domain/events"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/config"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/email"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/ffmpeg"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/metrics"
	miniostorage "github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/minio"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/postgres"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/rabbitmq"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/roboflow"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/infra/tracing"
	"github.com/Fayad-nullPointer/VAR-System-AI/internal/usecase"
	"github.com/Fayad-nullPointer/VAR-System-AI/pkg/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting var-events-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if the collector is unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	fatalOnErr(err, "connect to postgres")
	defer pool.Close()

	fatalOnErr(postgres.RunMigrations(ctx, pool), "run migrations")

	// Object storage
	storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
		Endpoint:     cfg.MinIOEndpoint,
		AccessKey:    cfg.MinIOAccessKey,
		SecretKey:    cfg.MinIOSecretKey,
		UseSSL:       cfg.MinIOUseSSL,
		UploadBucket: cfg.MinIOUploadBucket,
		ResultBucket: cfg.MinIOResultBucket,
	})
	fatalOnErr(err, "create minio storage")
	fatalOnErr(storage.EnsureBuckets(ctx), "ensure minio buckets")

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	repo := postgres.NewJobRepository(pool)
	sampler := ffmpeg.NewSampler(cfg.FrameInterval, cfg.ResizeWidth, cfg.FrameFormat, log)
	labels := entity.NewLabelSet(cfg.Labels)
	classifier := roboflow.NewClassifier(roboflow.Config{
		Endpoint: cfg.ClassifierEndpoint,
		APIKey:   cfg.ClassifierAPIKey,
		Model:    cfg.ClassifierModel,
		Version:  cfg.ClassifierVersion,
		Timeout:  time.Duration(cfg.ClassifierTimeoutMs) * time.Millisecond,
	}, labels, log)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// Multiplicity policy: built-in card rules plus configured
	// repeatable labels.
	policy := events.DefaultPolicy()
	for _, l := range cfg.RepeatableLabels {
		policy = policy.WithRepeatable(entity.Label(l))
	}
	reducer := events.NewReducer(policy)

	// Use case
	uc := usecase.NewAnalyzeVideoUseCase(
		repo, storage, storage, sampler, classifier, reducer,
		statusPub, dlqPub, notifier,
		log,
		usecase.AnalyzeVideoConfig{
			TempDir:    cfg.TempDir,
			MaxRetries: cfg.MaxRetries,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQAnalysisQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("var-events-service started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("var-events-service stopped")
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
