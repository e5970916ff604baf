package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		HTTP            HTTP
		Log             Log
		Mongo           Mongo
		PG              PG
		Media           Media
		Redis           Redis
		Kafka           Kafka
		Upload          Upload
		OutboxRelay     OutboxRelay
		Reconciler      Reconciler
		KafkaController KafkaController
		Swagger         Swagger
	}

	HTTP struct {
		Port            string        `env:"HTTP_PORT,required"`
		UsePreforkMode  bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		BodyLimit       int           `env:"HTTP_BODY_LIMIT" envDefault:"67108864"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"5m"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	Mongo struct {
		URI                    string        `env:"MONGODB_URI,required,notEmpty"`
		Database               string        `env:"MONGODB_DATABASE" envDefault:"photo-processor"`
		PoolMax                int           `env:"MONGODB_POOL_MAX" envDefault:"10"`
		ConnAttempts           int           `env:"MONGODB_CONN_ATTEMPTS" envDefault:"3"`
		ConnTimeout            time.Duration `env:"MONGODB_CONN_TIMEOUT" envDefault:"1s"` // pause between attempts
		ServerSelectionTimeout time.Duration `env:"MONGODB_SERVER_SELECTION_TIMEOUT" envDefault:"5s"`
	}

	PG struct {
		PoolMax int    `env:"PG_POOL_MAX,required"`
		URL     string `env:"PG_URL,required"`
	}

	Media struct {
		Driver         string        `env:"MEDIA_DRIVER" envDefault:"s3"`
		Endpoint       string        `env:"MEDIA_ENDPOINT"`
		AccessKey      string        `env:"MEDIA_ACCESS_KEY,required"`
		SecretKey      string        `env:"MEDIA_SECRET_KEY,required"`
		Bucket         string        `env:"MEDIA_BUCKET,required"`
		Region         string        `env:"MEDIA_REGION" envDefault:"us-east-1"`
		PublicBaseURL  string        `env:"MEDIA_PUBLIC_BASE_URL,required"`
		UseSSL         bool          `env:"MEDIA_USE_SSL" envDefault:"false"`
		MaxRetries     int           `env:"MEDIA_MAX_RETRIES" envDefault:"3"`
		CfgLoadTimeout time.Duration `env:"MEDIA_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	// Redis is optional: an empty Addr disables the folder listing cache.
	Redis struct {
		Addr     string        `env:"REDIS_ADDR"`
		Password string        `env:"REDIS_PASSWORD"`
		DB       int           `env:"REDIS_DB" envDefault:"0"`
		TTL      time.Duration `env:"REDIS_LISTING_TTL" envDefault:"30s"`
	}

	Kafka struct {
		Brokers        []string `env:"KAFKA_BROKERS,required"`
		GroupID        string   `env:"KAFKA_GROUP_ID,required"`
		CreatedTopic   string   `env:"KAFKA_CREATED_TOPIC" envDefault:"submissions.created"`
		ProcessedTopic string   `env:"KAFKA_PROCESSED_TOPIC" envDefault:"submissions.processed"`
	}

	Upload struct {
		MaxImages    int           `env:"UPLOAD_MAX_IMAGES" envDefault:"33"`
		MaxTotalSize int64         `env:"UPLOAD_MAX_TOTAL_SIZE" envDefault:"52428800"`
		Timeout      time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"5m"`
		Concurrency  int           `env:"UPLOAD_CONCURRENCY" envDefault:"8"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		Retention           time.Duration `env:"OUTBOX_RELAY_RETENTION" envDefault:"168h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	// Reconciler.StaleAfter must stay above Upload.Timeout, otherwise intents
	// of ingestions still in flight get swept.
	Reconciler struct {
		Interval        time.Duration `env:"RECONCILER_INTERVAL" envDefault:"1m"`
		StaleAfter      time.Duration `env:"RECONCILER_STALE_AFTER" envDefault:"15m"`
		BatchSize       int           `env:"RECONCILER_BATCH_SIZE" envDefault:"50"`
		SweepTimeout    time.Duration `env:"RECONCILER_SWEEP_TIMEOUT" envDefault:"30s"`
		ShutdownTimeout time.Duration `env:"RECONCILER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"10s"`
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"4"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Media.Driver {
	case MediaDriverS3, MediaDriverMinio:
	default:
		return fmt.Errorf("unknown MEDIA_DRIVER %q", c.Media.Driver)
	}

	if c.Reconciler.StaleAfter <= c.Upload.Timeout {
		return fmt.Errorf("RECONCILER_STALE_AFTER (%s) must exceed UPLOAD_TIMEOUT (%s)",
			c.Reconciler.StaleAfter, c.Upload.Timeout)
	}

	return nil
}

const (
	MediaDriverS3    = "s3"
	MediaDriverMinio = "minio"
)
