package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	StorageDriver       string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool
	MinioPublicBaseURL  string
	LocalStorageDir     string
	LocalPublicBaseURL  string
	UploadMaxAttempts   int
	UploadBackoffBaseMS int

	SweepBatchSize       int
	SweepWorkers         int
	SweepIntervalSecs    int
	SweepClaimTTLSecs    int
	NotifyDriver         string
	AWSRegion            string
	SNSTopicARN          string
	NotifyTimeoutSeconds int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "creditflow")
	v.SetDefault("MYSQL_USER", "creditflow")
	v.SetDefault("MYSQL_PASS", "creditflow")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("MINIO_BUCKET", "creditflow")
	v.SetDefault("LOCAL_STORAGE_DIR", "./data/blobs")
	v.SetDefault("LOCAL_PUBLIC_BASE_URL", "http://localhost:8080/files")
	v.SetDefault("UPLOAD_MAX_ATTEMPTS", 3)
	v.SetDefault("UPLOAD_BACKOFF_BASE_MS", 1000)
	v.SetDefault("SWEEP_BATCH_SIZE", 100)
	v.SetDefault("SWEEP_WORKERS", 1)
	v.SetDefault("SWEEP_INTERVAL_SECONDS", 0)
	v.SetDefault("SWEEP_CLAIM_TTL_SECONDS", 600)
	v.SetDefault("NOTIFY_DRIVER", "log")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("NOTIFY_TIMEOUT_SECONDS", 5)
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() *Config {
	loadDotEnv()
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	defaults(v)
	return fromViper(v)
}

func loadDotEnv() {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		_ = godotenv.Load(path)
	}
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		AppPort:   v.GetString("APP_PORT"),
		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		RedisAddr:    v.GetString("REDIS_ADDR"),
		RedisDB:      v.GetInt("REDIS_DB"),
		IdempTTLSecs: v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		MinioEndpoint:       v.GetString("MINIO_ENDPOINT"),
		MinioAccessKey:      v.GetString("MINIO_ACCESS_KEY"),
		MinioSecretKey:      v.GetString("MINIO_SECRET_KEY"),
		MinioBucket:         v.GetString("MINIO_BUCKET"),
		MinioUseSSL:         v.GetBool("MINIO_USE_SSL"),
		MinioPublicBaseURL:  v.GetString("MINIO_PUBLIC_BASE_URL"),
		LocalStorageDir:     v.GetString("LOCAL_STORAGE_DIR"),
		LocalPublicBaseURL:  v.GetString("LOCAL_PUBLIC_BASE_URL"),
		UploadMaxAttempts:   v.GetInt("UPLOAD_MAX_ATTEMPTS"),
		UploadBackoffBaseMS: v.GetInt("UPLOAD_BACKOFF_BASE_MS"),

		SweepBatchSize:       v.GetInt("SWEEP_BATCH_SIZE"),
		SweepWorkers:         v.GetInt("SWEEP_WORKERS"),
		SweepIntervalSecs:    v.GetInt("SWEEP_INTERVAL_SECONDS"),
		SweepClaimTTLSecs:    v.GetInt("SWEEP_CLAIM_TTL_SECONDS"),
		NotifyDriver:         strings.ToLower(v.GetString("NOTIFY_DRIVER")),
		AWSRegion:            v.GetString("AWS_REGION"),
		SNSTopicARN:          v.GetString("SNS_TOPIC_ARN"),
		NotifyTimeoutSeconds: v.GetInt("NOTIFY_TIMEOUT_SECONDS"),
	}
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.UploadMaxAttempts < 1 {
		return fmt.Errorf("UPLOAD_MAX_ATTEMPTS must be >= 1, got %d", c.UploadMaxAttempts)
	}
	if c.UploadBackoffBaseMS < 0 {
		return fmt.Errorf("UPLOAD_BACKOFF_BASE_MS must be >= 0, got %d", c.UploadBackoffBaseMS)
	}
	if c.SweepWorkers < 1 {
		return fmt.Errorf("SWEEP_WORKERS must be >= 1, got %d", c.SweepWorkers)
	}
	if c.SweepBatchSize < 1 {
		return fmt.Errorf("SWEEP_BATCH_SIZE must be >= 1, got %d", c.SweepBatchSize)
	}
	switch c.StorageDriver {
	case "local":
		if c.LocalStorageDir == "" {
			return errors.New("missing LOCAL_STORAGE_DIR")
		}
	case "minio":
		if c.MinioEndpoint == "" || c.MinioBucket == "" {
			return errors.New("missing MinIO config (MINIO_ENDPOINT/BUCKET)")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.NotifyDriver {
	case "log":
	case "sns":
		if c.SNSTopicARN == "" {
			return errors.New("NOTIFY_DRIVER=sns requires SNS_TOPIC_ARN")
		}
	default:
		return fmt.Errorf("unknown NOTIFY_DRIVER %q", c.NotifyDriver)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) UploadBackoffBase() time.Duration {
	return time.Duration(c.UploadBackoffBaseMS) * time.Millisecond
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSecs) * time.Second
}

func (c *Config) SweepClaimTTL() time.Duration {
	return time.Duration(c.SweepClaimTTLSecs) * time.Second
}

func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSeconds) * time.Second
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
