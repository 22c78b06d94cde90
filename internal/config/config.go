package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	S3       S3Config       `yaml:"s3"`
	Upload   UploadConfig   `yaml:"upload"`
	Stats    StatsConfig    `yaml:"stats"`
	Jobs     JobsConfig     `yaml:"jobs"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	Env             string        `yaml:"env"`
	LogLevel        string        `yaml:"log_level"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the gorm dialector. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL     string `yaml:"url"`
	Channel string `yaml:"channel"`
}

// S3Config enables archiving of uploaded CSV files. Archiving is off when Bucket is empty.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Prefix    string `yaml:"prefix"`
}

// UploadConfig is handed to the upload handler and the import service.
type UploadConfig struct {
	MaxSizeBytes     int64  `yaml:"max_size_bytes"`
	AllowedExtension string `yaml:"allowed_extension"`
	InsertBatchSize  int    `yaml:"insert_batch_size"`
}

type StatsConfig struct {
	LeaderboardDays   int `yaml:"leaderboard_days"`
	LeaderboardLimit  int `yaml:"leaderboard_limit"`
	UserStatsDays     int `yaml:"user_stats_days"`
	ActiveMinMessages int `yaml:"active_min_messages"`
}

type JobsConfig struct {
	SnapshotSchedule string `yaml:"snapshot_schedule"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

// Enabled reports whether CSV archiving to object storage is configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			Env:             "dev",
			LogLevel:        "info",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			URL:             "chat_data.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			Channel: "chat-stats:dataset",
		},
		S3: S3Config{
			Prefix: "uploads",
		},
		Upload: UploadConfig{
			MaxSizeBytes:     16 * 1024 * 1024,
			AllowedExtension: ".csv",
			InsertBatchSize:  500,
		},
		Stats: StatsConfig{
			LeaderboardDays:   30,
			LeaderboardLimit:  10,
			UserStatsDays:     30,
			ActiveMinMessages: 10,
		},
		Jobs: JobsConfig{
			SnapshotSchedule: "@every 1m",
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	// Load from yaml file if exists
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if env := os.Getenv("ENV"); env != "" {
		cfg.Server.Env = env
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		cfg.Database.Driver = strings.ToLower(driver)
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		cfg.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.S3.Endpoint = endpoint
	}
	if accessKey := os.Getenv("S3_ACCESS_KEY"); accessKey != "" {
		cfg.S3.AccessKey = accessKey
	}
	if secretKey := os.Getenv("S3_SECRET_KEY"); secretKey != "" {
		cfg.S3.SecretKey = secretKey
	}
	if maxSize := os.Getenv("UPLOAD_MAX_SIZE_BYTES"); maxSize != "" {
		if n, err := strconv.ParseInt(maxSize, 10, 64); err == nil && n > 0 {
			cfg.Upload.MaxSizeBytes = n
		}
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = origins
	}

	return cfg, nil
}
