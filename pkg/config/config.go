package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Storage   StorageConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
	// Uploads caps image uploads per user in the same window.
	Uploads int
}

type CORSConfig struct {
	AllowedOrigins []string
}

// StorageConfig selects where uploaded recipe images live.
type StorageConfig struct {
	Backend        string // local, s3, gcs
	MediaRoot      string
	MaxUploadBytes int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	GCSBucket          string
	GCSCredentialsFile string
}

type WorkerConfig struct {
	Concurrency       int
	SweepCron         string
	OrphanGraceMinute int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func (w *WorkerConfig) OrphanGrace() time.Duration {
	return time.Duration(w.OrphanGraceMinute) * time.Minute
}

func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "recipe")
	v.SetDefault("DATABASE_PASSWORD", "recipe_secret")
	v.SetDefault("DATABASE_NAME", "recipe")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_UPLOADS", 20)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("STORAGE_MEDIA_ROOT", "./media")
	v.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("STORAGE_S3_REGION", "us-east-1")
	v.SetDefault("WORKER_CONCURRENCY", 5)
	v.SetDefault("WORKER_SWEEP_CRON", "0 3 * * *")
	v.SetDefault("WORKER_ORPHAN_GRACE_MINUTES", 60)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			Uploads:       v.GetInt("RATE_LIMIT_UPLOADS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Storage: StorageConfig{
			Backend:            strings.ToLower(v.GetString("STORAGE_BACKEND")),
			MediaRoot:          v.GetString("STORAGE_MEDIA_ROOT"),
			MaxUploadBytes:     v.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			S3Bucket:           v.GetString("STORAGE_S3_BUCKET"),
			S3Region:           v.GetString("STORAGE_S3_REGION"),
			S3Endpoint:         v.GetString("STORAGE_S3_ENDPOINT"),
			S3AccessKey:        v.GetString("STORAGE_S3_ACCESS_KEY"),
			S3SecretKey:        v.GetString("STORAGE_S3_SECRET_KEY"),
			GCSBucket:          v.GetString("STORAGE_GCS_BUCKET"),
			GCSCredentialsFile: v.GetString("STORAGE_GCS_CREDENTIALS_FILE"),
		},
		Worker: WorkerConfig{
			Concurrency:       v.GetInt("WORKER_CONCURRENCY"),
			SweepCron:         v.GetString("WORKER_SWEEP_CRON"),
			OrphanGraceMinute: v.GetInt("WORKER_ORPHAN_GRACE_MINUTES"),
		},
	}

	return cfg, nil
}

// splitList parses a comma separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
