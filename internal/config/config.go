package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings sourced from environment variables.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Export   ExportConfig   `mapstructure:"export"`
	Avatar   AvatarConfig   `mapstructure:"avatar"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Worker   WorkerConfig   `mapstructure:"worker"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port int `mapstructure:"port"`
	// AllowedOrigins 为空时 websocket 只接受同源请求。
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig selects the document store backend.
// sqlite is the default local per-device store; postgres is optional.
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Name       string `mapstructure:"name"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	SSLMode    string `mapstructure:"sslmode"`
	LogQueries bool   `mapstructure:"log_queries"`
}

// RedisConfig 包含 Redis 连接配置。Host 为空表示不启用后台导出与通知。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MinIOConfig contains connection options for the export archive. Endpoint 为空表示不归档。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	// PublicEndpoint 是浏览器可访问的地址，用于签发下载链接；为空时沿用 Endpoint。
	PublicEndpoint   string `mapstructure:"public_endpoint"`
	BucketLookup     string `mapstructure:"bucket_lookup"`
	AutoCreateBucket bool   `mapstructure:"auto_create_bucket"`
}

// ExportConfig 控制 PDF 导出管线。
type ExportConfig struct {
	Scale         float64       `mapstructure:"scale"`
	JPEGQuality   int           `mapstructure:"jpeg_quality"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ChromiumBin   string        `mapstructure:"chromium_bin"`
	PreviewWidth  int           `mapstructure:"preview_width"`
	RateLimit     int           `mapstructure:"rate_limit"`
	RateWindow    time.Duration `mapstructure:"rate_window"`
	LinkExpiry    time.Duration `mapstructure:"link_expiry"`
	FallbackLabel string        `mapstructure:"fallback_label"`
}

// AvatarConfig 控制头像上传的校验与压缩。
type AvatarConfig struct {
	MaxBytes    int64  `mapstructure:"max_bytes"`
	MaxPixels   int64  `mapstructure:"max_pixels"`
	MaxEdge     int    `mapstructure:"max_edge"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	ClamdAddr   string `mapstructure:"clamd_addr"`
}

type AutosaveConfig struct {
	Delay       time.Duration `mapstructure:"delay"`
	SaveTimeout time.Duration `mapstructure:"save_timeout"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxRetry    int `mapstructure:"max_retry"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Addr returns host:port, or "" when Redis is disabled.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (m MinIOConfig) Enabled() bool { return m.Endpoint != "" }

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.API.AllowedOrigins = splitList(cfg.API.AllowedOrigins)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "resumes.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "resumes")
	v.SetDefault("database.user", "resumes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_queries", false)
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resume-exports")
	v.SetDefault("minio.bucket_lookup", "auto")
	v.SetDefault("minio.auto_create_bucket", true)
	v.SetDefault("export.scale", 3.0)
	v.SetDefault("export.jpeg_quality", 98)
	v.SetDefault("export.timeout", 60*time.Second)
	v.SetDefault("export.preview_width", 320)
	v.SetDefault("export.rate_limit", 10)
	v.SetDefault("export.rate_window", time.Minute)
	v.SetDefault("export.link_expiry", 15*time.Minute)
	v.SetDefault("export.fallback_label", "resume")
	v.SetDefault("avatar.max_bytes", 5<<20)
	v.SetDefault("avatar.max_pixels", 40_000_000)
	v.SetDefault("avatar.max_edge", 400)
	v.SetDefault("avatar.jpeg_quality", 90)
	v.SetDefault("autosave.delay", 1500*time.Millisecond)
	v.SetDefault("autosave.save_timeout", 10*time.Second)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.max_retry", 3)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                 "API_PORT",
		"api.allowed_origins":      "API_ALLOWED_ORIGINS",
		"database.driver":          "DATABASE_DRIVER",
		"database.sqlite_path":     "SQLITE_PATH",
		"database.host":            "DATABASE_HOST",
		"database.port":            "DATABASE_PORT",
		"database.name":            "POSTGRES_DB",
		"database.user":            "POSTGRES_USER",
		"database.password":        "POSTGRES_PASSWORD",
		"database.sslmode":         "DATABASE_SSLMODE",
		"database.log_queries":     "DATABASE_LOG_QUERIES",
		"redis.host":               "REDIS_HOST",
		"redis.port":               "REDIS_PORT",
		"minio.endpoint":           "MINIO_ENDPOINT",
		"minio.access_key_id":      "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":  "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":            "MINIO_USE_SSL",
		"minio.bucket":             "MINIO_BUCKET",
		"minio.region":             "MINIO_REGION",
		"minio.public_endpoint":    "MINIO_PUBLIC_ENDPOINT",
		"minio.bucket_lookup":      "MINIO_BUCKET_LOOKUP",
		"minio.auto_create_bucket": "MINIO_AUTO_CREATE_BUCKET",
		"export.scale":             "EXPORT_SCALE",
		"export.jpeg_quality":      "EXPORT_JPEG_QUALITY",
		"export.timeout":           "EXPORT_TIMEOUT",
		"export.chromium_bin":      "CHROMIUM_BIN",
		"export.preview_width":     "EXPORT_PREVIEW_WIDTH",
		"export.rate_limit":        "EXPORT_RATE_LIMIT",
		"export.rate_window":       "EXPORT_RATE_WINDOW",
		"export.link_expiry":       "EXPORT_LINK_EXPIRY",
		"export.fallback_label":    "EXPORT_FALLBACK_LABEL",
		"avatar.max_bytes":         "AVATAR_MAX_BYTES",
		"avatar.max_pixels":        "AVATAR_MAX_PIXELS",
		"avatar.max_edge":          "AVATAR_MAX_EDGE",
		"avatar.jpeg_quality":      "AVATAR_JPEG_QUALITY",
		"avatar.clamd_addr":        "CLAMD_ADDR",
		"autosave.delay":           "AUTOSAVE_DELAY",
		"autosave.save_timeout":    "AUTOSAVE_SAVE_TIMEOUT",
		"worker.concurrency":       "WORKER_CONCURRENCY",
		"worker.max_retry":         "WORKER_MAX_RETRY",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// splitList 兼容以逗号分隔的环境变量值。
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.SQLitePath == "" {
			return errors.New("sqlite path is required")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			return errors.New("database host is required")
		}
		if cfg.Database.Port <= 0 {
			return errors.New("database port must be positive")
		}
		if cfg.Database.Name == "" {
			return errors.New("database name is required")
		}
		if cfg.Database.User == "" {
			return errors.New("database user is required")
		}
		if cfg.Database.Password == "" {
			return errors.New("database password is required")
		}
		if cfg.Database.SSLMode == "" {
			return errors.New("database sslmode is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Redis.Enabled() && cfg.Redis.Port <= 0 {
		return errors.New("redis port must be positive")
	}
	if cfg.MinIO.Enabled() {
		if cfg.MinIO.AccessKeyID == "" {
			return errors.New("minio access key id is required")
		}
		if cfg.MinIO.SecretAccessKey == "" {
			return errors.New("minio secret access key is required")
		}
		if cfg.MinIO.Bucket == "" {
			return errors.New("minio bucket is required")
		}
	}
	if cfg.Export.Scale < 1 {
		return errors.New("export scale must be at least 1")
	}
	if cfg.Export.JPEGQuality < 1 || cfg.Export.JPEGQuality > 100 {
		return errors.New("export jpeg quality must be within 1..100")
	}
	if cfg.Export.Timeout <= 0 {
		return errors.New("export timeout must be positive")
	}
	if cfg.Avatar.MaxBytes <= 0 {
		return errors.New("avatar max bytes must be positive")
	}
	if cfg.Avatar.MaxPixels <= 0 {
		return errors.New("avatar max pixels must be positive")
	}
	if cfg.Avatar.MaxEdge <= 0 {
		return errors.New("avatar max edge must be positive")
	}
	if cfg.Avatar.JPEGQuality < 1 || cfg.Avatar.JPEGQuality > 100 {
		return errors.New("avatar jpeg quality must be within 1..100")
	}
	if cfg.Autosave.Delay <= 0 {
		return errors.New("autosave delay must be positive")
	}
	if cfg.Worker.Concurrency <= 0 {
		return errors.New("worker concurrency must be positive")
	}
	return nil
}
