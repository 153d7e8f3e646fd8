package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	DocSource  DocSourceConfig
	Remote     RemoteConfig
	Extraction ExtractionConfig
	Queue      QueueConfig
	Upload     UploadConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// StorageConfig selects where uploaded documents are kept.
type StorageConfig struct {
	Backend  string `mapstructure:"backend"` // "s3" or "local"
	LocalDir string `mapstructure:"local_dir"`

	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// DocSourceConfig holds the document-parsing backend settings.
type DocSourceConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// RemoteConfig holds the remote LLM extraction backend settings.
type RemoteConfig struct {
	Provider      string `mapstructure:"provider"`
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	MaxAttempts   int    `mapstructure:"max_attempts"`
	BackoffBaseMs int    `mapstructure:"backoff_base_ms"`
}

// ExtractionConfig holds the pipeline thresholds. The defaults are the
// documented behavior; they are configurable for tuning, not per-request.
type ExtractionConfig struct {
	Mode                string  `mapstructure:"mode"` // hybrid, local_only, remote_only
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	EscalationThreshold float64 `mapstructure:"escalation_threshold"`
	MaxTables           int     `mapstructure:"max_tables"`
	PreferRemoteOnTie   bool    `mapstructure:"prefer_remote_on_tie"`
	DefaultTaxRate      float64 `mapstructure:"default_tax_rate"`
}

// QueueConfig holds processing worker settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the FACTURO_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FACTURO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_dir", "data/uploads")
	v.SetDefault("storage.region", "eu-west-1")
	v.SetDefault("storage.bucket", "facturo-uploads")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presign_expiry", 3600)

	// Document source defaults
	v.SetDefault("docsource.base_url", "http://localhost:9090")
	v.SetDefault("docsource.timeout_secs", 120)

	// Remote extraction defaults
	v.SetDefault("remote.provider", "claude")
	v.SetDefault("remote.api_key", "")
	v.SetDefault("remote.model", "claude-sonnet-4-20250514")
	v.SetDefault("remote.timeout_secs", 120)
	v.SetDefault("remote.max_attempts", 3)
	v.SetDefault("remote.backoff_base_ms", 500)

	// Extraction defaults
	v.SetDefault("extraction.mode", "hybrid")
	v.SetDefault("extraction.confidence_threshold", 0.7)
	v.SetDefault("extraction.escalation_threshold", 0.7)
	v.SetDefault("extraction.max_tables", 3)
	v.SetDefault("extraction.prefer_remote_on_tie", true)
	v.SetDefault("extraction.default_tax_rate", 21.0)

	// Queue defaults
	v.SetDefault("queue.concurrency", 5)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 50)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "FACTURO_SERVER_PORT",
		"server.read_timeout":             "FACTURO_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "FACTURO_SERVER_WRITE_TIMEOUT",
		"server.environment":              "FACTURO_SERVER_ENVIRONMENT",
		"storage.backend":                 "FACTURO_STORAGE_BACKEND",
		"storage.local_dir":               "FACTURO_STORAGE_LOCAL_DIR",
		"storage.region":                  "FACTURO_STORAGE_REGION",
		"storage.bucket":                  "FACTURO_STORAGE_BUCKET",
		"storage.endpoint":                "FACTURO_STORAGE_ENDPOINT",
		"storage.access_key":              "FACTURO_STORAGE_ACCESS_KEY",
		"storage.secret_key":              "FACTURO_STORAGE_SECRET_KEY",
		"storage.presign_expiry":          "FACTURO_STORAGE_PRESIGN_EXPIRY",
		"docsource.base_url":              "FACTURO_DOCSOURCE_BASE_URL",
		"docsource.timeout_secs":          "FACTURO_DOCSOURCE_TIMEOUT_SECS",
		"remote.provider":                 "FACTURO_REMOTE_PROVIDER",
		"remote.api_key":                  "FACTURO_REMOTE_API_KEY",
		"remote.model":                    "FACTURO_REMOTE_MODEL",
		"remote.timeout_secs":             "FACTURO_REMOTE_TIMEOUT_SECS",
		"remote.max_attempts":             "FACTURO_REMOTE_MAX_ATTEMPTS",
		"remote.backoff_base_ms":          "FACTURO_REMOTE_BACKOFF_BASE_MS",
		"extraction.mode":                 "FACTURO_EXTRACTION_MODE",
		"extraction.confidence_threshold": "FACTURO_EXTRACTION_CONFIDENCE_THRESHOLD",
		"extraction.escalation_threshold": "FACTURO_EXTRACTION_ESCALATION_THRESHOLD",
		"extraction.max_tables":           "FACTURO_EXTRACTION_MAX_TABLES",
		"extraction.prefer_remote_on_tie": "FACTURO_EXTRACTION_PREFER_REMOTE_ON_TIE",
		"extraction.default_tax_rate":     "FACTURO_EXTRACTION_DEFAULT_TAX_RATE",
		"queue.concurrency":               "FACTURO_QUEUE_CONCURRENCY",
		"upload.max_file_size_mb":         "FACTURO_UPLOAD_MAX_FILE_SIZE_MB",
		"log.level":                       "FACTURO_LOG_LEVEL",
		"log.format":                      "FACTURO_LOG_FORMAT",
		"cors.allowed_origins":            "FACTURO_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if FACTURO_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("FACTURO_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Storage = StorageConfig{
		Backend:       v.GetString("storage.backend"),
		LocalDir:      v.GetString("storage.local_dir"),
		Region:        v.GetString("storage.region"),
		Bucket:        v.GetString("storage.bucket"),
		Endpoint:      v.GetString("storage.endpoint"),
		AccessKey:     v.GetString("storage.access_key"),
		SecretKey:     v.GetString("storage.secret_key"),
		PresignExpiry: v.GetInt64("storage.presign_expiry"),
	}
	cfg.DocSource = DocSourceConfig{
		BaseURL:     v.GetString("docsource.base_url"),
		TimeoutSecs: v.GetInt("docsource.timeout_secs"),
	}
	cfg.Remote = RemoteConfig{
		Provider:      v.GetString("remote.provider"),
		APIKey:        v.GetString("remote.api_key"),
		Model:         v.GetString("remote.model"),
		TimeoutSecs:   v.GetInt("remote.timeout_secs"),
		MaxAttempts:   v.GetInt("remote.max_attempts"),
		BackoffBaseMs: v.GetInt("remote.backoff_base_ms"),
	}
	cfg.Extraction = ExtractionConfig{
		Mode:                v.GetString("extraction.mode"),
		ConfidenceThreshold: v.GetFloat64("extraction.confidence_threshold"),
		EscalationThreshold: v.GetFloat64("extraction.escalation_threshold"),
		MaxTables:           v.GetInt("extraction.max_tables"),
		PreferRemoteOnTie:   v.GetBool("extraction.prefer_remote_on_tie"),
		DefaultTaxRate:      v.GetFloat64("extraction.default_tax_rate"),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
