package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Jurgenvdlecq/seatemail/render"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Log       LogConfig        `yaml:"log"`
	Upload    UploadConfig     `yaml:"upload"`
	PDF       PDFConfig        `yaml:"pdf"`
	Catalog   CatalogConfig    `yaml:"catalog"`
	Minio     MinioConfig      `yaml:"minio"`
	Auth      AuthConfig       `yaml:"auth"`
	RateLimit RateLimitConfig  `yaml:"rate_limit"`
	Email     render.Signature `yaml:"email"`
	Users     []User           `yaml:"users"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	StaticDir       string        `yaml:"static_dir"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Staging backends for uploaded quotes.
const (
	StagingLocal = "local"
	StagingMinio = "minio"
)

type UploadConfig struct {
	Field    string `yaml:"field"`
	MaxBytes int64  `yaml:"max_bytes"`
	Staging  string `yaml:"staging"`
	TempDir  string `yaml:"temp_dir"`
}

// PDF engines.
const (
	EngineNative    = "native"
	EnginePdftotext = "pdftotext"
)

type PDFConfig struct {
	Engine    string        `yaml:"engine"`
	Pdftotext string        `yaml:"pdftotext"`
	Timeout   time.Duration `yaml:"timeout"`
}

type CatalogConfig struct {
	Path       string `yaml:"path"`
	ReloadCron string `yaml:"reload_cron"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AuthConfig struct {
	Enabled          bool   `yaml:"enabled"`
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// FieldError reports one invalid configuration value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path. A missing file yields the defaults. A .env
// file next to the config is loaded into the environment first, and the
// PORT, LOG_LEVEL, CATALOG_PATH and JWT_SECRET variables override the file.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &FieldError{Field: "PORT", Message: fmt.Sprintf("not a number: %q", v)}
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "public"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 60 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Upload.Field == "" {
		c.Upload.Field = "offerte"
	}
	if c.Upload.MaxBytes == 0 {
		c.Upload.MaxBytes = 20 << 20
	}
	if c.Upload.Staging == "" {
		c.Upload.Staging = StagingLocal
	}
	if c.PDF.Engine == "" {
		c.PDF.Engine = EngineNative
	}
	if c.PDF.Pdftotext == "" {
		c.PDF.Pdftotext = "pdftotext"
	}
	if c.PDF.Timeout == 0 {
		c.PDF.Timeout = 30 * time.Second
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = "public/data/prijslijst.json"
	}
	if c.Minio.Bucket == "" {
		c.Minio.Bucket = "offertes"
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
}

// Validate checks cross-field constraints. All problems are returned joined.
func (c *Config) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &FieldError{Field: field, Message: msg})
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", fmt.Sprintf("out of range: %d", c.Server.Port))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	if c.Upload.MaxBytes < 0 {
		add("upload.max_bytes", "must not be negative")
	}
	switch c.Upload.Staging {
	case StagingLocal:
	case StagingMinio:
		if c.Minio.Endpoint == "" {
			add("minio.endpoint", "required when upload.staging is minio")
		}
	default:
		add("upload.staging", fmt.Sprintf("unknown backend %q", c.Upload.Staging))
	}
	switch c.PDF.Engine {
	case EngineNative, EnginePdftotext:
	default:
		add("pdf.engine", fmt.Sprintf("unknown engine %q", c.PDF.Engine))
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		add("auth.jwt_secret", "required when auth is enabled")
	}
	if c.RateLimit.Requests < 0 {
		add("rate_limit.requests", "must not be negative")
	}
	return errors.Join(errs...)
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
