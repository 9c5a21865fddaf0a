package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Speech     SpeechConfig     `mapstructure:"speech"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Image      ImageConfig      `mapstructure:"image"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Reminders  RemindersConfig  `mapstructure:"reminders"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	AvatarDir       string        `mapstructure:"avatar_dir"`
	LogBodies       bool          `mapstructure:"log_bodies"`
}

type AuthConfig struct {
	Secret       string `mapstructure:"secret"`
	Issuer       string `mapstructure:"issuer"`
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
	SeedDemoUser bool   `mapstructure:"seed_demo_user"`
	DemoEmail    string `mapstructure:"demo_email"`
	DemoPassword string `mapstructure:"demo_password"`
}

// Storage drivers
const (
	DriverJSONFile = "jsonfile"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	// CacheTTL enables the in-process read cache when positive
	CacheTTL time.Duration  `mapstructure:"cache_ttl"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
}

type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type MongoConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type SpeechConfig struct {
	Timeout    time.Duration    `mapstructure:"timeout"`
	Google     GoogleConfig     `mapstructure:"google"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
}

type GoogleConfig struct {
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	LanguageCode string `mapstructure:"language_code"`
	DefaultVoice string `mapstructure:"default_voice"`
}

type ElevenLabsConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ModelID      string `mapstructure:"model_id"`
	DefaultVoice string `mapstructure:"default_voice"`
}

type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	ChatEnabled bool          `mapstructure:"chat_enabled"`
	ChatModel   string        `mapstructure:"chat_model"`
	ImageModel  string        `mapstructure:"image_model"`
	ImageSize   string        `mapstructure:"image_size"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type ImageConfig struct {
	SaveAvatars bool `mapstructure:"save_avatars"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
	Folder    string `mapstructure:"folder"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type RemindersConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	At      string `mapstructure:"at"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Secrets are read from the environment only, never from config.yml
type Secrets struct {
	Port             int    `envconfig:"PORT"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	GoogleTTSAPIKey  string `envconfig:"GOOGLE_TTS_API_KEY"`
	ElevenLabsAPIKey string `envconfig:"ELEVEN_LABS_API_KEY"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	CloudinaryName   string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinarySecret string `envconfig:"CLOUDINARY_API_SECRET"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	DatabaseURL      string `envconfig:"DATABASE_URL"`
	RedisURL         string `envconfig:"REDIS_URL"`
	MongoURI         string `envconfig:"MONGO_URI"`
}

var ErrMissingJWTSecret = errors.New("auth.secret or JWT_SECRET must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.avatar_dir", "public/avatars")

	v.SetDefault("auth.issuer", "popdoc")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.seed_demo_user", true)
	v.SetDefault("auth.demo_email", "test@example.com")
	v.SetDefault("auth.demo_password", "password123")

	v.SetDefault("storage.driver", DriverJSONFile)
	v.SetDefault("storage.path", "data/users.json")
	v.SetDefault("storage.redis.key_prefix", "popdoc")
	v.SetDefault("storage.redis.max_retries", 3)
	v.SetDefault("storage.redis.retry_backoff", "100ms")
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.mongo.database", "popdoc")
	v.SetDefault("storage.mongo.collection", "users")
	v.SetDefault("storage.postgres.max_open_conns", 10)
	v.SetDefault("storage.postgres.max_idle_conns", 5)
	v.SetDefault("storage.postgres.conn_max_lifetime", "30m")

	v.SetDefault("speech.timeout", "30s")
	v.SetDefault("speech.google.language_code", "en-US")
	v.SetDefault("speech.google.default_voice", "en-US-Wavenet-D")
	v.SetDefault("speech.elevenlabs.model_id", "eleven_monolingual_v1")
	v.SetDefault("speech.elevenlabs.default_voice", "Josh")
	v.SetDefault("speech.breaker.max_failures", 5)
	v.SetDefault("speech.breaker.timeout", "30s")

	v.SetDefault("openai.chat_model", "gpt-4o-mini")
	v.SetDefault("openai.image_model", "dall-e-3")
	v.SetDefault("openai.image_size", "1024x1024")
	v.SetDefault("openai.max_tokens", 200)
	v.SetDefault("openai.temperature", 0.8)
	v.SetDefault("openai.timeout", "30s")

	v.SetDefault("cloudinary.folder", "popdoc/avatars")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("reminders.at", "08:00")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
}

// LoadConfig reads .env, then config.yml from the given directories (or the
// standard ones), then overlays secrets from the environment. A missing
// config file is not an error.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/app/config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix("POPDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process("", &secrets); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.apply(secrets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) apply(s Secrets) {
	if s.Port != 0 {
		c.Server.Port = s.Port
	}
	override(&c.Auth.Secret, s.JWTSecret)
	override(&c.Speech.Google.APIKey, s.GoogleTTSAPIKey)
	override(&c.Speech.ElevenLabs.APIKey, s.ElevenLabsAPIKey)
	override(&c.OpenAI.APIKey, s.OpenAIAPIKey)
	override(&c.Cloudinary.CloudName, s.CloudinaryName)
	override(&c.Cloudinary.APIKey, s.CloudinaryKey)
	override(&c.Cloudinary.APISecret, s.CloudinarySecret)
	override(&c.SMTP.Password, s.SMTPPassword)
	override(&c.Storage.Postgres.URL, s.DatabaseURL)
	override(&c.Storage.Redis.URL, s.RedisURL)
	override(&c.Storage.Mongo.URI, s.MongoURI)
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the settings that would otherwise fail at first use
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return ErrMissingJWTSecret
	}
	switch c.Storage.Driver {
	case DriverJSONFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the %s driver", DriverJSONFile)
		}
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.Postgres.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	case DriverRedis:
		if c.Storage.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the %s driver", DriverRedis)
		}
	case DriverMongo:
		if c.Storage.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required for the %s driver", DriverMongo)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
