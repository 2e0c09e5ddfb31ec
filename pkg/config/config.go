package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Log      LogConfig
	EduLegit EduLegitConfig
	Checks   ChecksConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig protects the host-platform API surface.
type AuthConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// EduLegitConfig describes the remote document-analysis service and the
// identity this bridge presents to it. The API token doubles as the shared
// secret for inbound webhook signatures.
type EduLegitConfig struct {
	BaseURL            string
	APIToken           string
	CallbackURL        string
	PlatformVersion    string
	PluginVersion      string
	ConnectTimeout     time.Duration
	RequestTimeout     time.Duration
	InsecureSkipVerify bool
	ContextCacheTTL    time.Duration
}

// ChecksConfig holds the global defaults for the per-assignment check
// toggles. Rows in plugin_configs override these.
type ChecksConfig struct {
	Plagiarism bool
	AI         bool
	Screen     bool
	Camera     bool
	Attention  bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Secret:     v.GetString("AUTH_JWT_SECRET"),
		Expiration: parseDuration(v.GetString("AUTH_JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.EduLegit = EduLegitConfig{
		BaseURL:            v.GetString("EDULEGIT_BASE_URL"),
		APIToken:           v.GetString("EDULEGIT_API_TOKEN"),
		CallbackURL:        v.GetString("EDULEGIT_CALLBACK_URL"),
		PlatformVersion:    v.GetString("EDULEGIT_PLATFORM_VERSION"),
		PluginVersion:      v.GetString("EDULEGIT_PLUGIN_VERSION"),
		ConnectTimeout:     parseDuration(v.GetString("EDULEGIT_CONNECT_TIMEOUT"), 7*time.Second),
		RequestTimeout:     parseDuration(v.GetString("EDULEGIT_REQUEST_TIMEOUT"), 10*time.Second),
		InsecureSkipVerify: v.GetBool("EDULEGIT_INSECURE_SKIP_VERIFY"),
		ContextCacheTTL:    parseDuration(v.GetString("EDULEGIT_CONTEXT_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Checks = ChecksConfig{
		Plagiarism: v.GetBool("ENABLE_PLAGIARISM"),
		AI:         v.GetBool("ENABLE_AI"),
		Screen:     v.GetBool("ENABLE_SCREEN"),
		Camera:     v.GetBool("ENABLE_CAMERA"),
		Attention:  v.GetBool("ENABLE_ATTENTION"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "edulegit_bridge")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EDULEGIT_BASE_URL", "https://api.edulegit.com")
	v.SetDefault("EDULEGIT_PLUGIN_VERSION", "1.0")

	v.SetDefault("ENABLE_PLAGIARISM", false)
	v.SetDefault("ENABLE_AI", false)
	v.SetDefault("ENABLE_SCREEN", false)
	v.SetDefault("ENABLE_CAMERA", false)
	v.SetDefault("ENABLE_ATTENTION", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
