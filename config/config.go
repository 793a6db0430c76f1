package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	API      APIConfig
	Session  SessionConfig
	Redis    RedisConfig
	Activity ActivityConfig
	Observ   ObservabilityConfig
}

type APIConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

type SessionConfig struct {
	// Backend selects where the session record lives: "file" or "redis".
	Backend string
	// FilePath is the fixed location of the file-backed record.
	FilePath string
	// RedisKey is the fixed record key for the redis backend.
	RedisKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ActivityConfig struct {
	// Brokers empty disables the activity event stream.
	Brokers []string
	Topic   string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

// Enabled reports whether the activity stream is configured.
func (a ActivityConfig) Enabled() bool {
	return len(a.Brokers) > 0
}

func Load() *Config {
	_ = godotenv.Load()

	timeout, _ := strconv.Atoi(getEnv("API_TIMEOUT_SECONDS", "10"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	var brokers []string
	if raw := getEnv("ACTIVITY_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		API: APIConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://localhost:5000"),
			TimeoutSeconds: timeout,
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_BACKEND", "file"),
			FilePath: getEnv("SESSION_FILE", ".storefront/user.json"),
			RedisKey: getEnv("SESSION_REDIS_KEY", "storefront:session:user"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Activity: ActivityConfig{
			Brokers: brokers,
			Topic:   getEnv("ACTIVITY_TOPIC", "storefront-activity"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	log.Printf("Config loaded: env=%s, api=%s", cfg.Env, cfg.API.BaseURL)
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
