package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                     string
	BindAddr                 string
	AppEnv                   string
	LogLevel                 string
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	DashboardCacheTTLSeconds int
	AuthSecret               string
	AccessTokenTTLMinutes    int
	OperatorUsername         string
	OperatorPassword         string
	StrictExchangeSaleRef    bool
}

// LoadDotEnv reads path into the environment outside production. Variables
// already set in the environment win over the file. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("DASHBOARD_CACHE_TTL_SECONDS", "30"))
	if err != nil || ttl < 1 {
		ttl = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}
	strict, err := strconv.ParseBool(getEnv("STRICT_EXCHANGE_SALE_REF", "true"))
	if err != nil {
		strict = true
	}

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		BindAddr:                 getEnv("BIND_ADDR", "127.0.0.1"),
		AppEnv:                   getEnv("APP_ENV", "development"),
		LogLevel:                 strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:                  redisDB,
		DashboardCacheTTLSeconds: ttl,
		AuthSecret:               strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes:    tokenTTL,
		OperatorUsername:         strings.TrimSpace(getEnv("OPERATOR_USERNAME", "operador")),
		OperatorPassword:         os.Getenv("OPERATOR_PASSWORD"),
		StrictExchangeSaleRef:    strict,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%s", c.BindAddr, c.Port)
}

func (c Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
