package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv loads ./.env into the process environment if present.
// Variables already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

type lookupFunc func(key string) (string, bool)

// parseEnv overlays values from environment variables. Names follow the
// usual deployment conventions (DATABASE_URL, SECRET_KEY, AWS_*) plus
// HYDRATR_* for the rest. A malformed number, bool or duration panics,
// like a malformed JSON config does.
func parseEnv(cfg *Config, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HYDRATR_HTTP_ADDR", &cfg.EndpointAddrHTTP)
	str("HYDRATR_GRPC_ADDR", &cfg.EndpointAddrGRPC)
	str("DATABASE_URL", &cfg.DatabaseDSN)
	str("SECRET_KEY", &cfg.SecretKey)
	str("HYDRATR_STORAGE_TYPE", &cfg.StorageType)
	str("HYDRATR_STORAGE_PATH", &cfg.StorageLocalPath)
	str("AWS_ACCESS_KEY_ID", &cfg.S3AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &cfg.S3SecretKey)
	str("AWS_S3_BUCKET", &cfg.S3Bucket)
	str("AWS_REGION", &cfg.S3Region)
	str("AWS_ENDPOINT_URL", &cfg.S3BaseEndpoint)
	str("HYDRATR_LOG_LEVEL", &cfg.LogLevel)
	str("HYDRATR_LOG_FILE", &cfg.LogFile)

	if v, ok := lookup("HYDRATR_ACCESS_TOKEN_TTL"); ok && v != "" {
		cfg.AccessTokenValidityDuration = mustDuration("HYDRATR_ACCESS_TOKEN_TTL", v)
	}
	if v, ok := lookup("HYDRATR_REFRESH_TOKEN_TTL"); ok && v != "" {
		cfg.RefreshTokenValidityDuration = mustDuration("HYDRATR_REFRESH_TOKEN_TTL", v)
	}
	if v, ok := lookup("HYDRATR_SECURE_COOKIES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("HYDRATR_SECURE_COOKIES: %w", err))
		}
		cfg.SecureCookies = b
	}
	if v, ok := lookup("HYDRATR_DEFAULT_GOAL"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("HYDRATR_DEFAULT_GOAL: %w", err))
		}
		cfg.DefaultDailyGoal = n
	}
	if v, ok := lookup("HYDRATR_RATE_LIMIT_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(fmt.Errorf("HYDRATR_RATE_LIMIT_RPS: %w", err))
		}
		cfg.RateLimitRPS = f
	}
	if v, ok := lookup("HYDRATR_RATE_LIMIT_BURST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("HYDRATR_RATE_LIMIT_BURST: %w", err))
		}
		cfg.RateLimitBurst = n
	}
}

func mustDuration(key, v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	return d
}
