// Package config centralizes environment-derived configuration so main
// stays lean and every tunable has one documented home.
package config

import (
	"os"
	"strconv"
	"time"
)

// RedisConfig configures the optional Redis cache/revocation-list client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RiskWeights are the §4.7 fusion weights, normalized on load if overridden.
type RiskWeights struct {
	Behavior       float64
	Classification float64
	Integrity      float64
}

// Server captures process-wide configuration.
type Server struct {
	Addr string

	JWTSigningKey          string
	AccessTokenExpiry      time.Duration
	RefreshTokenExpiry     time.Duration

	DatabaseURL string
	Redis       RedisConfig
	KafkaBrokers []string

	QueueCapacity           int
	QueueNearCapacityPercent float64
	WorkerCount             int

	RiskWeights           RiskWeights
	AnomalyContamination  float64

	RegulatedMode bool
	LogLevel      string
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true"
	}
	return def
}

// FromEnv builds a Server config from environment variables, applying the
// defaults named in the external interfaces spec.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	weights := RiskWeights{
		Behavior:       envFloat("RISK_BEHAVIOR_WEIGHT", 0.4),
		Classification: envFloat("RISK_CLASSIFICATION_WEIGHT", 0.3),
		Integrity:      envFloat("RISK_INTEGRITY_WEIGHT", 0.3),
	}

	return Server{
		Addr: envString("ADDR", ":8080"),

		JWTSigningKey:      jwtSigningKey,
		AccessTokenExpiry:  time.Duration(envInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		RefreshTokenExpiry: time.Duration(envInt("REFRESH_TOKEN_EXPIRE_DAYS", 7)) * 24 * time.Hour,

		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		KafkaBrokers: splitNonEmpty(os.Getenv("KAFKA_BROKERS")),

		QueueCapacity:            envInt("QUEUE_CAPACITY", 1000),
		QueueNearCapacityPercent: envFloat("QUEUE_NEAR_CAPACITY_PERCENT", 0.9),
		WorkerCount:              envInt("WORKER_COUNT", 1),

		RiskWeights:          weights,
		AnomalyContamination: envFloat("ANOMALY_CONTAMINATION", 0.1),

		RegulatedMode: envBool("REGULATED_MODE", false),
		LogLevel:      envString("LOG_LEVEL", "info"),
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
