package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment so main
// stays lean. Zero values mean "feature not configured" for the optional
// collaborators (Redis, Kafka, PayPal, Resend, Supabase).
type Config struct {
	Addr string

	// PostgresDSN is empty in dev, which selects the in-memory stores.
	PostgresDSN string

	Redis RedisConfig

	// JWTSigningKey verifies Supabase-style HS256 access tokens.
	JWTSigningKey string

	// SeedSalt feeds the deterministic prediction seed. Changing it changes
	// every user's prediction; treat it as a stable deployment constant.
	SeedSalt string

	AdminToken string
	SyncToken  string

	PayPal   PayPalConfig
	Resend   ResendConfig
	Supabase SupabaseConfig

	KafkaBrokers []string

	// VaultStorageDir backs vault payloads on local disk when Supabase
	// storage is not configured.
	VaultStorageDir string

	// VaultInactivityWindow is how long without user activity before
	// inactivity-triggered vault items become due.
	VaultInactivityWindow time.Duration
	// VaultSweepInterval is how often the delivery worker scans for due items.
	VaultSweepInterval time.Duration

	// UserSyncInterval is how often the Supabase mirror job runs. Zero
	// disables the job.
	UserSyncInterval time.Duration

	// PredictionCacheTTL bounds how long cached prediction lookups are
	// served from Redis.
	PredictionCacheTTL time.Duration
	// SubscriptionCacheTTL bounds how long cached subscription status is
	// served from Redis. Shorter than the prediction TTL so entitlement
	// changes propagate quickly.
	SubscriptionCacheTTL time.Duration
}

// RedisConfig holds Redis connection tuning.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PayPalConfig identifies our webhook at PayPal's verification endpoint.
type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
}

// ResendConfig configures the transactional mail sender.
type ResendConfig struct {
	BaseURL string
	APIKey  string
	From    string
}

// SupabaseConfig points the user-sync job at the Supabase admin API.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// FromEnv builds a Config from environment variables with dev-friendly
// defaults.
func FromEnv() Config {
	cfg := Config{
		Addr:        envOr("MOREMINUTES_ADDR", ":8080"),
		PostgresDSN: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		SeedSalt:      envOr("PREDICTION_SEED_SALT", "moreminutes_secret_2024"),
		AdminToken:    os.Getenv("ADMIN_API_TOKEN"),
		SyncToken:     os.Getenv("CRON_SYNC_TOKEN"),
		PayPal: PayPalConfig{
			BaseURL:      envOr("PAYPAL_BASE_URL", "https://api-m.paypal.com"),
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		},
		Resend: ResendConfig{
			BaseURL: envOr("RESEND_BASE_URL", "https://api.resend.com"),
			APIKey:  os.Getenv("RESEND_API_KEY"),
			From:    envOr("MAIL_FROM", "More Minutes <noreply@mail.moreminutes.life>"),
		},
		Supabase: SupabaseConfig{
			URL:            os.Getenv("SUPABASE_URL"),
			ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		},
		VaultStorageDir:       envOr("VAULT_STORAGE_DIR", "vault-data"),
		VaultInactivityWindow: envDuration("VAULT_INACTIVITY_WINDOW", 90*24*time.Hour),
		VaultSweepInterval:    envDuration("VAULT_SWEEP_INTERVAL", time.Hour),
		UserSyncInterval:      envDuration("USER_SYNC_INTERVAL", 0),
		PredictionCacheTTL:    envDuration("PREDICTION_CACHE_TTL", 24*time.Hour),
		SubscriptionCacheTTL:  envDuration("SUBSCRIPTION_CACHE_TTL", 5*time.Minute),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if cfg.JWTSigningKey == "" {
		// Dev default; must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
