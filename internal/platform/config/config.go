package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Ledger store backends selectable via LEDGER_STORE.
const (
	LedgerStoreMemory   = "memory"
	LedgerStorePostgres = "postgres"
	LedgerStoreLevelDB  = "leveldb"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	AdminAPIToken  string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	TokenTTL       time.Duration
	TrustedProxies string
	SeedFile       string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Audit    AuditConfig
	Ledger   LedgerConfig
	Rules    RulesConfig
}

// DatabaseConfig is empty-URL tolerant: no URL means in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers         string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// AuditConfig drives the outbox worker. The worker only runs when both a
// database and Kafka brokers are configured.
type AuditConfig struct {
	Topic        string
	BatchSize    int
	PollInterval time.Duration
}

type LedgerConfig struct {
	Store       string
	LevelDBPath string
}

type RulesConfig struct {
	CacheTTL time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Server{
		Addr:           getString("VAXLEDGER_ADDR", ":8080"),
		Environment:    getString("ENVIRONMENT", "development"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		AdminAPIToken:  os.Getenv("ADMIN_API_TOKEN"),
		JWTSigningKey:  getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:      getString("JWT_ISSUER", "vaxledger"),
		JWTAudience:    getString("JWT_AUDIENCE", "vaxledger-api"),
		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),
		SeedFile:       os.Getenv("SEED_FILE"),
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Brokers: os.Getenv("KAFKA_BROKERS"),
			Acks:    getString("KAFKA_ACKS", "all"),
		},
		Audit: AuditConfig{
			Topic: getString("AUDIT_TOPIC", "vaxledger.audit"),
		},
		Ledger: LedgerConfig{
			Store:       getString("LEDGER_STORE", ""),
			LevelDBPath: getString("LEDGER_LEVELDB_PATH", "data/ledger"),
		},
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.Database.MaxOpenConns, err = getInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return Server{}, err
	}
	if cfg.Database.MaxIdleConns, err = getInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return Server{}, err
	}
	if cfg.Database.ConnMaxLifetime, err = getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return Server{}, err
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	cfg.Redis.DialTimeout = 5 * time.Second
	cfg.Redis.ReadTimeout = 3 * time.Second
	cfg.Redis.WriteTimeout = 3 * time.Second
	if cfg.Kafka.Retries, err = getInt("KAFKA_RETRIES", 3); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.DeliveryTimeout, err = getDuration("KAFKA_DELIVERY_TIMEOUT", 30*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Audit.BatchSize, err = getInt("AUDIT_OUTBOX_BATCH_SIZE", 100); err != nil {
		return Server{}, err
	}
	if cfg.Audit.PollInterval, err = getDuration("AUDIT_OUTBOX_POLL_INTERVAL", 100*time.Millisecond); err != nil {
		return Server{}, err
	}
	if cfg.Rules.CacheTTL, err = getDuration("RULE_CACHE_TTL", 5*time.Minute); err != nil {
		return Server{}, err
	}

	if cfg.Ledger.Store == "" {
		cfg.Ledger.Store = LedgerStoreMemory
		if cfg.Database.URL != "" {
			cfg.Ledger.Store = LedgerStorePostgres
		}
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Ledger.Store {
	case LedgerStoreMemory, LedgerStoreLevelDB:
	case LedgerStorePostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("LEDGER_STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown LEDGER_STORE %q", c.Ledger.Store)
	}
	if c.Environment == "production" && c.AdminAPIToken == "" {
		return fmt.Errorf("ADMIN_API_TOKEN must be set in production")
	}
	return nil
}

// AuditWorkerEnabled reports whether outbox events can be shipped to Kafka.
func (c Server) AuditWorkerEnabled() bool {
	return c.Database.URL != "" && strings.TrimSpace(c.Kafka.Brokers) != ""
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
