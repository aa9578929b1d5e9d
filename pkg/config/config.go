package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "shopmesh"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "SHOPMESH_APP_ENV"
	EnvPort         = "SHOPMESH_APP_PORT"
	EnvDBDSN        = "SHOPMESH_DB_DSN"
	EnvDBHost       = "SHOPMESH_DB_HOST"
	EnvDBUser       = "SHOPMESH_DB_USER"
	EnvDBName       = "SHOPMESH_DB_NAME"
	EnvRedisURL     = "SHOPMESH_REDIS_URL"
	EnvGCPProjectID = "SHOPMESH_GCP_PROJECT_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Inventory    InventoryConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SHOPMESH_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOPMESH_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOPMESH_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SHOPMESH_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"SHOPMESH_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHOPMESH_DB_DSN"`
	Driver string `envconfig:"SHOPMESH_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHOPMESH_DB_HOST"`
	LegacyPort     int    `envconfig:"SHOPMESH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHOPMESH_DB_USER"`
	LegacyPassword string `envconfig:"SHOPMESH_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHOPMESH_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHOPMESH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHOPMESH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOPMESH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOPMESH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOPMESH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHOPMESH_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHOPMESH_REDIS_ADDR"`
	Password     string        `envconfig:"SHOPMESH_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOPMESH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOPMESH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOPMESH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOPMESH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOPMESH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOPMESH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// InventoryConfig tunes the stock-reservation engine.
type InventoryConfig struct {
	ReservationTTLMinutes int `envconfig:"SHOPMESH_INVENTORY_RESERVATION_TTL_MINUTES" default:"30"`
	LowStockThreshold     int `envconfig:"SHOPMESH_INVENTORY_LOW_STOCK_THRESHOLD" default:"10"`
}

// ReservationTTL returns the reservation hold duration.
func (i InventoryConfig) ReservationTTL() time.Duration {
	if i.ReservationTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(i.ReservationTTLMinutes) * time.Minute
}

type CronConfig struct {
	SweepInterval     time.Duration `envconfig:"SHOPMESH_CRON_SWEEP_INTERVAL" default:"5m"`
	LowStockScanEvery time.Duration `envconfig:"SHOPMESH_CRON_LOW_STOCK_SCAN_EVERY" default:"24h"`
	LockTTL           time.Duration `envconfig:"SHOPMESH_CRON_LOCK_TTL" default:"15m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOPMESH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOPMESH_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHOPMESH_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SHOPMESH_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHOPMESH_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	InventoryTopic           string `envconfig:"SHOPMESH_PUBSUB_INVENTORY_TOPIC" default:"sm-inventory-events"`
	InventorySubscription    string `envconfig:"SHOPMESH_PUBSUB_INVENTORY_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"SHOPMESH_PUBSUB_NOTIFICATION_TOPIC" default:"sm-notification-events"`
	NotificationSubscription string `envconfig:"SHOPMESH_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SHOPMESH_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SHOPMESH_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SHOPMESH_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
