package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Service  ServiceConfig
	DB       DBConfig
	Redis    RedisConfig
	Planning PlanningConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Outbox   OutboxConfig
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
	Env          string `envconfig:"MRPWORKS_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"MRPWORKS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MRPWORKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"MRPWORKS_SERVICE_KIND" default:"mrp-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"MRPWORKS_DB_DSN"`
	Driver string `envconfig:"MRPWORKS_DB_DRIVER" default:"postgres"`

	SQLitePath string `envconfig:"MRPWORKS_SQLITE_PATH" default:"mrpworks.db"`

	LegacyHost     string `envconfig:"MRPWORKS_DB_HOST"`
	LegacyPort     int    `envconfig:"MRPWORKS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MRPWORKS_DB_USER"`
	LegacyPassword string `envconfig:"MRPWORKS_DB_PASSWORD"`
	LegacyName     string `envconfig:"MRPWORKS_DB_NAME"`
	LegacySSLMode  string `envconfig:"MRPWORKS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MRPWORKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MRPWORKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MRPWORKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MRPWORKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"MRPWORKS_AUTO_MIGRATE" default:"false"`
}

// UseSQLite reports whether the embedded SQLite driver should be used
// instead of Postgres (local and test environments).
func (db DBConfig) UseSQLite() bool {
	return strings.EqualFold(db.Driver, "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"MRPWORKS_REDIS_URL"`
	Address      string        `envconfig:"MRPWORKS_REDIS_ADDR"`
	Password     string        `envconfig:"MRPWORKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"MRPWORKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MRPWORKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MRPWORKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MRPWORKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MRPWORKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MRPWORKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PlanningConfig carries the default options for a regeneration run.
// The flag, leeway, location and retention fields map 1:1 onto RunOptions
// fields; operators override per run. RunInterval, RunTimeout and
// WorksetTTL have no RunOptions counterpart: they drive the scheduler, the
// run lock TTL and the workset retention job.
type PlanningConfig struct {
	UseMRPDemands          bool          `envconfig:"MRPWORKS_PLAN_USE_MRP_DEMANDS" default:"false"`
	UseReorderLevelDemands bool          `envconfig:"MRPWORKS_PLAN_USE_REORDER_DEMANDS" default:"false"`
	UseEOQ                 bool          `envconfig:"MRPWORKS_PLAN_USE_EOQ" default:"false"`
	UsePanSize             bool          `envconfig:"MRPWORKS_PLAN_USE_PAN_SIZE" default:"false"`
	UseShrinkage           bool          `envconfig:"MRPWORKS_PLAN_USE_SHRINKAGE" default:"false"`
	LeewayDays             int           `envconfig:"MRPWORKS_PLAN_LEEWAY_DAYS" default:"0"`
	Locations              []string      `envconfig:"MRPWORKS_PLAN_LOCATIONS"`
	RetainAudit            bool          `envconfig:"MRPWORKS_PLAN_RETAIN_AUDIT" default:"true"`
	RunInterval            time.Duration `envconfig:"MRPWORKS_PLAN_RUN_INTERVAL" default:"24h"`
	RunTimeout             time.Duration `envconfig:"MRPWORKS_PLAN_RUN_TIMEOUT" default:"1h"`
	WorksetTTL             time.Duration `envconfig:"MRPWORKS_PLAN_WORKSET_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"MRPWORKS_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"MRPWORKS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"MRPWORKS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	PlanningTopic        string `envconfig:"MRPWORKS_PUBSUB_PLANNING_TOPIC" default:"mrp-planning-events"`
	PlanningSubscription string `envconfig:"MRPWORKS_PUBSUB_PLANNING_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"MRPWORKS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"MRPWORKS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"MRPWORKS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"MRPWORKS_OUTBOX_RETENTION_DAYS" default:"14"`
}

func (db *DBConfig) ensureDSN() error {
	if db.UseSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
