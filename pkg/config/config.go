package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Ledger       LedgerConfig
	Restock      RestockConfig
	Locks        LocksConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.DistributedLocks && cfg.Redis.URL == "" && cfg.Redis.Address == "" {
		return nil, fmt.Errorf("%s or %s is required when distributed locks are enabled", EnvRedisURL, EnvRedisAddr)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PAPERLEDGER_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"PAPERLEDGER_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"PAPERLEDGER_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"PAPERLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PAPERLEDGER_SERVICE_KIND" default:"cron-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"PAPERLEDGER_DB_DSN"`
	Driver string `envconfig:"PAPERLEDGER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PAPERLEDGER_DB_HOST"`
	LegacyPort     int    `envconfig:"PAPERLEDGER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PAPERLEDGER_DB_USER"`
	LegacyPassword string `envconfig:"PAPERLEDGER_DB_PASSWORD"`
	LegacyName     string `envconfig:"PAPERLEDGER_DB_NAME"`
	LegacySSLMode  string `envconfig:"PAPERLEDGER_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"PAPERLEDGER_SQLITE_PATH" default:"paperledger.db"`

	MaxOpenConns    int           `envconfig:"PAPERLEDGER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PAPERLEDGER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PAPERLEDGER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PAPERLEDGER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PAPERLEDGER_REDIS_URL"`
	Address      string        `envconfig:"PAPERLEDGER_REDIS_ADDR"`
	Password     string        `envconfig:"PAPERLEDGER_REDIS_PASSWORD"`
	DB           int           `envconfig:"PAPERLEDGER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PAPERLEDGER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PAPERLEDGER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PAPERLEDGER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PAPERLEDGER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PAPERLEDGER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite        bool `envconfig:"PAPERLEDGER_USE_SQLITE" default:"false"`
	AutoMigrate      bool `envconfig:"PAPERLEDGER_AUTO_MIGRATE" default:"false"`
	DistributedLocks bool `envconfig:"PAPERLEDGER_DISTRIBUTED_LOCKS" default:"false"`
}

// LedgerConfig bounds how many distinct items a workflow touches at once.
type LedgerConfig struct {
	MaxParallelism int `envconfig:"PAPERLEDGER_LEDGER_MAX_PARALLELISM" default:"8"`
}

type RestockConfig struct {
	Enabled          bool          `envconfig:"PAPERLEDGER_RESTOCK_ENABLED" default:"true"`
	Interval         time.Duration `envconfig:"PAPERLEDGER_RESTOCK_INTERVAL" default:"1h"`
	BufferMultiplier float64       `envconfig:"PAPERLEDGER_RESTOCK_BUFFER_MULTIPLIER" default:"1.5"`
}

type LocksConfig struct {
	TTL           time.Duration `envconfig:"PAPERLEDGER_LOCK_TTL" default:"30s"`
	RetryInterval time.Duration `envconfig:"PAPERLEDGER_LOCK_RETRY_INTERVAL" default:"50ms"`
	WaitTimeout   time.Duration `envconfig:"PAPERLEDGER_LOCK_WAIT_TIMEOUT" default:"10s"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
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
