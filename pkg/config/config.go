package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	HTTP          HTTPConfig
	FeatureFlags  FeatureFlagsConfig
	Workflow      WorkflowConfig
	Notifications NotificationsConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Workflow.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROCUREFLOW_APP_ENV" required:"true"`
	Port         string `envconfig:"PROCUREFLOW_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROCUREFLOW_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROCUREFLOW_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"PROCUREFLOW_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, "development")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"PROCUREFLOW_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PROCUREFLOW_DB_DSN"`
	Driver string `envconfig:"PROCUREFLOW_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROCUREFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"PROCUREFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROCUREFLOW_DB_USER"`
	LegacyPassword string `envconfig:"PROCUREFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROCUREFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROCUREFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROCUREFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROCUREFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROCUREFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROCUREFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"PROCUREFLOW_DB_SLOW_QUERY" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PROCUREFLOW_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROCUREFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"PROCUREFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROCUREFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROCUREFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROCUREFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROCUREFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROCUREFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROCUREFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PROCUREFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PROCUREFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PROCUREFLOW_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PROCUREFLOW_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PROCUREFLOW_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PROCUREFLOW_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PROCUREFLOW_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PROCUREFLOW_ARGON_KEY_LEN" default:"32"`
}

type HTTPConfig struct {
	AllowedOrigins []string      `envconfig:"PROCUREFLOW_HTTP_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ReadTimeout    time.Duration `envconfig:"PROCUREFLOW_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout   time.Duration `envconfig:"PROCUREFLOW_HTTP_WRITE_TIMEOUT" default:"15s"`
	IdempotencyTTL time.Duration `envconfig:"PROCUREFLOW_HTTP_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PROCUREFLOW_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PROCUREFLOW_AUTO_MIGRATE" default:"false"`
}

type WorkflowConfig struct {
	// HighValueThreshold is the estimated cost above which an executive
	// approval is routed to the chairman.
	HighValueThreshold decimal.Decimal `envconfig:"PROCUREFLOW_WORKFLOW_HIGH_VALUE_THRESHOLD" default:"1000000"`
	GRNAutoForward     bool            `envconfig:"PROCUREFLOW_WORKFLOW_GRN_AUTO_FORWARD" default:"true"`
}

func (w WorkflowConfig) validate() error {
	if w.HighValueThreshold.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvHighValueThreshold)
	}
	return nil
}

type NotificationsConfig struct {
	IdempotencyTTL time.Duration `envconfig:"PROCUREFLOW_NOTIFICATIONS_IDEMPOTENCY_TTL" default:"168h"`
	RetentionDays  int           `envconfig:"PROCUREFLOW_NOTIFICATIONS_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"PROCUREFLOW_CRON_INTERVAL" default:"24h"`
	LockTTL          time.Duration `envconfig:"PROCUREFLOW_CRON_LOCK_TTL" default:"30m"`
	ReminderAfter    time.Duration `envconfig:"PROCUREFLOW_CRON_REVIEW_REMINDER_AFTER" default:"48h"`
	ReminderEvery    time.Duration `envconfig:"PROCUREFLOW_CRON_REVIEW_REMINDER_EVERY" default:"24h"`
	ReminderMaxBatch int           `envconfig:"PROCUREFLOW_CRON_REVIEW_REMINDER_MAX_BATCH" default:"200"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DriverSQLite) {
		db.DSN = defaultSQLiteDSN
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
