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
	Locks        LockConfig
	Policy       PolicyConfig
	Rollup       RollupConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Policy.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DEVICEMOVE_APP_ENV" required:"true"`
	Port         string `envconfig:"DEVICEMOVE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DEVICEMOVE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DEVICEMOVE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DEVICEMOVE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DEVICEMOVE_DB_DSN"`
	Driver string `envconfig:"DEVICEMOVE_DB_DRIVER" default:"sqlite"`

	LegacyHost     string `envconfig:"DEVICEMOVE_DB_HOST"`
	LegacyPort     int    `envconfig:"DEVICEMOVE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DEVICEMOVE_DB_USER"`
	LegacyPassword string `envconfig:"DEVICEMOVE_DB_PASSWORD"`
	LegacyName     string `envconfig:"DEVICEMOVE_DB_NAME"`
	LegacySSLMode  string `envconfig:"DEVICEMOVE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DEVICEMOVE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DEVICEMOVE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DEVICEMOVE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DEVICEMOVE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the embedded SQLite driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

// RedisConfig is optional: with neither URL nor address set the services fall
// back to in-process locks and skip the idempotency cache.
type RedisConfig struct {
	URL          string        `envconfig:"DEVICEMOVE_REDIS_URL"`
	Address      string        `envconfig:"DEVICEMOVE_REDIS_ADDR"`
	Password     string        `envconfig:"DEVICEMOVE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DEVICEMOVE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DEVICEMOVE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DEVICEMOVE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DEVICEMOVE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DEVICEMOVE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DEVICEMOVE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type LockConfig struct {
	TTL           time.Duration `envconfig:"DEVICEMOVE_LOCK_TTL" default:"30s"`
	RetryInterval time.Duration `envconfig:"DEVICEMOVE_LOCK_RETRY_INTERVAL" default:"50ms"`
	WaitTimeout   time.Duration `envconfig:"DEVICEMOVE_LOCK_WAIT_TIMEOUT" default:"5s"`
}

// PolicyConfig carries the business knobs of the migration workflow.
type PolicyConfig struct {
	Services       []string `envconfig:"DEVICEMOVE_POLICY_SERVICES" default:"whatsapp,google_maps,venmo"`
	PaymentService string   `envconfig:"DEVICEMOVE_POLICY_PAYMENT_SERVICE" default:"venmo"`
	MinorMinAge    int      `envconfig:"DEVICEMOVE_POLICY_MINOR_MIN_AGE" default:"13"`
	MinorMaxAge    int      `envconfig:"DEVICEMOVE_POLICY_MINOR_MAX_AGE" default:"17"`
	VisibleDay     int      `envconfig:"DEVICEMOVE_POLICY_VISIBLE_DAY" default:"4"`
	CompletionDay  int      `envconfig:"DEVICEMOVE_POLICY_COMPLETION_DAY" default:"7"`
}

// DefaultPolicy mirrors the envconfig defaults for callers that build
// services without loading the environment (tools, tests).
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		Services:       []string{"whatsapp", "google_maps", "venmo"},
		PaymentService: "venmo",
		MinorMinAge:    13,
		MinorMaxAge:    17,
		VisibleDay:     4,
		CompletionDay:  7,
	}
}

// NormalizedServices returns the configured services lower-cased, trimmed and
// de-duplicated, preserving order.
func (p PolicyConfig) NormalizedServices() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(p.Services))
	for _, raw := range p.Services {
		svc := strings.ToLower(strings.TrimSpace(raw))
		if svc == "" {
			continue
		}
		if _, ok := seen[svc]; ok {
			continue
		}
		seen[svc] = struct{}{}
		out = append(out, svc)
	}
	return out
}

func (p PolicyConfig) validate() error {
	if len(p.NormalizedServices()) == 0 {
		return fmt.Errorf("%s must list at least one service", EnvPolicyServices)
	}
	if p.MinorMinAge < 0 || p.MinorMaxAge < p.MinorMinAge {
		return fmt.Errorf("invalid minor age band %d-%d", p.MinorMinAge, p.MinorMaxAge)
	}
	if p.VisibleDay < 1 || p.CompletionDay > 7 || p.VisibleDay > p.CompletionDay {
		return fmt.Errorf("invalid milestone days visible=%d completion=%d", p.VisibleDay, p.CompletionDay)
	}
	return nil
}

type RollupConfig struct {
	Interval time.Duration `envconfig:"DEVICEMOVE_ROLLUP_INTERVAL" default:"1h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DEVICEMOVE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	if db.IsSQLite() {
		db.DSN = DefaultSQLiteDSN
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
