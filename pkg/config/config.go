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
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Listing      ListingConfig
	Media        MediaConfig
	Offer        OfferConfig
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
	Env          string `envconfig:"QUOTEREG_APP_ENV" required:"true"`
	Port         string `envconfig:"QUOTEREG_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"QUOTEREG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUOTEREG_LOG_WARN_STACK" default:"false"`

	CORSOrigins     []string      `envconfig:"QUOTEREG_CORS_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"QUOTEREG_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"QUOTEREG_DB_DSN"`
	Driver string `envconfig:"QUOTEREG_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUOTEREG_DB_HOST"`
	LegacyPort     int    `envconfig:"QUOTEREG_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUOTEREG_DB_USER"`
	LegacyPassword string `envconfig:"QUOTEREG_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUOTEREG_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUOTEREG_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUOTEREG_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUOTEREG_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUOTEREG_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUOTEREG_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is the embedded sqlite one.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL            string        `envconfig:"QUOTEREG_REDIS_URL"`
	Address        string        `envconfig:"QUOTEREG_REDIS_ADDR"`
	Password       string        `envconfig:"QUOTEREG_REDIS_PASSWORD"`
	DB             int           `envconfig:"QUOTEREG_REDIS_DB" default:"0"`
	PoolSize       int           `envconfig:"QUOTEREG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns   int           `envconfig:"QUOTEREG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout    time.Duration `envconfig:"QUOTEREG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout    time.Duration `envconfig:"QUOTEREG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout   time.Duration `envconfig:"QUOTEREG_REDIS_WRITE_TIMEOUT" default:"5s"`
	SuggestionsTTL time.Duration `envconfig:"QUOTEREG_REDIS_SUGGESTIONS_TTL" default:"10m"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUOTEREG_AUTO_MIGRATE" default:"false"`
}

type ListingConfig struct {
	DefaultPageSize int `envconfig:"QUOTEREG_LISTING_DEFAULT_PAGE_SIZE" default:"25"`
	MaxPageSize     int `envconfig:"QUOTEREG_LISTING_MAX_PAGE_SIZE" default:"500"`
}

type MediaConfig struct {
	Root        string `envconfig:"QUOTEREG_MEDIA_ROOT" default:"media"`
	MaxImportMB int    `envconfig:"QUOTEREG_MAX_IMPORT_MB" default:"20"`
}

type OfferConfig struct {
	CompanyName     string `envconfig:"QUOTEREG_OFFER_COMPANY_NAME" default:"UAB Elameta"`
	CompanyLine1    string `envconfig:"QUOTEREG_OFFER_COMPANY_LINE1"`
	CompanyLine2    string `envconfig:"QUOTEREG_OFFER_COMPANY_LINE2"`
	LogoPath        string `envconfig:"QUOTEREG_OFFER_LOGO_PATH"`
	FontRegularPath string `envconfig:"QUOTEREG_OFFER_FONT_REGULAR"`
	FontBoldPath    string `envconfig:"QUOTEREG_OFFER_FONT_BOLD"`
	DefaultLang     string `envconfig:"QUOTEREG_OFFER_DEFAULT_LANG" default:"lt"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
