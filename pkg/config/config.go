package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "VEYRON"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "VEYRON_APP_ENV"
	EnvPort      = "VEYRON_APP_PORT"
	EnvDBDSN     = "VEYRON_DB_DSN"
	EnvDBHost    = "VEYRON_DB_HOST"
	EnvDBUser    = "VEYRON_DB_USER"
	EnvDBName    = "VEYRON_DB_NAME"
	EnvRedisURL  = "VEYRON_REDIS_URL"
	EnvJWTSecret = "VEYRON_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	WhatsApp     WhatsAppConfig
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
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env              string   `envconfig:"VEYRON_APP_ENV" required:"true"`
	Port             string   `envconfig:"VEYRON_APP_PORT" required:"true"`
	LogLevel         string   `envconfig:"VEYRON_LOG_LEVEL" default:"info"`
	LogWarnStack     bool     `envconfig:"VEYRON_LOG_WARN_STACK" default:"false"`
	ExtraCORSOrigins []string `envconfig:"VEYRON_EXTRA_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VEYRON_DB_DSN"`
	Driver string `envconfig:"VEYRON_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VEYRON_DB_HOST"`
	LegacyPort     int    `envconfig:"VEYRON_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VEYRON_DB_USER"`
	LegacyPassword string `envconfig:"VEYRON_DB_PASSWORD"`
	LegacyName     string `envconfig:"VEYRON_DB_NAME"`
	LegacySSLMode  string `envconfig:"VEYRON_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VEYRON_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VEYRON_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VEYRON_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VEYRON_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VEYRON_REDIS_URL"`
	Address      string        `envconfig:"VEYRON_REDIS_ADDR"`
	Password     string        `envconfig:"VEYRON_REDIS_PASSWORD"`
	DB           int           `envconfig:"VEYRON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VEYRON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VEYRON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VEYRON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VEYRON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VEYRON_REDIS_WRITE_TIMEOUT" default:"5s"`
	CouponTTL    time.Duration `envconfig:"VEYRON_REDIS_COUPON_TTL" default:"30s"`
}

type JWTConfig struct {
	Secret string `envconfig:"VEYRON_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"VEYRON_JWT_ISSUER" default:"veyron-storefront"`
}

// CheckoutConfig carries the storefront pricing knobs. The shipping rate is a
// fraction of the discounted item price (0.01 = 1%).
type CheckoutConfig struct {
	ShippingRate string `envconfig:"VEYRON_SHIPPING_RATE" default:"0.01"`
}

func (c CheckoutConfig) validate() error {
	if _, err := c.Rate(); err != nil {
		return err
	}
	return nil
}

// Rate parses the shipping rate. Values outside [0, 1) are rejected.
func (c CheckoutConfig) Rate() (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(c.ShippingRate)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%s must not be empty", "VEYRON_SHIPPING_RATE")
	}
	rate, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal fraction: %w", "VEYRON_SHIPPING_RATE", err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("%s must be in [0, 1)", "VEYRON_SHIPPING_RATE")
	}
	return rate, nil
}

type WhatsAppConfig struct {
	BusinessPhone string `envconfig:"VEYRON_WHATSAPP_PHONE" default:"201147124165"`
	StoreName     string `envconfig:"VEYRON_WHATSAPP_STORE_NAME" default:"Veyron"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VEYRON_AUTO_MIGRATE" default:"false"`
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
