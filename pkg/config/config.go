package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Sendgrid      SendgridConfig
	Donation      DonationConfig
	Approval      ApprovalConfig
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
	Env          string `envconfig:"GIVEBRIDGE_APP_ENV" required:"true"`
	Port         string `envconfig:"GIVEBRIDGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GIVEBRIDGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GIVEBRIDGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GIVEBRIDGE_DB_DSN"`
	Driver string `envconfig:"GIVEBRIDGE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GIVEBRIDGE_DB_HOST"`
	Port     int    `envconfig:"GIVEBRIDGE_DB_PORT" default:"5432"`
	User     string `envconfig:"GIVEBRIDGE_DB_USER"`
	Password string `envconfig:"GIVEBRIDGE_DB_PASSWORD"`
	Name     string `envconfig:"GIVEBRIDGE_DB_NAME"`
	SSLMode  string `envconfig:"GIVEBRIDGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GIVEBRIDGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GIVEBRIDGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GIVEBRIDGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GIVEBRIDGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GIVEBRIDGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GIVEBRIDGE_REDIS_ADDR"`
	Password     string        `envconfig:"GIVEBRIDGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GIVEBRIDGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GIVEBRIDGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GIVEBRIDGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GIVEBRIDGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GIVEBRIDGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GIVEBRIDGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GIVEBRIDGE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GIVEBRIDGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GIVEBRIDGE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GIVEBRIDGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GIVEBRIDGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GIVEBRIDGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GIVEBRIDGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GIVEBRIDGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GIVEBRIDGE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GIVEBRIDGE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey string `envconfig:"GIVEBRIDGE_STRIPE_API_KEY"`
	Secret string `envconfig:"GIVEBRIDGE_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"GIVEBRIDGE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type SendgridConfig struct {
	APIKey      string `envconfig:"GIVEBRIDGE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"GIVEBRIDGE_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"GIVEBRIDGE_SENDGRID_FROM_NAME" default:"GiveBridge"`
}

type DonationConfig struct {
	Currency        string        `envconfig:"GIVEBRIDGE_DONATION_CURRENCY" default:"usd"`
	MinimumAmount   string        `envconfig:"GIVEBRIDGE_DONATION_MINIMUM_AMOUNT" default:"0.50"`
	GatewayTimeout  time.Duration `envconfig:"GIVEBRIDGE_DONATION_GATEWAY_TIMEOUT" default:"10s"`
	WebhookEventTTL time.Duration `envconfig:"GIVEBRIDGE_DONATION_WEBHOOK_EVENT_TTL" default:"720h"`
}

type ApprovalConfig struct {
	SuperadminEmails []string `envconfig:"GIVEBRIDGE_SUPERADMIN_EMAILS"`
}

// IsSuperadmin reports whether the email belongs to a configured superadmin.
func (a ApprovalConfig) IsSuperadmin(email string) bool {
	needle := strings.TrimSpace(strings.ToLower(email))
	for _, candidate := range a.SuperadminEmails {
		if strings.TrimSpace(strings.ToLower(candidate)) == needle && needle != "" {
			return true
		}
	}
	return false
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
