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
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	CORS         CORSConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	Tracking     TrackingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Checkout.parse(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string        `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string        `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
	LogFormat    string        `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	ShutdownWait time.Duration `envconfig:"STOREFRONT_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ConsoleLogs reports whether logs should use the human readable writer.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(strings.TrimSpace(a.LogFormat), "console")
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"STOREFRONT_DB_HOST"`
	Port     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	User     string `envconfig:"STOREFRONT_DB_USER"`
	Password string `envconfig:"STOREFRONT_DB_PASSWORD"`
	Name     string `envconfig:"STOREFRONT_DB_NAME"`
	SSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"STOREFRONT_SQLITE_PATH" default:"storefront.db"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"STOREFRONT_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" default:"storefront"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"480"`
}

// TTL returns the admin access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 8 * time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOREFRONT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOREFRONT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOREFRONT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOREFRONT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOREFRONT_ARGON_KEY_LEN" default:"32"`
}

type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"STOREFRONT_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	FunctionsWindow time.Duration `envconfig:"STOREFRONT_RATE_LIMIT_FUNCTIONS_WINDOW" default:"1m"`
	FunctionsLimit  int           `envconfig:"STOREFRONT_RATE_LIMIT_FUNCTIONS_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREFRONT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string      `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	MaxAge         time.Duration `envconfig:"STOREFRONT_CORS_MAX_AGE" default:"5m"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"720h"`
}

type CheckoutConfig struct {
	Currency            string        `envconfig:"STOREFRONT_CURRENCY" default:"USD"`
	ShippingFeeRaw      string        `envconfig:"STOREFRONT_CHECKOUT_SHIPPING_FEE" default:"0"`
	FreeShippingOverRaw string        `envconfig:"STOREFRONT_CHECKOUT_FREE_SHIPPING_OVER" default:"0"`
	IdempotencyTTL      time.Duration `envconfig:"STOREFRONT_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`

	ShippingFee      decimal.Decimal `ignored:"true"`
	FreeShippingOver decimal.Decimal `ignored:"true"`
}

func (c *CheckoutConfig) parse() error {
	fee, err := decimal.NewFromString(strings.TrimSpace(c.ShippingFeeRaw))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvShippingFee, err)
	}
	if fee.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvShippingFee)
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.FreeShippingOverRaw))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", EnvFreeShippingOver, err)
	}
	if threshold.IsNegative() {
		return fmt.Errorf("%s must not be negative", EnvFreeShippingOver)
	}
	c.ShippingFee = fee
	c.FreeShippingOver = threshold
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	return nil
}

type TrackingConfig struct {
	PixelID       string        `envconfig:"STOREFRONT_TRACKING_PIXEL_ID"`
	AccessToken   string        `envconfig:"STOREFRONT_TRACKING_ACCESS_TOKEN"`
	Endpoint      string        `envconfig:"STOREFRONT_TRACKING_ENDPOINT" default:"https://graph.facebook.com/v19.0"`
	TestEventCode string        `envconfig:"STOREFRONT_TRACKING_TEST_EVENT_CODE"`
	QueueSize     int           `envconfig:"STOREFRONT_TRACKING_QUEUE_SIZE" default:"256"`
	Workers       int           `envconfig:"STOREFRONT_TRACKING_WORKERS" default:"2"`
	Timeout       time.Duration `envconfig:"STOREFRONT_TRACKING_TIMEOUT" default:"5s"`
}

// Enabled reports whether server-side conversion forwarding has credentials.
func (t TrackingConfig) Enabled() bool {
	return strings.TrimSpace(t.PixelID) != "" && strings.TrimSpace(t.AccessToken) != ""
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
	for _, env := range discreteDBEnvVars {
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
