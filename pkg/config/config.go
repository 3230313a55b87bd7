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
	Cart          CartConfig
	Checkout      CheckoutConfig
	Receipt       ReceiptConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MALLBILLING_APP_ENV" required:"true"`
	Port         string `envconfig:"MALLBILLING_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MALLBILLING_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MALLBILLING_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"MALLBILLING_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"MALLBILLING_DB_DSN"`
	Driver string `envconfig:"MALLBILLING_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MALLBILLING_DB_HOST"`
	LegacyPort     int    `envconfig:"MALLBILLING_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MALLBILLING_DB_USER"`
	LegacyPassword string `envconfig:"MALLBILLING_DB_PASSWORD"`
	LegacyName     string `envconfig:"MALLBILLING_DB_NAME"`
	LegacySSLMode  string `envconfig:"MALLBILLING_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"MALLBILLING_SQLITE_PATH" default:"mallbilling.db"`

	MaxOpenConns    int           `envconfig:"MALLBILLING_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MALLBILLING_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MALLBILLING_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MALLBILLING_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"MALLBILLING_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MALLBILLING_REDIS_ADDR"`
	Password     string        `envconfig:"MALLBILLING_REDIS_PASSWORD"`
	DB           int           `envconfig:"MALLBILLING_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MALLBILLING_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MALLBILLING_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MALLBILLING_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MALLBILLING_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MALLBILLING_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"MALLBILLING_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MALLBILLING_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"MALLBILLING_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"MALLBILLING_REFRESH_TOKEN_TTL_MINUTES" default:"720"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MALLBILLING_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MALLBILLING_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MALLBILLING_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MALLBILLING_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MALLBILLING_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"MALLBILLING_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite          bool `envconfig:"MALLBILLING_USE_SQLITE" default:"false"`
	AutoMigrate        bool `envconfig:"MALLBILLING_AUTO_MIGRATE" default:"false"`
	OpenRegister       bool `envconfig:"MALLBILLING_OPEN_REGISTER" default:"true"`
	IdempotentCheckout bool `envconfig:"MALLBILLING_IDEMPOTENT_CHECKOUT" default:"true"`
}

type CartConfig struct {
	TTL time.Duration `envconfig:"MALLBILLING_CART_TTL" default:"12h"`
}

type CheckoutConfig struct {
	IdempotencyTTL time.Duration `envconfig:"MALLBILLING_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type ReceiptConfig struct {
	StoreName      string `envconfig:"MALLBILLING_RECEIPT_STORE_NAME" default:"Mall Billing"`
	CurrencySymbol string `envconfig:"MALLBILLING_RECEIPT_CURRENCY" default:"Rs."`
	Footer         string `envconfig:"MALLBILLING_RECEIPT_FOOTER" default:"Thank you for shopping with us!"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
	}
	if db.IsSQLite() {
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
