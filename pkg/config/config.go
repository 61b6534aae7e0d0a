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
	Storage       StorageConfig
	Catalog       CatalogConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Auth          AuthConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Storage.validate(); err != nil {
		return nil, err
	}
	if cfg.Storage.UsesDB() {
		if err := cfg.DB.EnsureDSN(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"BASKET_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BASKET_DB_DSN"`
	Driver string `envconfig:"BASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"BASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BASKET_DB_USER"`
	LegacyPassword string `envconfig:"BASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"BASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"BASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BASKET_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BASKET_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver targets sqlite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), "sqlite")
}

type RedisConfig struct {
	URL          string        `envconfig:"BASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BASKET_REDIS_ADDR"`
	Password     string        `envconfig:"BASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"BASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// StorageConfig selects where basket state lives.
type StorageConfig struct {
	Backend   string        `envconfig:"BASKET_STORAGE_BACKEND" default:"redis"`
	BasketTTL time.Duration `envconfig:"BASKET_STORAGE_BASKET_TTL" default:"0"`
}

// NormalizedBackend lowercases the backend name and applies the redis default.
func (s StorageConfig) NormalizedBackend() string {
	backend := strings.ToLower(strings.TrimSpace(s.Backend))
	if backend == "" {
		return StorageBackendRedis
	}
	return backend
}

func (s StorageConfig) UsesDB() bool {
	return s.NormalizedBackend() == StorageBackendDB
}

func (s StorageConfig) validate() error {
	switch s.NormalizedBackend() {
	case StorageBackendMemory, StorageBackendRedis, StorageBackendDB:
		return nil
	}
	return fmt.Errorf("%s must be one of memory, redis, db (got %q)", EnvStorageBackend, s.Backend)
}

type CatalogConfig struct {
	Path string `envconfig:"BASKET_CATALOG_PATH"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BASKET_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BASKET_JWT_ISSUER" default:"basket-engine"`
	ExpirationMinutes      int    `envconfig:"BASKET_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"BASKET_REFRESH_TOKEN_TTL_MINUTES" default:"1440"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BASKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BASKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BASKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BASKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BASKET_ARGON_KEY_LEN" default:"32"`
}

// AuthConfig holds the single demo account the storefront accepts.
type AuthConfig struct {
	DemoUsername     string `envconfig:"BASKET_DEMO_USERNAME" default:"user1"`
	DemoPassword     string `envconfig:"BASKET_DEMO_PASSWORD" default:"user1"`
	// DemoPasswordHash is an argon2id hash that replaces DemoPassword when set.
	DemoPasswordHash string `envconfig:"BASKET_DEMO_PASSWORD_HASH"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BASKET_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit int           `envconfig:"BASKET_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BASKET_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BASKET_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"BASKET_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// EnsureDSN fills DSN from the discrete postgres settings when it is unset.
func (db *DBConfig) EnsureDSN() error {
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
