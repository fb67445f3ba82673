package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var (
	ErrMissingTokenSecret = errors.New("access and refresh token secrets are required")
	ErrSharedTokenSecret  = errors.New("access and refresh token secrets must differ")
	ErrInvalidTokenExpiry = errors.New("token expiry must be positive")
)

type DatabaseConfig struct {
	PostgresHost     string `env:"POSTGRES_HOST" env-default:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" env-default:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.PostgresHost +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" port=" + c.PostgresPort +
		" sslmode=disable TimeZone=UTC"
}

type ServerConfig struct {
	Env            string        `env:"ENV" env-default:"development"`
	Port           string        `env:"SERVER_PORT" env-default:"8000"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	CorsOrigin     string        `env:"CORS_ORIGIN" env-default:"*"`
	CookieSecure   bool          `env:"COOKIE_SECURE" env-default:"true"`
	RateLimit      float64       `env:"RATE_LIMIT_PER_SECOND" env-default:"5"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES" env-default:"25600"`

	// BehindProxy trusts X-Real-IP and X-Forwarded-For for rate limiting.
	BehindProxy     bool `env:"BEHIND_PROXY" env-default:"false"`
	// StrictPasswords turns on the composition rules for new passwords.
	StrictPasswords bool `env:"STRICT_PASSWORD_POLICY" env-default:"false"`
}

type AdminConfig struct {
	Username string `env:"ADMIN_USERNAME" env-default:"admin"`
	Password string `env:"ADMIN_PASSWORD"`
}

type TokenConfig struct {
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiry  time.Duration `env:"ACCESS_TOKEN_EXPIRY" env-default:"15m"`
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiry time.Duration `env:"REFRESH_TOKEN_EXPIRY" env-default:"240h"`
	// RevokeOnPasswordChange clears the stored refresh token after a successful password change.
	RevokeOnPasswordChange bool `env:"REVOKE_SESSIONS_ON_PASSWORD_CHANGE" env-default:"false"`
}

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Admin    AdminConfig
	Token    TokenConfig
}

// LoadConfig reads the optional dotenv file into the process environment and
// decodes the environment into a Config.
func LoadConfig(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", dotenvPath, err)
			}
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Token.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (t *TokenConfig) validate() error {
	if t.AccessTokenSecret == "" || t.RefreshTokenSecret == "" {
		return ErrMissingTokenSecret
	}
	if t.AccessTokenSecret == t.RefreshTokenSecret {
		return ErrSharedTokenSecret
	}
	if t.AccessTokenExpiry <= 0 || t.RefreshTokenExpiry <= 0 {
		return ErrInvalidTokenExpiry
	}
	return nil
}
