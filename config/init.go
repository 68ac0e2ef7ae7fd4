package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at process start and treated as immutable afterwards.
// Handlers and middleware receive it by reference, never via package globals.
type Config struct {
	Server struct {
		Address   string `mapstructure:"address"`    // 0.0.0.0
		HTTPPort  string `mapstructure:"http_port"`  // 8080
		Env       string `mapstructure:"env"`        // development|production
		PublicURL string `mapstructure:"public_url"` // external base URL for emails/checkout redirects
	} `mapstructure:"server"`

	Database struct {
		Driver string `mapstructure:"driver"` // "postgres" | "mysql"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Logging struct {
		Level  string `mapstructure:"level"`  // trace|debug|info|warning|error|fatal
		Format string `mapstructure:"format"` // text|json
		File   string `mapstructure:"file"`   // path/prefix for log file, empty means stdout only
	} `mapstructure:"logs"`

	JWT struct {
		Secret       string        `mapstructure:"secret"`
		ExpiresIn    time.Duration `mapstructure:"expires_in"`        // access token lifetime
		CookieMaxAge time.Duration `mapstructure:"cookie_expires_in"` // jwt cookie lifetime
	} `mapstructure:"jwt"`

	Auth struct {
		MaxLoginAttempts int           `mapstructure:"max_login_attempts"`
		ResetTokenTTL    time.Duration `mapstructure:"reset_token_ttl"`
	} `mapstructure:"auth"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`

	Stripe struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"stripe"`

	Uploads struct {
		Dir string `mapstructure:"dir"` // root for resized user/tour images
	} `mapstructure:"uploads"`

	RateLimit struct {
		PerMinute int `mapstructure:"per_minute"` // API requests per client IP
	} `mapstructure:"ratelimit"`
}

// Load reads the config from env/file with defaults.
func Load() (*Config, error) {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.address", "0.0.0.0")
	viper.SetDefault("server.http_port", "8080")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.public_url", "http://localhost:8080")

	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("database.dsn", "")

	viper.SetDefault("logs.level", "info")
	viper.SetDefault("logs.format", "text")
	viper.SetDefault("logs.file", "")

	viper.SetDefault("jwt.secret", "CHANGE_ME")
	viper.SetDefault("jwt.expires_in", "24h")
	viper.SetDefault("jwt.cookie_expires_in", "24h")

	viper.SetDefault("auth.max_login_attempts", 10)
	viper.SetDefault("auth.reset_token_ttl", "10m")

	viper.SetDefault("smtp.host", "")
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("smtp.from", "Wayfarer <hello@wayfarer.local>")

	viper.SetDefault("stripe.secret_key", "")

	viper.SetDefault("uploads.dir", "public/img")

	viper.SetDefault("ratelimit.per_minute", 100)

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			viper.AddConfigPath(filepath.Join(xdg, "wayfarer"))
		}
		viper.AddConfigPath("/etc/wayfarer")
	}

	// config file is optional
	if err := viper.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func validate(c *Config) error {
	if strings.TrimSpace(c.JWT.Secret) == "" || c.JWT.Secret == "CHANGE_ME" {
		return errors.New("jwt.secret must be set (not empty and not CHANGE_ME)")
	}
	if c.JWT.ExpiresIn <= 0 {
		return errors.New("jwt.expires_in must be positive")
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		return errors.New("server.address must not be empty")
	}
	if strings.TrimSpace(c.Server.HTTPPort) == "" {
		return errors.New("server.http_port must not be empty")
	}
	if c.Auth.MaxLoginAttempts < 1 {
		return errors.New("auth.max_login_attempts must be at least 1")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn must be set")
	}
	return nil
}

// IsProduction reports whether the process runs with production settings
// (controls the Secure flag on auth cookies).
func (c *Config) IsProduction() bool { return c.Server.Env == "production" }
