package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App string `yaml:"app"`

	HTTP struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"http"`

	Database struct {
		Driver string `yaml:"driver"` // memory | postgres | sqlite
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Backup struct {
		Dir       string `yaml:"dir"`
		Keep      int    `yaml:"keep"`
		GCSBucket string `yaml:"gcs_bucket"`
	} `yaml:"backup"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
		JWTIssuer string `yaml:"jwt_issuer"`
	} `yaml:"auth"`
}

func Default() Config {
	var c Config
	c.App = "case-tracker"
	c.HTTP.Addr = ":8080"
	c.HTTP.ReadTimeout = 5 * time.Second
	c.HTTP.WriteTimeout = 10 * time.Second
	c.Database.Driver = DriverMemory
	c.Backup.Dir = "Backups"
	c.Backup.Keep = 10
	c.Log.Level = "info"
	c.Log.Format = "text"
	return c
}

// Load arma la config en capas: defaults -> YAML (CONFIG_FILE, opcional) -> env.
// .env se carga primero y no pisa variables ya exportadas.
func Load() (Config, error) {
	_ = godotenv.Load()

	c := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadYAML(path, &c); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&c)

	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func loadYAML(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config unmarshal: %w", err)
	}
	return nil
}

func applyEnv(c *Config) {
	setString(&c.App, "APP_NAME")
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		c.HTTP.Addr = ":" + v
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	// Compat: DB_DSN sin driver explícito => postgres (como antes).
	if os.Getenv("DB_DRIVER") == "" && os.Getenv("DB_DSN") != "" && c.Database.Driver == DriverMemory {
		c.Database.Driver = DriverPostgres
	}
	setString(&c.Backup.Dir, "BACKUP_DIR")
	setString(&c.Backup.GCSBucket, "BACKUP_GCS_BUCKET")
	if v := strings.TrimSpace(os.Getenv("BACKUP_KEEP")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Backup.Keep = n
		}
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWTIssuer, "JWT_ISSUER")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("config: database.dsn required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Backup.Keep < 1 {
		return fmt.Errorf("config: backup.keep must be >= 1")
	}
	return nil
}
