package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
	// transactions need a replica set
	Transactions bool `yaml:"transactions"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	StaticDir    string   `yaml:"static_dir"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	UserID       string `yaml:"user_id"`
	Role         string `yaml:"role"`
}

type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
	Users    []UserConfig  `yaml:"users"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	Certificate Certs          `yaml:"certificate"`
	Store       StoreConfig    `yaml:"store"`
	DB          DatabaseConfig `yaml:"database"`
	Postgres    PostgresConfig `yaml:"postgres"`
	Mongo       MongoConfig    `yaml:"mongo"`
	Auth        AuthConfig     `yaml:"auth"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(buf)
}

func Parse(buf []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 本番ではシークレット類を環境変数で上書きする
func (c *Config) applyEnv() {
	if v := os.Getenv("LIBRARY_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("LIBRARY_JWT_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("LIBRARY_MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("LIBRARY_POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"http://localhost:3000"}
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "library"
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "library-backend"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for driver %q", c.Store.Driver)
		}
	case DriverMySQL:
		if c.DB.Host == "" || c.DB.DBName == "" {
			return fmt.Errorf("database.host and database.dbname are required for driver %q", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Mode == ModeRelease && c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required in release mode")
	}
	return nil
}

// TLSEnabled reports whether both certificate files are configured.
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}

// CertPaths follows the config/tls/<mode>/ layout.
func (c *Config) CertPaths() (certFile, keyFile string) {
	certFile = fmt.Sprintf("config/tls/%s/%s", c.Mode, c.Certificate.Cert)
	keyFile = fmt.Sprintf("config/tls/%s/%s", c.Mode, c.Certificate.Key)
	return certFile, keyFile
}
