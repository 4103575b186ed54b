package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/skarbek/skarbek-api/internal/pkg/password"
)

var (
	errMissingSigningKey = errors.New("api.jwt_signing_key is required")
	errUnknownDBDriver   = errors.New("database.driver must be postgres or sqlite")
	errUnknownMailDriver = errors.New("mail.driver must be gmail or log")
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Log      *LogConfig      `mapstructure:"log"`
	Database *DatabaseConfig `mapstructure:"database"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Admin    *AdminConfig    `mapstructure:"admin"`
	Mail     *MailConfig     `mapstructure:"mail"`
	Password *PasswordConfig `mapstructure:"password"`

	v *viper.Viper
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	AdminTokenTTL      time.Duration `mapstructure:"admin_token_ttl"`
	ParentTokenTTL     time.Duration `mapstructure:"parent_token_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// AdminConfig holds the credentials of the admin seeded at startup.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type MailConfig struct {
	Driver         string `mapstructure:"driver"`
	ClientID       string `mapstructure:"client_id"`
	ClientSecret   string `mapstructure:"client_secret"`
	RefreshToken   string `mapstructure:"refresh_token"`
	SenderEmail    string `mapstructure:"sender_email"`
	TokenURL       string `mapstructure:"token_url"`
	APIURL         string `mapstructure:"api_url"`
	ParentLoginURL string `mapstructure:"parent_login_url"`
}

// PasswordConfig.RequireStrong applies the letter, digit and length rule to
// passwords chosen by parents or set by an admin. It is off by default.
type PasswordConfig struct {
	TempLength    int    `mapstructure:"temp_length"`
	TempAlphabet  string `mapstructure:"temp_alphabet"`
	RequireStrong bool   `mapstructure:"require_strong"`
}

func (c *PasswordConfig) Policy() password.Policy {
	return password.Policy{RequireStrong: c.RequireStrong}
}

var defaults = map[string]interface{}{
	"api.environment":          "development",
	"api.port":                 "8080",
	"api.base_url":             "localhost:8080",
	"api.allowed_cors_domains": []string{"http://localhost:3000"},
	"api.jwt_signing_key":      "",
	"api.admin_token_ttl":      "1h",
	"api.parent_token_ttl":     "168h",
	"gin.mode":                 "debug",
	"log.level":                "info",
	"database.driver":          "postgres",
	"database.sqlite_path":     "./skarbek.db",
	"postgres.host":            "localhost",
	"postgres.port":            "5432",
	"postgres.user":            "postgres",
	"postgres.password":        "postgres",
	"postgres.db":              "skarbek",
	"postgres.sslmode":         "disable",
	"admin.username":           "admin",
	"admin.password":           "changeme",
	"mail.driver":              "log",
	"mail.client_id":           "",
	"mail.client_secret":       "",
	"mail.refresh_token":       "",
	"mail.sender_email":        "",
	"mail.token_url":           "https://oauth2.googleapis.com/token",
	"mail.api_url":             "https://gmail.googleapis.com",
	"mail.parent_login_url":    "http://localhost:3000/#/parent/login",
	"password.temp_length":     10,
	"password.temp_alphabet":   password.ReadableAlphabet,
	"password.require_strong":  false,
}

// Load reads the YAML file at path, when it exists, and overlays environment
// variables named after the keys (api.jwt_signing_key -> API_JWT_SIGNING_KEY).
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err = v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
			}
		}
	}

	conf, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func unmarshal(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{v: v}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	return conf, nil
}

func (c *AppConfig) Validate() error {
	if c.API.JWTSigningKey == "" {
		return errMissingSigningKey
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errUnknownDBDriver
	}

	switch c.Mail.Driver {
	case "gmail", "log":
	default:
		return errUnknownMailDriver
	}

	if _, err := password.NewGenerator(c.Password.TempLength, c.Password.TempAlphabet); err != nil {
		return fmt.Errorf("password: %w", err)
	}

	return nil
}

// Watch calls onChange with a freshly decoded config each time the config
// file changes on disk. Callers decide which settings they can apply live.
func (c *AppConfig) Watch(onChange func(conf *AppConfig, event fsnotify.Event)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}

	c.v.OnConfigChange(func(event fsnotify.Event) {
		conf, err := unmarshal(c.v)
		if err != nil {
			return
		}
		onChange(conf, event)
	})
	c.v.WatchConfig()
}
