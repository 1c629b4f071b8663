package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CANTEEN"

type AppConfig struct {
	Instance string `yaml:"instance"`
	Timezone string `yaml:"timezone"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // file | postgres | redis | memory
	Path   string `yaml:"path"`
	Key    string `yaml:"key"`
}

type DB struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns" split_words:"true"`
}

type MQ struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	UseTLS   bool   `yaml:"tls" split_words:"true"`
	Exchange string `yaml:"exchange"`
}

type Redis struct {
	Addr     string `yaml:"addr"` // host:port or redis:// URL
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type NotifyConfig struct {
	Driver       string        `yaml:"driver"` // local | rabbitmq | redis | postgres
	PollInterval time.Duration `yaml:"poll_interval" split_words:"true"`
	Channel      string        `yaml:"channel"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"` // stdout, stderr or a file path
}

type Config struct {
	App      AppConfig     `yaml:"app" envconfig:"APP"`
	Storage  StorageConfig `yaml:"storage" envconfig:"STORAGE"`
	Database DB            `yaml:"database" envconfig:"DB"`
	Rabbit   MQ            `yaml:"rabbitmq" envconfig:"RABBITMQ"`
	Redis    Redis         `yaml:"redis" envconfig:"REDIS"`
	Notify   NotifyConfig  `yaml:"notify" envconfig:"NOTIFY"`
	HTTP     HTTPConfig    `yaml:"http" envconfig:"HTTP"`
	Log      LogConfig     `yaml:"log" envconfig:"LOG"`
}

func Defaults() Config {
	return Config{
		App:      AppConfig{Instance: hostnameOr("canteen"), Timezone: "Local"},
		Storage:  StorageConfig{Driver: "file", Path: "data/canteen.json", Key: "bansal_canteen_db_v3"},
		Database: DB{Host: "localhost", Port: 5432, User: "canteen", Database: "canteen", SSLMode: "disable", MaxConns: 4},
		Rabbit:   MQ{Host: "localhost", Port: 5672, User: "guest", Password: "guest", VHost: "/", Exchange: "canteen.state_fanout"},
		Redis:    Redis{Addr: "localhost:6379", Channel: "canteen:state"},
		Notify:   NotifyConfig{Driver: "local", PollInterval: 5 * time.Second, Channel: "canteen_state"},
		HTTP:     HTTPConfig{Port: 3000},
		Log:      LogConfig{Level: "info", Output: "stdout"},
	}
}

// Load layers the defaults, the YAML file at path (skipped when path is
// empty or the file does not exist), a .env file in the working directory
// and CANTEEN_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("env config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case "file":
		if c.Storage.Path == "" {
			return errors.New("invalid config: storage.path is required for the file driver")
		}
	case "postgres", "redis", "memory":
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Notify.Driver {
	case "local", "rabbitmq", "redis", "postgres":
	default:
		return fmt.Errorf("invalid config: unknown notify driver %q", c.Notify.Driver)
	}
	if c.Notify.PollInterval <= 0 {
		return errors.New("invalid config: notify.poll_interval must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid config: app.timezone: %w", err)
	}
	return nil
}

// Location resolves app.timezone; "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.App.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(tz)
}

func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

func hostnameOr(def string) string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return def
}
