// Package config loads tasknotify settings from ~/.config/tasknotify/config.yaml,
// a .env file and TASKNOTIFY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/tasknotify/pkg/clock"
)

const (
	xdgAppName = "tasknotify"
	configFile = "config.yaml"
	envPrefix  = "TASKNOTIFY"

	ProviderOneSignal = "onesignal"
	ProviderCalendar  = "gcal"
	ProviderFCM       = "fcm"
)

type Config struct {
	Provider   string          `mapstructure:"provider" yaml:"provider"`
	TargetZone string          `mapstructure:"target_zone" yaml:"target_zone"`
	DeviceZone string          `mapstructure:"device_zone" yaml:"device_zone"`
	OneSignal  OneSignalConfig `mapstructure:"onesignal" yaml:"onesignal"`
	Calendar   CalendarConfig  `mapstructure:"calendar" yaml:"calendar"`
	FCM        FCMConfig       `mapstructure:"fcm" yaml:"fcm"`
	Store      StoreConfig     `mapstructure:"store" yaml:"store"`
	Server     ServerConfig    `mapstructure:"server" yaml:"server"`
}

type OneSignalConfig struct {
	AppID   string        `mapstructure:"app_id"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MarshalYAML writes the timeout as a duration string.
func (o OneSignalConfig) MarshalYAML() (any, error) {
	return struct {
		AppID   string `yaml:"app_id"`
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url,omitempty"`
		Timeout string `yaml:"timeout"`
	}{o.AppID, o.APIKey, o.BaseURL, o.Timeout.String()}, nil
}

type CalendarConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

type FCMConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
}

func (f FCMConfig) MarshalYAML() (any, error) {
	return struct {
		CredentialsFile string `yaml:"credentials_file"`
		PollInterval    string `yaml:"poll_interval"`
	}{f.CredentialsFile, f.PollInterval.String()}, nil
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	Path   string `mapstructure:"path" yaml:"path,omitempty"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

var defaults = map[string]any{
	"provider":             ProviderOneSignal,
	"target_zone":          "Europe/Kiev",
	"device_zone":          "Local",
	"onesignal.app_id":     "",
	"onesignal.api_key":    "",
	"onesignal.base_url":   "https://api.onesignal.com",
	"onesignal.timeout":    "0s",
	"calendar.name":        "Tasks",
	"fcm.credentials_file": "",
	"fcm.poll_interval":    "1m",
	"store.driver":         "file",
	"store.path":           "",
	"store.dsn":            "",
	"server.addr":          ":8080",
}

// Dir returns ~/.config/tasknotify.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads path (the default location when empty). A missing file yields
// defaults; environment variables override both.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg as YAML to path (the default location when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the settings the chosen provider and store need.
func (c *Config) Validate() error {
	if _, err := clock.LoadZone(c.TargetZone); err != nil {
		return fmt.Errorf("target_zone: %w", err)
	}
	if _, err := clock.LoadZone(c.DeviceZone); err != nil {
		return fmt.Errorf("device_zone: %w", err)
	}

	switch c.Provider {
	case ProviderOneSignal:
		if c.OneSignal.AppID == "" || c.OneSignal.APIKey == "" {
			return errors.New("onesignal.app_id and onesignal.api_key are required")
		}
	case ProviderCalendar:
		if c.Calendar.Name == "" {
			return errors.New("calendar.name is required")
		}
	case ProviderFCM:
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	switch c.Store.Driver {
	case "file", "sqlite":
	case "postgres":
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// StorePath is the configured store path, or a file in Dir named for the driver.
func (c *Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if c.Store.Driver == "sqlite" {
		return filepath.Join(dir, "tasks.db"), nil
	}
	return filepath.Join(dir, "tasks.json"), nil
}
