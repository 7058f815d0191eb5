package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const appName = "patientrec"

type Config struct {
	DataFile       string `yaml:"data_file" mapstructure:"data_file"`
	LogFile        string `yaml:"log_file" mapstructure:"log_file"`
	LogLevel       string `yaml:"log_level" mapstructure:"log_level"`
	Theme          string `yaml:"theme" mapstructure:"theme"`
	Splash         bool   `yaml:"splash" mapstructure:"splash"`
	AutosaveOnExit bool   `yaml:"autosave_on_exit" mapstructure:"autosave_on_exit"`
}

var (
	validThemes    = map[string]bool{"green": true, "amber": true, "plain": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

func DefaultConfig() *Config {
	return &Config{
		DataFile: "patients.json",
		LogFile:  filepath.Join(Dir(), appName+".log"),
		LogLevel: "info",
		Theme:    "green",
		Splash:   true,
	}
}

// Dir is the per-user configuration directory. Without a home directory
// it falls back to the system temp dir so paths stay absolute.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".config", appName)
}

// Load reads configuration from file (explicit path, or config.yaml in the
// working directory or Dir), then PATIENTREC_* environment variables. A
// .env file in the working directory is applied to the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}

	cfg := DefaultConfig()
	v := viper.New()

	v.SetDefault("data_file", cfg.DataFile)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("splash", cfg.Splash)
	v.SetDefault("autosave_on_exit", cfg.AutosaveOnExit)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but could not be parsed
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	c.DataFile = strings.TrimSpace(c.DataFile)
	if c.DataFile == "" {
		return fmt.Errorf("config: data_file is required")
	}
	c.Theme = strings.ToLower(strings.TrimSpace(c.Theme))
	if c.Theme == "" {
		c.Theme = "green"
	}
	if !validThemes[c.Theme] {
		return fmt.Errorf("config: theme %q is invalid (must be green, amber, or plain)", c.Theme)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("config: log_level %q is invalid (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

// WriteDefault writes the default configuration to path as YAML. An
// existing file is left alone.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
