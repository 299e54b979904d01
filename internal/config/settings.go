package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are the process-wide options of the CLI, layered as
// flags > COWELL_* environment > defaults.
type Settings struct {
	DataDir     string `mapstructure:"data_dir"`
	LogLevel    string `mapstructure:"log_level"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	Workers     int    `mapstructure:"workers"`
}

const (
	DefaultDataDir  = "./data"
	DefaultLogLevel = "info"
	DefaultWorkers  = 4
)

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("COWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("workers", DefaultWorkers)
	return v
}

func LoadSettings(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if s.Workers < 1 {
		return Settings{}, fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	return s, nil
}
