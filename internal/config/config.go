// Package config loads the runtime configuration once and hands it to the
// pipeline as an explicit value. Nothing in the module reads ambient state
// after Load returns.
package config

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config carries every setting the pipeline needs.
type Config struct {
	Username    string
	Password    string
	MapsAPIKey  string
	HomeAddress string
	WorkAddress string
	BaseURL     string
	DataDir     string
	OutputDir   string
	LogLevel    string
}

// Defaults applied when neither the config file nor the environment sets a
// key.
const (
	DefaultBaseURL   = "https://singles.eventsandadventures.com/website"
	DefaultDataDir   = "~/.ea-events"
	DefaultOutputDir = "output"
)

// Load reads cfgFile (or ~/.ea-events.yaml when empty) plus EA_* environment
// overrides. A missing config file is fine as long as the required keys
// arrive through the environment.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".ea-events")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("EA")
	v.AutomaticEnv()

	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("maps_api_key", "")
	v.SetDefault("home_address", "")
	v.SetDefault("work_address", "")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("loglevel", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		Username:    v.GetString("username"),
		Password:    v.GetString("password"),
		MapsAPIKey:  v.GetString("maps_api_key"),
		HomeAddress: v.GetString("home_address"),
		WorkAddress: v.GetString("work_address"),
		BaseURL:     v.GetString("base_url"),
		DataDir:     v.GetString("data_dir"),
		OutputDir:   v.GetString("output_dir"),
		LogLevel:    v.GetString("loglevel"),
	}
	return cfg, nil
}

// RequireCredentials reports an error when the site login settings are
// missing. The scrape and actions commands need them; mark does not.
func (c *Config) RequireCredentials() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password must be set (config file or EA_USERNAME / EA_PASSWORD)")
	}
	return nil
}
