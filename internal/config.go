package internal

import (
	"fmt"

	"github.com/hbomb79/Riptide/internal/api"
	"github.com/hbomb79/Riptide/internal/fetch"
	"github.com/hbomb79/Riptide/internal/ffmpeg"
	"github.com/ilyakaznacheev/cleanenv"
)

// RiptideConfig is the struct used to contain the various user config
// supplied by file, or manually inside the code.
type RiptideConfig struct {
	Download   fetch.Config   `yaml:"download"`
	Processor  ffmpeg.Config  `yaml:"processor"`
	RestConfig api.RestConfig `yaml:"api"`
}

// LoadFromFile loads a configuration file formatted in YAML in to a
// RiptideConfig struct, allowing environment variables to override
// any values found in the file.
func (config *RiptideConfig) LoadFromFile(configPath string) error {
	err := cleanenv.ReadConfig(configPath, config)
	if err != nil {
		return fmt.Errorf("failed to load configuration for RiptideConfig - %v", err.Error())
	}

	return nil
}

// LoadFromEnv populates the config from environment variables alone,
// used when no config file is present on the host.
func (config *RiptideConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration for RiptideConfig - %v", err.Error())
	}

	return nil
}
