package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Output     OutputConfig     `toml:"output"`
	Extraction ExtractionConfig `toml:"extraction"`
	Poppler    PopplerConfig    `toml:"poppler"`
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type ExtractionConfig struct {
	Backends []string `toml:"backends"`
	Timeout  int      `toml:"timeout"`
}

type PopplerConfig struct {
	Layout bool `toml:"layout"`
}

func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: ".",
		},
		Extraction: ExtractionConfig{
			Backends: []string{},
			Timeout:  0,
		},
		Poppler: PopplerConfig{
			Layout: false,
		},
	}
}

func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return cfg, fmt.Errorf("error finding home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}

		configDir := filepath.Join(configHome, "pdfrip")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PDFRIP")

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return cfg, nil
}

func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# pdfrip configuration file

[output]
# Directory for extracted text files (one file per backend)
dir = "."

[extraction]
# Backends to attempt, in order. Empty = all known backends.
# Known: ledongthuc, poppler, mupdf
backends = []

# Per-backend timeout in seconds (0 = no timeout)
timeout = 0

[poppler]
# Pass -layout to pdftotext to preserve the physical text layout
layout = false
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}
