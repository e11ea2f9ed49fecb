package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the protomodel project configuration
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Input       InputConfig    `mapstructure:"input"`
	Metadata    MetadataConfig `mapstructure:"metadata"`
	Output      OutputConfig   `mapstructure:"output"`
}

// InputConfig selects the descriptor set and root messages to compile
type InputConfig struct {
	DescriptorSet string   `mapstructure:"descriptor_set"`
	Messages      []string `mapstructure:"messages"`
}

// MetadataConfig points at the companion constraint metadata files, applied
// in order with later files overriding earlier ones per key
type MetadataConfig struct {
	Files []string `mapstructure:"files"`
}

// OutputConfig controls where and how compiled models are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// Load loads the configuration from protomodel.yml or protomodel.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("input.descriptor_set", "schema.pb")
	v.SetDefault("output.dir", "build/models")
	v.SetDefault("output.format", "jsonschema")

	// Set config name and paths
	v.SetConfigName("protomodel")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the current directory is a protomodel project
func InProject() bool {
	if _, err := os.Stat("protomodel.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("protomodel.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot tries to find the project root by looking for protomodel.yml
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "protomodel.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "protomodel.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("not in a protomodel project (no protomodel.yml found)")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Output.Format {
	case "", "jsonschema", "json":
	default:
		return fmt.Errorf("output.format must be 'jsonschema' or 'json', got: %s", cfg.Output.Format)
	}
	for _, file := range cfg.Metadata.Files {
		ext := filepath.Ext(file)
		if ext != ".yml" && ext != ".yaml" && ext != ".json" {
			return fmt.Errorf("metadata file %s must be YAML or JSON", file)
		}
	}
	return nil
}
