package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Project   ProjectConfig   `mapstructure:"project" yaml:"project"`
	Generator GeneratorConfig `mapstructure:"generator" yaml:"generator"`
	Rewrite   RewriteConfig   `mapstructure:"rewrite" yaml:"rewrite"`
	Migration MigrationConfig `mapstructure:"migration" yaml:"migration"`
}

// ProjectConfig locates the Maven project being migrated.
type ProjectConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// GeneratorConfig configures the generation model client.
type GeneratorConfig struct {
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
}

// RewriteConfig configures the OpenRewrite Maven plugin invocation.
type RewriteConfig struct {
	PluginVersion     string `mapstructure:"plugin_version" yaml:"plugin_version"`
	Recipe            string `mapstructure:"recipe" yaml:"recipe"`
	RecipeCoordinates string `mapstructure:"recipe_coordinates" yaml:"recipe_coordinates"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// MigrationConfig configures orchestration behavior.
type MigrationConfig struct {
	DryRun                bool   `mapstructure:"dry_run" yaml:"dry_run"`
	MaxWorkers            int    `mapstructure:"max_workers" yaml:"max_workers"`
	BackupSuffix          string `mapstructure:"backup_suffix" yaml:"backup_suffix"`
	ReportPath            string `mapstructure:"report_path" yaml:"report_path"`
	CompileTimeoutSeconds int    `mapstructure:"compile_timeout_seconds" yaml:"compile_timeout_seconds"`
}

// Timeout returns the OpenRewrite subprocess timeout.
func (c *RewriteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CompileTimeout returns the compile verification subprocess timeout.
func (c *MigrationConfig) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from file and environment variables. The
// generator API key can come from a .env file or the GEMINI_API_KEY
// environment variable so it never has to live in the config file.
func LoadConfig(configPath string) (*Config, error) {
	// Best effort; a missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("$HOME/.boot3migrate")
	}

	viper.SetEnvPrefix("BOOT3MIGRATE")
	viper.AutomaticEnv()
	if err := viper.BindEnv("generator.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("generator.model", "gemini-2.0-flash")
	viper.SetDefault("rewrite.plugin_version", "6.28.0")
	viper.SetDefault("rewrite.recipe", "org.openrewrite.java.spring.boot3.UpgradeSpringBoot_3_0")
	viper.SetDefault("rewrite.recipe_coordinates", "org.openrewrite.recipe:rewrite-spring:RELEASE")
	viper.SetDefault("rewrite.timeout_seconds", 600)
	viper.SetDefault("migration.dry_run", false)
	viper.SetDefault("migration.max_workers", 1)
	viper.SetDefault("migration.backup_suffix", ".bak")
	viper.SetDefault("migration.compile_timeout_seconds", 300)
}

func validateConfig(config *Config) error {
	if config.Project.Path == "" {
		return fmt.Errorf("project.path is required")
	}

	if _, err := os.Stat(config.Project.Path); err != nil {
		return fmt.Errorf("project.path is not accessible: %w", err)
	}

	if config.Generator.APIKey == "" && !config.Migration.DryRun {
		return fmt.Errorf("generator.api_key is required (set GEMINI_API_KEY or generator.api_key)")
	}

	if config.Generator.Model == "" {
		return fmt.Errorf("generator.model is required")
	}

	if config.Migration.MaxWorkers <= 0 {
		return fmt.Errorf("migration.max_workers must be greater than 0")
	}

	if config.Migration.BackupSuffix == "" {
		return fmt.Errorf("migration.backup_suffix is required")
	}

	return nil
}

// SaveConfig writes the configuration to a file, creating the directory if
// needed. Used by `config init`.
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}
