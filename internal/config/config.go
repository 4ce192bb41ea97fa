package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Template TemplateConfig `mapstructure:"template"`
	Output   OutputConfig   `mapstructure:"output"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// TemplateConfig locates the background invoice template
type TemplateConfig struct {
	Path       string `mapstructure:"path"`
	FontFamily string `mapstructure:"font_family"`
}

// OutputConfig holds settings of the generated documents
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	AutoTotals bool   `mapstructure:"auto_totals"`
	TempDir    string `mapstructure:"temp_dir"`
}

// DatabaseConfig holds the generation history database configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"` // empty uses the embedded migrations
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return unmarshal(v)
}

// LoadOrDefault loads configPath when it exists and falls back to defaults and
// environment variables otherwise. found reports whether the file was read.
func LoadOrDefault(configPath string) (cfg *Config, found bool, err error) {
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr == nil {
			cfg, err = Load(configPath)
			return cfg, true, err
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to stat config file: %w", statErr)
		}
	}

	cfg, err = unmarshal(newViper())
	return cfg, false, err
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVars(v)
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Template defaults
	v.SetDefault("template.path", "MODELE FACTURE GLOBAL SOLUTIONS A REMPLIR.pdf")
	v.SetDefault("template.font_family", "Helvetica")

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.auto_totals", false)
	v.SetDefault("output.temp_dir", "")

	// Database defaults
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", "data/invoices.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.migrations_dir", "")

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "console")
}

// bindEnvVars binds the documented environment variables
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("template.path", "INVOICE_TEMPLATE_PATH")
	_ = v.BindEnv("output.dir", "INVOICE_OUTPUT_DIR")
	_ = v.BindEnv("database.path", "INVOICE_DB_PATH")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Template.Path == "" {
		return fmt.Errorf("template.path is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("database.path is required when the history is enabled")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	return nil
}

// Addr returns the listen address of the HTTP server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
