package config

import (
	"github.com/garyjia/invoice-filler/internal/generator"
	"github.com/garyjia/invoice-filler/pkg/database"
	"github.com/garyjia/invoice-filler/pkg/utils"
)

// ToGeneratorConfig converts the file-based settings to the generator configuration
func (c *Config) ToGeneratorConfig() generator.Config {
	return generator.Config{
		TemplatePath: c.Template.Path,
		OutputDir:    c.Output.Dir,
		AutoTotals:   c.Output.AutoTotals,
		FontFamily:   c.Template.FontFamily,
	}
}

// ToDatabaseConfig converts the history settings to the database configuration
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Path:            c.Database.Path,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// ToLoggerConfig converts the logger settings
func (c *Config) ToLoggerConfig() utils.LoggerConfig {
	return utils.LoggerConfig{
		Level:      c.Logger.Level,
		OutputPath: c.Logger.OutputPath,
		Format:     c.Logger.Format,
	}
}
