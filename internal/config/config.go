// Package config defines the application configuration and loads it from a
// YAML file with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/pkg/constants"
	"github.com/ciceromayk/parametrico/pkg/validation"
)

// Configuration holds all configuration for parametrico.
type Configuration struct {
	Storage  StorageConfig  `yaml:"storage,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// StorageConfig holds the locations of the JSON data files.
type StorageConfig struct {
	Projects        string `yaml:"projects,omitempty"`
	StageArchive    string `yaml:"stageArchive,omitempty"`
	IndirectArchive string `yaml:"indirectArchive,omitempty"`
}

// DefaultsConfig holds the values applied to new projects.
type DefaultsConfig struct {
	LandCostPerM2         float64 `yaml:"landCostPerM2,omitempty"`
	ConstructionCostPerM2 float64 `yaml:"constructionCostPerM2,omitempty"`
	AvgSalePricePerM2     float64 `yaml:"avgSalePricePerM2,omitempty"`
	ConstructionMonths    int     `yaml:"constructionMonths,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	return &Configuration{
		Storage: StorageConfig{
			Projects:        constants.DefaultProjectsFile,
			StageArchive:    constants.DefaultStageArchiveFile,
			IndirectArchive: constants.DefaultIndirectArchiveFile,
		},
		Defaults: DefaultsConfig{
			LandCostPerM2:         constants.DefaultLandCostPerM2,
			ConstructionCostPerM2: constants.DefaultConstructionCostPerM2,
			AvgSalePricePerM2:     constants.DefaultSalePricePerM2,
			ConstructionMonths:    constants.DefaultConstructionMonths,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
	}
}

// LoadConfiguration loads the YAML configuration at configPath on top of
// the defaults. Every key can be overridden from the environment, e.g.
// PARAMETRICO_STORAGE_PROJECTS. An empty configPath loads defaults and
// environment only.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

func setDefaults(v *viper.Viper, d *Configuration) {
	v.SetDefault("storage.projects", d.Storage.Projects)
	v.SetDefault("storage.stageArchive", d.Storage.StageArchive)
	v.SetDefault("storage.indirectArchive", d.Storage.IndirectArchive)
	v.SetDefault("defaults.landCostPerM2", d.Defaults.LandCostPerM2)
	v.SetDefault("defaults.constructionCostPerM2", d.Defaults.ConstructionCostPerM2)
	v.SetDefault("defaults.avgSalePricePerM2", d.Defaults.AvgSalePricePerM2)
	v.SetDefault("defaults.constructionMonths", d.Defaults.ConstructionMonths)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.outputFile", d.Logging.OutputFile)
	v.SetDefault("output.format", d.Output.Format)
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// ProjectDefaults converts the defaults section for budget.NewProject.
func (c *Configuration) ProjectDefaults() budget.Defaults {
	return budget.Defaults{
		CostConfig: budget.CostConfig{
			LandCostPerM2:         c.Defaults.LandCostPerM2,
			ConstructionCostPerM2: c.Defaults.ConstructionCostPerM2,
			AvgSalePricePerM2:     c.Defaults.AvgSalePricePerM2,
		},
		ConstructionMonths: c.Defaults.ConstructionMonths,
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Unusable values are replaced by their defaults.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	d := Default()

	fillPath := func(key string, value *string, fallback string) {
		if strings.TrimSpace(*value) == "" {
			warnings = append(warnings, fmt.Sprintf("storage.%s is empty, using %s", key, fallback))
			*value = fallback
		}
	}
	fillPath("projects", &c.Storage.Projects, d.Storage.Projects)
	fillPath("stageArchive", &c.Storage.StageArchive, d.Storage.StageArchive)
	fillPath("indirectArchive", &c.Storage.IndirectArchive, d.Storage.IndirectArchive)

	checkCost := func(key string, value float64) {
		if value < 0 {
			warnings = append(warnings, fmt.Sprintf("defaults.%s is negative (%.2f)", key, value))
		} else if value == 0 {
			warnings = append(warnings, fmt.Sprintf("defaults.%s is zero", key))
		}
	}
	checkCost("landCostPerM2", c.Defaults.LandCostPerM2)
	checkCost("constructionCostPerM2", c.Defaults.ConstructionCostPerM2)
	checkCost("avgSalePricePerM2", c.Defaults.AvgSalePricePerM2)

	if m := c.Defaults.ConstructionMonths; m < constants.MinConstructionMonths || m > constants.MaxConstructionMonths {
		warnings = append(warnings, fmt.Sprintf("defaults.constructionMonths %d outside [%d, %d], using %d",
			m, constants.MinConstructionMonths, constants.MaxConstructionMonths, d.Defaults.ConstructionMonths))
		c.Defaults.ConstructionMonths = d.Defaults.ConstructionMonths
	}

	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, fmt.Sprintf("logging.level %q is unknown, using info", c.Logging.Level))
		c.Logging.Level = "info"
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		warnings = append(warnings, fmt.Sprintf("logging.format %q is unknown, using console", c.Logging.Format))
		c.Logging.Format = "console"
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, fmt.Sprintf("output.format %q is unknown, using %s", c.Output.Format, constants.OutputFormatPretty))
			c.Output.Format = constants.OutputFormatPretty
		}
	}

	return warnings
}
