package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPath is the config file read when MOVIESTAT_CONFIG is unset.
const DefaultConfigPath = "moviestat.yaml"

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "MOVIESTAT_CONFIG"

// envPrefix is the prefix of every configuration environment variable.
const envPrefix = "MOVIESTAT_"

// sections are the top-level keys an environment variable can address.
var sections = []string{"input", "analysis", "report", "export", "logging"}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Path: "tmdb-movies.csv",
		},
		Analysis: AnalysisConfig{
			ProfitThreshold: 50_000_000,
			TopN:            10,
		},
		Report: ReportConfig{
			OutputDir:   "report",
			ChartFormat: "png",
			Charts:      true,
			Workbook:    true,
			JSON:        true,
		},
		Export: ExportConfig{
			Format:      "csv",
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Load merges defaults, the config file, the environment and overrides, then
// validates the result. overrides maps dotted keys such as "input.path" to
// values set explicitly on the command line.
func Load(overrides map[string]any) (*Config, error) {
	return LoadFile(findConfigFile(), overrides)
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(path string, overrides map[string]any) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize lower-cases the enumerated settings.
func (c *Config) normalize() {
	c.Report.ChartFormat = strings.ToLower(strings.TrimSpace(c.Report.ChartFormat))
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Export.Compression = strings.ToLower(strings.TrimSpace(c.Export.Compression))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// findConfigFile returns the config file to read, or "" when there is none.
// An explicit MOVIESTAT_CONFIG that does not exist is still returned so the
// load fails loudly.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		return envPath
	}
	if _, err := os.Stat(DefaultConfigPath); err == nil {
		return DefaultConfigPath
	}
	return ""
}

// envTransformFunc maps MOVIESTAT_REPORT_OUTPUT_DIR to report.output_dir.
// Variables outside the known sections, MOVIESTAT_CONFIG included, are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok && rest != "" {
			return section + "." + rest
		}
	}
	return ""
}
