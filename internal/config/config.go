// Package config loads moviestat configuration from layered sources.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. built-in defaults
//  2. a YAML file (MOVIESTAT_CONFIG, or moviestat.yaml in the working directory)
//  3. MOVIESTAT_* environment variables, e.g. MOVIESTAT_REPORT_OUTPUT_DIR
//  4. explicit command line flags
//
// The merged result is validated before it is returned.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the complete moviestat configuration.
type Config struct {
	Input    InputConfig    `koanf:"input"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Report   ReportConfig   `koanf:"report"`
	Export   ExportConfig   `koanf:"export"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// InputConfig names the movie file.
type InputConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// AnalysisConfig tunes the analysis.
type AnalysisConfig struct {
	// ProfitThreshold is the minimum profit in dollars of a "profitable" movie.
	ProfitThreshold int64 `koanf:"profit_threshold" validate:"gte=0"`
	// TopN limits the genre and cast tallies. 0 keeps all.
	TopN int `koanf:"top_n" validate:"gte=0"`
}

// ReportConfig selects the report outputs.
type ReportConfig struct {
	OutputDir   string `koanf:"output_dir" validate:"required"`
	ChartFormat string `koanf:"chart_format" validate:"oneof=png svg"`
	Charts      bool   `koanf:"charts"`
	Workbook    bool   `koanf:"workbook"`
	JSON        bool   `koanf:"json"`
}

// ExportConfig selects the format of the cleaned export.
type ExportConfig struct {
	Format      string `koanf:"format" validate:"oneof=csv tsv ltsv parquet xlsx"`
	Compression string `koanf:"compression" validate:"oneof=none gz xz zstd"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("moviestat: invalid configuration")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its validate tag.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fieldRule(fe)))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func fieldRule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
