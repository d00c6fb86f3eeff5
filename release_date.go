package moviestat

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/moviestat/domain/model"
)

// Release date patterns accepted by the cleaner
var datePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
	// shortYear is true when the layout carries a two-digit year
	shortYear bool
}{
	// ISO8601 formats with timezone
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		formats: []string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}$`),
		formats: []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05"},
	},
	// ISO8601 date only
	{
		pattern: regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
		formats: []string{"2006-01-02", "2006-1-2"},
	},
	// US formats, as used by the TMDb export
	{
		pattern: regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		formats: []string{"1/2/2006", "01/02/2006"},
	},
	{
		pattern:   regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2}$`),
		formats:   []string{"1/2/06", "01/02/06"},
		shortYear: true,
	},
}

// parseReleaseDate parses a release date into UTC midnight. When the value has a
// two-digit year and releaseYear is known, the century is taken from releaseYear;
// otherwise Go's pivot (69-99 → 19xx, 00-68 → 20xx) applies.
func parseReleaseDate(value string, releaseYear int) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty release date")
	}

	for _, dp := range datePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			t, err := time.Parse(format, value)
			if err != nil {
				continue
			}
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if dp.shortYear && releaseYear > 0 && t.Year()%100 == releaseYear%100 {
				t = t.AddDate(releaseYear-t.Year(), 0, 0)
			}
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized release date %q", value)
}

// formatReleaseDate renders a parsed release date in the cleaned layout.
func formatReleaseDate(t time.Time) string {
	return t.Format(model.DateLayout)
}

// parseWholeNumber parses an integer field. Float text such as "1.5e+08" or
// "137.0" is accepted and truncated toward zero. Empty text reports ok == false.
func parseWholeNumber(value string) (n int64, ok bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false, nil
	}

	// Try to parse as integer
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n, true, nil
	}

	// Try to parse as float. float64(math.MaxInt64) rounds up to 2^63, which
	// does not fit in an int64.
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false, fmt.Errorf("number out of range: %q", value)
	}
	return int64(math.Trunc(f)), true, nil
}
