package moviestat

import (
	"math"
	"testing"
	"time"
)

func TestParseReleaseDate(t *testing.T) {
	t.Parallel()

	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name        string
		value       string
		releaseYear int
		want        time.Time
		wantErr     bool
	}{
		{name: "TMDb short year", value: "6/9/15", releaseYear: 2015, want: date(2015, time.June, 9)},
		{name: "short year without release year", value: "6/9/15", want: date(2015, time.June, 9)},
		{name: "short year before the pivot", value: "8/14/60", releaseYear: 1960, want: date(1960, time.August, 14)},
		{name: "go pivot without release year", value: "8/14/60", want: date(2060, time.August, 14)},
		{name: "release year disagrees", value: "8/14/60", releaseYear: 1975, want: date(2060, time.August, 14)},
		{name: "zero padded short year", value: "01/02/99", releaseYear: 1999, want: date(1999, time.January, 2)},
		{name: "four digit year", value: "12/10/2009", want: date(2009, time.December, 10)},
		{name: "iso date", value: "2009-12-10", want: date(2009, time.December, 10)},
		{name: "iso date without padding", value: "2009-1-5", want: date(2009, time.January, 5)},
		{name: "iso datetime", value: "2009-12-10 18:30:00", want: date(2009, time.December, 10)},
		{name: "rfc3339", value: "2009-12-10T18:30:00Z", want: date(2009, time.December, 10)},
		{name: "surrounding space", value: " 2009-12-10 ", want: date(2009, time.December, 10)},
		{name: "empty", value: "", wantErr: true},
		{name: "words", value: "sometime in May", wantErr: true},
		{name: "impossible day", value: "2/30/15", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseReleaseDate(tt.value, tt.releaseYear)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected an error for %q, got %v", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReleaseDate(%q) error = %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseReleaseDate(%q) = %v, want %v", tt.value, got, tt.want)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected UTC, got %v", got.Location())
			}
			if s := formatReleaseDate(got); s != tt.want.Format("2006-01-02") {
				t.Errorf("formatReleaseDate() = %q", s)
			}
		})
	}
}

func TestParseWholeNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    int64
		ok      bool
		wantErr bool
	}{
		{value: "150000000", want: 150000000, ok: true},
		{value: " 124 ", want: 124, ok: true},
		{value: "0", want: 0, ok: true},
		{value: "-5", want: -5, ok: true},
		{value: "137.0", want: 137, ok: true},
		{value: "1.5e+08", want: 150000000, ok: true},
		{value: "", ok: false},
		{value: "   ", ok: false},
		{value: "lots", wantErr: true},
		{value: "NaN", wantErr: true},
		{value: "1e300", wantErr: true},
		{value: "9.223372036854775807e18", wantErr: true},
		{value: "-9.223372036854775808e18", want: math.MinInt64, ok: true},
	}

	for _, tt := range tests {
		n, ok, err := parseWholeNumber(tt.value)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseWholeNumber(%q) expected an error", tt.value)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseWholeNumber(%q) error = %v", tt.value, err)
			continue
		}
		if n != tt.want || ok != tt.ok {
			t.Errorf("parseWholeNumber(%q) = (%d, %v), want (%d, %v)", tt.value, n, ok, tt.want, tt.ok)
		}
	}
}
