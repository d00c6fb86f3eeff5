package moviestat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHeader(t *testing.T) {
	t.Parallel()

	h := newHeader([]string{" original_title", "budget ", "runtime"})
	assert.Equal(t, header{"original_title", "budget", "runtime"}, h, "names must be trimmed")
	assert.Equal(t, 1, h.indexOf("budget"))
	assert.Equal(t, -1, h.indexOf("Budget"), "lookup is case-sensitive")
}

func TestHeader_Equal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		h1       header
		h2       header
		expected bool
	}{
		{name: "equal", h1: header{"a", "b"}, h2: header{"a", "b"}, expected: true},
		{name: "different order", h1: header{"a", "b"}, h2: header{"b", "a"}},
		{name: "different length", h1: header{"a", "b"}, h2: header{"a"}},
		{name: "both empty", h1: header{}, h2: header{}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.h1.equal(tt.h2))
		})
	}
}

func TestRecord_Key(t *testing.T) {
	t.Parallel()

	r1 := newRecord([]string{"Avatar", "237000000"})
	r2 := newRecord([]string{"Avatar", "237000000"})
	r3 := newRecord([]string{"Avatar,237000000"})

	assert.True(t, r1.equal(r2))
	assert.Equal(t, r1.key(), r2.key())
	assert.NotEqual(t, r1.key(), r3.key(), "field boundaries must be part of the key")
	assert.False(t, r1.equal(r3))

	// separators inside a field must not shift the field boundary
	r4 := newRecord([]string{"a\x1fb", "c"})
	r5 := newRecord([]string{"a", "b\x1fc"})
	assert.False(t, r4.equal(r5))
	assert.NotEqual(t, r4.key(), r5.key())
	r6 := newRecord([]string{"1:a", ""})
	r7 := newRecord([]string{"", "1:a"})
	assert.NotEqual(t, r6.key(), r7.key())
}

func TestValidateColumnNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		wantErr bool
	}{
		{name: "unique", columns: []string{"budget", "revenue"}},
		{name: "duplicate", columns: []string{"budget", "revenue", "budget"}, wantErr: true},
		{name: "duplicate after trim", columns: []string{"budget", " budget "}, wantErr: true},
		{name: "case differs", columns: []string{"budget", "Budget"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateColumnNames(tt.columns)
			if tt.wantErr {
				assert.ErrorIs(t, err, errDuplicateColumnName)
				return
			}
			assert.NoError(t, err)
		})
	}
}
