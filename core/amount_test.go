package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		minor uint64
		want  string
	}{
		{250_000_000, "2.5000"},
		{0, "0.0000"},
		{1, "0.0000"},             // below display precision
		{12_345_678, "0.1235"},    // rounds at the display boundary
		{100_000_000, "1.0000"},
		{10_000_000_000_000, "100000.0000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.minor))
	}
}

func TestToMinorUnits(t *testing.T) {
	minor, err := ToMinorUnits("2.5")
	require.NoError(t, err)
	assert.EqualValues(t, 250_000_000, minor)

	minor, err = ToMinorUnits("0.00000001")
	require.NoError(t, err)
	assert.EqualValues(t, 1, minor)

	// Sub-precision digits truncate.
	minor, err = ToMinorUnits("0.000000019")
	require.NoError(t, err)
	assert.EqualValues(t, 1, minor)

	_, err = ToMinorUnits("-1")
	assert.Error(t, err)

	_, err = ToMinorUnits("two and a half")
	assert.Error(t, err)
}
