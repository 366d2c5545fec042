package xtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		exp    time.Duration
		expErr string
	}{
		{in: "90s", exp: 90 * time.Second},
		{in: "1h30m", exp: 90 * time.Minute},
		{in: "2d", exp: 48 * time.Hour},
		{in: "1w1d", exp: 8 * 24 * time.Hour},
		{in: "-1.5w", exp: -252 * time.Hour},
		{in: "1M", exp: 30 * 24 * time.Hour},
		{in: "", expErr: "invalid duration ''"},
		{in: "soon", expErr: "invalid duration 'soon'"},
		{in: "5x", expErr: `time: unknown unit "x" in duration "5x"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDuration(tt.in)
			if tt.expErr != "" {
				require.EqualError(t, err, tt.expErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0d", FormatDuration(0, time.Second))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute, time.Second))
	assert.Equal(t, "1w1d", FormatDuration(8*24*time.Hour, time.Hour))
	assert.Equal(t, "-2d", FormatDuration(-48*time.Hour, time.Hour))
}

func TestDurationJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.JSONEq(t, `"1h30m"`, string(data))

	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"2d"`), &d))
	assert.Equal(t, Duration(48*time.Hour), d)

	require.NoError(t, json.Unmarshal([]byte(`60000000000`), &d))
	assert.Equal(t, Duration(time.Minute), d)

	require.Error(t, json.Unmarshal([]byte(`true`), &d))
}
