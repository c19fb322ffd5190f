package xtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		d     time.Duration
		round time.Duration
		exp   string
	}{
		{"zero", 0, time.Minute, "0d"},
		{"rounds_below_precision", 20 * time.Second, time.Minute, "0m"},
		{"rounds_up", 45 * time.Second, time.Minute, "1m"},
		{"minutes", 90 * time.Minute, time.Minute, "1h30m"},
		{"days", 25 * time.Hour, time.Hour, "1d1h"},
		{"weeks", 9 * 24 * time.Hour, time.Hour, "1w2d"},
		{"months_and_years", (365 + 60 + 5) * 24 * time.Hour, time.Hour, "1Y2M5d"},
		{"negative", -36 * time.Hour, time.Hour, "-1d12h"},
		{"seconds", 42 * time.Second, time.Second, "42s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exp, FormatDuration(tt.d, tt.round))
		})
	}
}
