package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCronExpr(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"daily", "0 3 * * *", false},
		{"every_15_minutes", "*/15 * * * *", false},
		{"seconds_field_rejected", "0 0 3 * * *", true},
		{"garbage", "not a cron", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronExpr(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextCronTime(t *testing.T) {
	from := time.Date(2024, 5, 1, 2, 30, 0, 0, time.UTC)

	next, err := NextCronTime("0 3 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC), next)

	_, err = NextCronTime("bad", from)
	assert.Error(t, err)
}
