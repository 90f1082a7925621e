package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRefundTiers(t *testing.T) {
	tiers, err := ParseRefundTiers("48:100,24:50,0:0")
	assert.NoError(t, err)
	assert.Equal(t, []RefundTier{
		{HoursBefore: 48, RefundPercent: 100},
		{HoursBefore: 24, RefundPercent: 50},
		{HoursBefore: 0, RefundPercent: 0},
	}, tiers)
}

func TestParseRefundTiers_SortsDescending(t *testing.T) {
	tiers, err := ParseRefundTiers("0:0,48:100,24:50")
	assert.NoError(t, err)
	assert.Equal(t, 48, tiers[0].HoursBefore)
	assert.Equal(t, 24, tiers[1].HoursBefore)
	assert.Equal(t, 0, tiers[2].HoursBefore)
}

func TestParseRefundTiers_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		spec string
	}{
		{"empty", ""},
		{"garbage entry", "48:100,banana"},
		{"missing percent", "48:"},
		{"negative hours", "-2:50"},
		{"percent above 100", "48:150"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRefundTiers(tc.spec)
			assert.Error(t, err)
		})
	}
}
