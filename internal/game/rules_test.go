package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdate(t *testing.T) {
	s := DefaultSettings()
	err := s.Update(map[string]interface{}{
		"maxTotalPoints": float64(75),
		"flexibleEnding": true,
		"botTurnDelayMs": 250,
		"unknownRule":    "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, 75, s.MaxTotalPoints)
	assert.True(t, s.FlexibleEnding)
	assert.Equal(t, 250, s.BotTurnDelayMs)
	assert.Equal(t, DefaultSettings().MaxTurnsPerRound, s.MaxTurnsPerRound, "absent keys keep their value")
}

func TestSettingsUpdateValidation(t *testing.T) {
	tests := []struct {
		name  string
		rules map[string]interface{}
		want  string
	}{
		{"bool type", map[string]interface{}{"flexibleEnding": "yes"}, "invalid type for flexibleEnding"},
		{"int type", map[string]interface{}{"maxTotalPoints": "100"}, "invalid type for maxTotalPoints"},
		{"zero limit", map[string]interface{}{"maxTotalPoints": float64(0)}, "maxTotalPoints must be at least 1"},
		{"negative delay", map[string]interface{}{"botTurnDelayMs": -5}, "botTurnDelayMs must be at least 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			assert.EqualError(t, s.Update(tt.rules), tt.want)
		})
	}
}

func TestParseRulesKeepsCurrentOnError(t *testing.T) {
	current := DefaultSettings()
	current.FlexibleEnding = true

	got, err := ParseRules(map[string]interface{}{"maxTotalPoints": float64(50), "flexibleEnding": 1}, current)
	assert.Error(t, err)
	assert.Equal(t, current, got)

	got, err = ParseRules(map[string]interface{}{"maxTotalPoints": float64(50)}, current)
	require.NoError(t, err)
	assert.Equal(t, 50, got.MaxTotalPoints)
	assert.True(t, got.FlexibleEnding)
	assert.Equal(t, 100, current.MaxTotalPoints)

	got, err = ParseRules(nil, current)
	require.NoError(t, err)
	assert.Equal(t, current, got)
}
