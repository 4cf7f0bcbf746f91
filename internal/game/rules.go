// internal/game/rules.go
package game

import "fmt"

// Settings holds the house rules a game is played under.
type Settings struct {
	MaxTotalPoints   int  `json:"maxTotalPoints"`   // a total above this ends the game
	FlexibleEnding   bool `json:"flexibleEnding"`   // allow closing with two three-card combos
	MaxTurnsPerRound int  `json:"maxTurnsPerRound"` // a round with no closer is scored after this many turns; 0 disables
	BotTurnDelayMs   int  `json:"botTurnDelayMs"`   // pause between bot turns when a game is run live
}

// DefaultSettings returns the rules a game starts with when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxTotalPoints:   100,
		FlexibleEnding:   false,
		MaxTurnsPerRound: 400,
		BotTurnDelayMs:   0,
	}
}

// Update will update the settings with the new rules provided.
// If a rule is not set or defined, it will be ignored, and the old value will persist.
func (s *Settings) Update(newRules map[string]interface{}) error {
	assignBool := func(field *bool, key string) error {
		if val, exists := newRules[key]; exists && val != nil {
			b, ok := val.(bool)
			if !ok {
				return fmt.Errorf("invalid type for %s", key)
			}
			*field = b
		}
		return nil
	}

	assignInt := func(field *int, key string, minVal int) error {
		if val, exists := newRules[key]; exists && val != nil {
			// JSON numbers decode as float64
			var n int
			switch v := val.(type) {
			case float64:
				n = int(v)
			case int:
				n = v
			default:
				return fmt.Errorf("invalid type for %s", key)
			}
			if n < minVal {
				return fmt.Errorf("%s must be at least %d", key, minVal)
			}
			*field = n
		}
		return nil
	}

	if err := assignInt(&s.MaxTotalPoints, "maxTotalPoints", 1); err != nil {
		return err
	}
	if err := assignBool(&s.FlexibleEnding, "flexibleEnding"); err != nil {
		return err
	}
	if err := assignInt(&s.MaxTurnsPerRound, "maxTurnsPerRound", 0); err != nil {
		return err
	}
	if err := assignInt(&s.BotTurnDelayMs, "botTurnDelayMs", 0); err != nil {
		return err
	}
	return nil
}

// ParseRules applies a map of rules on top of current. current is left untouched on error.
func ParseRules(rules map[string]interface{}, current Settings) (Settings, error) {
	settings := current
	if err := settings.Update(rules); err != nil {
		return current, err
	}
	return settings, nil
}
