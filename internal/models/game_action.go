package models

// GameAction captures one move submitted for the seat whose turn it is.
//
// Supported action types and payload keys:
//   - "action_draw": "source" ("deck" or "discard")
//   - "action_discard": "idx" (hand position)
//   - "action_close": "idx" (hand position of the card thrown when closing)
type GameAction struct {
	ActionType string                 `json:"action_type"`
	Payload    map[string]interface{} `json:"payload"`
}
