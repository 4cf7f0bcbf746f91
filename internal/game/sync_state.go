// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/models"
)

// SpectatorSeat asks for a view that reveals no hand.
const SpectatorSeat = -1

// ObfPlayerState represents one seat from the perspective of the requesting seat.
type ObfPlayerState struct {
	PlayerID      uuid.UUID     `json:"player_id"`
	Seat          int           `json:"seat"`
	Name          string        `json:"name"`
	HandSize      int           `json:"hand_size"`
	TotalPts      int           `json:"totalPts"`
	IsCurrentTurn bool          `json:"isCurrentTurn"`
	Hand          []models.Card `json:"hand,omitempty"` // only for the requesting seat
}

// ObfRoundState is returned by GetObfuscatedRoundState.
type ObfRoundState struct {
	GameID      uuid.UUID        `json:"game_id"`
	RoundID     uuid.UUID        `json:"round_id"`
	Round       int              `json:"round"`
	Phase       string           `json:"phase"`
	Started     bool             `json:"started"`
	GameOver    bool             `json:"gameOver"`
	ForSeat     int              `json:"forSeat"`
	CurrentSeat int              `json:"currentSeat"`
	DrawSize    int              `json:"drawSize"`
	DiscardSize int              `json:"discardSize"`
	DiscardTop  *models.Card     `json:"discardTop,omitempty"`
	Players     []ObfPlayerState `json:"players"`
}

// GetObfuscatedRoundState generates a snapshot of the current round for forSeat. Only
// that seat's hand is revealed; SpectatorSeat sees none.
func (g *ChinchonGame) GetObfuscatedRoundState(forSeat int) ObfRoundState {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	obf := ObfRoundState{
		GameID:   g.ID,
		Phase:    g.Phase.String(),
		Started:  g.Started,
		GameOver: g.GameOver,
		ForSeat:  forSeat,
	}
	for seat, p := range g.Players {
		obf.Players = append(obf.Players, ObfPlayerState{
			PlayerID: p.ID,
			Seat:     seat,
			Name:     p.Name,
			HandSize: p.Hand.Len(),
			TotalPts: p.Score.TotalPts,
		})
	}

	r := g.Round
	if r == nil {
		return obf
	}
	obf.RoundID = r.ID
	obf.Round = r.Number
	obf.CurrentSeat = r.Turn
	obf.DrawSize = r.Draw.Len()
	obf.DiscardSize = r.Discard.Len()
	if top, ok := r.Discard.Top(); ok {
		obf.DiscardTop = &top
	}
	for seat := range obf.Players {
		obf.Players[seat].IsCurrentTurn = seat == r.Turn
		if seat == forSeat {
			obf.Players[seat].Hand = g.Players[seat].Hand.Cards()
		}
	}
	return obf
}

// SyncStateEvent wraps the view of forSeat in a private_sync_state event.
func (g *ChinchonGame) SyncStateEvent(forSeat int) GameEvent {
	state := g.GetObfuscatedRoundState(forSeat)
	return GameEvent{Type: EventPrivateSyncState, State: &state}
}
