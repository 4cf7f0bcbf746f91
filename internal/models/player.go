package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NumSeats is the fixed table size.
const NumSeats = 4

// Player identifies whoever sits at a seat. Hands and scores live with the round.
type Player struct {
	ID   uuid.UUID `json:"id"`
	Seat int       `json:"seat"`
	Name string    `json:"name"`
	Bot  bool      `json:"bot"`
}

// NewBotPlayer seats a bot with a generated ID.
func NewBotPlayer(seat int) *Player {
	return &Player{
		ID:   uuid.New(),
		Seat: seat,
		Name: fmt.Sprintf("bot-%d", seat),
		Bot:  true,
	}
}
