// internal/game/round.go
package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/chinchon/internal/engine"
	"github.com/jason-s-yu/chinchon/internal/models"
)

var (
	ErrNotYourTurn = errors.New("not this seat's turn")
	ErrWrongPhase  = errors.New("action not allowed in the current phase")
	ErrRoundOver   = errors.New("round is over")
	ErrGameOver    = errors.New("game is over")
	ErrInvalidSeat = errors.New("invalid seat")
	ErrCannotClose = errors.New("melds do not allow closing the round")
)

// PlayerState is everything a seat owns during a round. Slots are rebuilt on every
// analysis pass; Score carries the running total across rounds.
type PlayerState struct {
	*models.Player
	Hand  *models.Hand
	Slots engine.Slots
	Score engine.RoundScore
}

// RoundState is the explicit context of one round: the four seats, both piles, whose turn
// it is and the rules in force. Every engine call made by the driver goes through it.
type RoundState struct {
	ID       uuid.UUID
	Number   int
	Players  [models.NumSeats]*PlayerState
	Draw     *models.DrawPile
	Discard  *models.DiscardPile
	Turn     int
	Turns    int // turns completed this round
	Settings Settings
	Closed   bool

	rng *rand.Rand
}

// NewRoundState prepares round number for the given seats. Hands are cleared and score
// latches reset; running totals are kept.
func NewRoundState(number int, players [models.NumSeats]*PlayerState, settings Settings, rng *rand.Rand) *RoundState {
	for _, p := range players {
		p.Hand.Clear()
		p.Slots = engine.Slots{}
		p.Score.NewRound()
	}
	return &RoundState{
		ID:       uuid.New(),
		Number:   number,
		Players:  players,
		Draw:     models.NewDrawPile(nil),
		Discard:  models.NewDiscardPile(),
		Settings: settings,
		rng:      rng,
	}
}

// Deal checks that deck is the full universe, deals HandSize cards to each seat in turn
// order and leaves the rest as the draw pile. The discard pile starts empty.
func (r *RoundState) Deal(deck []models.Card) error {
	if err := models.IsPermutationOfUniverse(deck); err != nil {
		return fmt.Errorf("deal round %d: %w", r.Number, err)
	}
	next := 0
	for i := 0; i < models.HandSize; i++ {
		for _, p := range r.Players {
			p.Hand.Add(deck[next])
			next++
		}
	}
	r.Draw = models.NewDrawPile(deck[next:])
	r.Discard = models.NewDiscardPile()
	r.Turn = 0
	r.Turns = 0
	return nil
}

// Player returns the state of seat.
func (r *RoundState) Player(seat int) (*PlayerState, error) {
	if seat < 0 || seat >= models.NumSeats {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	return r.Players[seat], nil
}

// Current is the seat whose turn it is.
func (r *RoundState) Current() *PlayerState {
	return r.Players[r.Turn]
}

// Analyze rebuilds the combo slots of seat from its hand.
func (r *RoundState) Analyze(seat int) (engine.Slots, error) {
	p, err := r.Player(seat)
	if err != nil {
		return engine.Slots{}, err
	}
	p.Slots = engine.Analyze(p.Hand.Cards())
	return p.Slots, nil
}

// MissingCards analyzes seat and lists the cards that would extend its combos.
func (r *RoundState) MissingCards(seat int) (engine.CardSet, error) {
	slots, err := r.Analyze(seat)
	if err != nil {
		return 0, err
	}
	return engine.MissingCards(slots, r.Players[seat].Hand.Cards()), nil
}

// PileView is what any seat can see of the two piles.
func (r *RoundState) PileView() engine.PileView {
	top, ok := r.Discard.Top()
	return engine.PileView{
		DiscardTop:    top,
		HasDiscardTop: ok,
		DrawNonEmpty:  !r.Draw.Empty(),
	}
}

// ChooseSource runs the draw heuristic for seat.
func (r *RoundState) ChooseSource(seat int) (engine.Source, error) {
	missing, err := r.MissingCards(seat)
	if err != nil {
		return engine.SourceDeck, err
	}
	return engine.ChooseSource(missing, r.PileView()), nil
}

// AdviseToFinish grades the current slots of seat under the round's rules.
func (r *RoundState) AdviseToFinish(seat int) (engine.FinishAdvice, error) {
	slots, err := r.Analyze(seat)
	if err != nil {
		return engine.AdviceNone, err
	}
	l0, l1 := slots.Lengths()
	return engine.AdviseToFinish(l0, l1, r.Settings.FlexibleEnding), nil
}

// DrawCard moves one card from the chosen pile into the hand of seat. When the draw pile
// runs out, every discard but the top is shuffled back into it and reshuffled is true.
func (r *RoundState) DrawCard(seat int, src engine.Source) (card models.Card, reshuffled bool, err error) {
	p, err := r.Player(seat)
	if err != nil {
		return models.Card{}, false, err
	}
	switch src {
	case engine.SourceDiscard:
		card, err = r.Discard.Take()
	default:
		card, err = r.Draw.Draw()
	}
	if err != nil {
		return models.Card{}, false, fmt.Errorf("draw from %s: %w", src, err)
	}
	p.Hand.Add(card)

	if r.Draw.Empty() {
		if under := r.Discard.TakeAllButTop(); len(under) > 0 {
			r.Draw.Refill(under, r.rng)
			reshuffled = true
		}
	}
	return card, reshuffled, nil
}

// DiscardAt moves the card at hand position idx of seat onto the discard pile.
func (r *RoundState) DiscardAt(seat, idx int) (models.Card, error) {
	p, err := r.Player(seat)
	if err != nil {
		return models.Card{}, err
	}
	card, err := p.Hand.RemoveAt(idx)
	if err != nil {
		return models.Card{}, err
	}
	r.Discard.Push(card)
	return card, nil
}

// CloseAdvice grades the hand seat would keep after throwing the card at idx.
func (r *RoundState) CloseAdvice(seat, idx int) (engine.FinishAdvice, error) {
	p, err := r.Player(seat)
	if err != nil {
		return engine.AdviceNone, err
	}
	if _, err := p.Hand.At(idx); err != nil {
		return engine.AdviceNone, err
	}
	cards := p.Hand.Cards()
	kept := append(cards[:idx:idx], cards[idx+1:]...)
	l0, l1 := engine.Analyze(kept).Lengths()
	return engine.AdviseToFinish(l0, l1, r.Settings.FlexibleEnding), nil
}

// NextTurn passes the turn to the following seat.
func (r *RoundState) NextTurn() {
	r.Turn = (r.Turn + 1) % models.NumSeats
	r.Turns++
}

// Stalled reports whether the round has run out of allowed turns.
func (r *RoundState) Stalled() bool {
	return r.Settings.MaxTurnsPerRound > 0 && r.Turns >= r.Settings.MaxTurnsPerRound
}

// ScoreAll analyzes and scores every seat. Each seat is scored at most once per round.
func (r *RoundState) ScoreAll() [models.NumSeats]engine.RoundScore {
	var out [models.NumSeats]engine.RoundScore
	for seat, p := range r.Players {
		p.Slots = engine.Analyze(p.Hand.Cards())
		out[seat] = engine.CalcRoundScore(&p.Score, p.Hand.Cards(), p.Slots)
	}
	return out
}

// Totals lists the running totals by seat.
func (r *RoundState) Totals() []int {
	totals := make([]int, models.NumSeats)
	for seat, p := range r.Players {
		totals[seat] = p.Score.TotalPts
	}
	return totals
}

// CheckPartition verifies that piles and hands together hold the universe exactly once.
func (r *RoundState) CheckPartition() error {
	all := make([]models.Card, 0, models.DeckSize)
	all = append(all, r.Draw.Cards()...)
	all = append(all, r.Discard.Cards()...)
	for _, p := range r.Players {
		all = append(all, p.Hand.Cards()...)
	}
	if err := models.IsPermutationOfUniverse(all); err != nil {
		return fmt.Errorf("round %d partition: %w", r.Number, err)
	}
	return nil
}
