package models

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrIndexOutOfRange = errors.New("hand index out of range")
	ErrCardNotHeld     = errors.New("card not held")
	ErrEmptyPile       = errors.New("pile is empty")
)

// Hand is the ordered set of cards owned by one seat.
type Hand struct {
	cards  []Card
	cursor int // display slot the next added card lands in, wraps at HandSize+1
}

// NewHand builds a hand holding cards in the given order.
func NewHand(cards ...Card) *Hand {
	h := &Hand{cards: make([]Card, 0, HandSize+1)}
	for _, c := range cards {
		h.Add(c)
	}
	return h
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Cards returns a copy of the hand in order.
func (h *Hand) Cards() []Card {
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// At returns the card at position i. Out-of-range positions are a caller bug and reported as such.
func (h *Hand) At(i int) (Card, error) {
	if i < 0 || i >= len(h.cards) {
		return Card{}, fmt.Errorf("%w: %d (size %d)", ErrIndexOutOfRange, i, len(h.cards))
	}
	return h.cards[i], nil
}

// Add appends c and returns the display slot it was placed in.
func (h *Hand) Add(c Card) int {
	h.cards = append(h.cards, c)
	slot := h.cursor
	h.cursor = (h.cursor + 1) % (HandSize + 1)
	return slot
}

// RemoveAt removes and returns the card at position i.
func (h *Hand) RemoveAt(i int) (Card, error) {
	c, err := h.At(i)
	if err != nil {
		return Card{}, err
	}
	h.cards = append(h.cards[:i], h.cards[i+1:]...)
	return c, nil
}

// Remove removes c from the hand.
func (h *Hand) Remove(c Card) error {
	i := h.IndexOf(c)
	if i < 0 {
		return fmt.Errorf("%w: %v", ErrCardNotHeld, c)
	}
	_, err := h.RemoveAt(i)
	return err
}

// IndexOf returns the position of c, or -1 when c is not held.
func (h *Hand) IndexOf(c Card) int {
	for i, held := range h.cards {
		if held == c {
			return i
		}
	}
	return -1
}

func (h *Hand) Contains(c Card) bool {
	return h.IndexOf(c) >= 0
}

// RankSum adds up the rank values of every held card.
func (h *Hand) RankSum() int {
	return RankSum(h.cards)
}

// Clear empties the hand and rewinds the insertion cursor.
func (h *Hand) Clear() {
	h.cards = h.cards[:0]
	h.cursor = 0
}

// DrawPile is the face-down stock. Cards are drawn from the front.
type DrawPile struct {
	cards []Card
}

func NewDrawPile(cards []Card) *DrawPile {
	p := &DrawPile{cards: make([]Card, len(cards))}
	copy(p.cards, cards)
	return p
}

func (p *DrawPile) Len() int {
	return len(p.cards)
}

func (p *DrawPile) Empty() bool {
	return len(p.cards) == 0
}

// Draw removes and returns the front card.
func (p *DrawPile) Draw() (Card, error) {
	if len(p.cards) == 0 {
		return Card{}, ErrEmptyPile
	}
	c := p.cards[0]
	p.cards = p.cards[1:]
	return c, nil
}

// Refill appends cards shuffled by rng to the back of the pile.
func (p *DrawPile) Refill(cards []Card, rng *rand.Rand) {
	start := len(p.cards)
	p.cards = append(p.cards, cards...)
	added := p.cards[start:]
	rng.Shuffle(len(added), func(i, j int) {
		added[i], added[j] = added[j], added[i]
	})
}

func (p *DrawPile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

func (p *DrawPile) Clear() {
	p.cards = nil
}

// DiscardPile is the face-up pile; its top is the most recently discarded card.
type DiscardPile struct {
	cards []Card
}

func NewDiscardPile() *DiscardPile {
	return &DiscardPile{}
}

func (p *DiscardPile) Len() int {
	return len(p.cards)
}

func (p *DiscardPile) Empty() bool {
	return len(p.cards) == 0
}

func (p *DiscardPile) Push(c Card) {
	p.cards = append(p.cards, c)
}

// Top returns the most recently discarded card without removing it.
func (p *DiscardPile) Top() (Card, bool) {
	if len(p.cards) == 0 {
		return Card{}, false
	}
	return p.cards[len(p.cards)-1], true
}

// Take removes and returns the top card.
func (p *DiscardPile) Take() (Card, error) {
	top, ok := p.Top()
	if !ok {
		return Card{}, ErrEmptyPile
	}
	p.cards = p.cards[:len(p.cards)-1]
	return top, nil
}

// TakeAllButTop removes every card beneath the top and returns them oldest first.
func (p *DiscardPile) TakeAllButTop() []Card {
	if len(p.cards) <= 1 {
		return nil
	}
	under := make([]Card, len(p.cards)-1)
	copy(under, p.cards[:len(p.cards)-1])
	p.cards = []Card{p.cards[len(p.cards)-1]}
	return under
}

func (p *DiscardPile) Cards() []Card {
	out := make([]Card, len(p.cards))
	copy(out, p.cards)
	return out
}

func (p *DiscardPile) Clear() {
	p.cards = nil
}
