package models

import (
	"fmt"
	"math/rand"
)

// Suit indexes one of the four Spanish-deck suits.
type Suit int

// Rank is a card value in 1..12.
type Rank int

const (
	Oros Suit = iota
	Copas
	Espadas
	Bastos
)

const (
	NumSuits = 4
	NumRanks = 12
	DeckSize = NumSuits * NumRanks

	// HandSize is the steady-state hand length; a hand holds HandSize+1 cards
	// between a draw and the following discard.
	HandSize = 7

	MinRank Rank = 1
	MaxRank Rank = NumRanks
)

var suitNames = [NumSuits]string{"oros", "copas", "espadas", "bastos"}

func (s Suit) String() string {
	if !s.Valid() {
		return fmt.Sprintf("suit(%d)", int(s))
	}
	return suitNames[s]
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= 0 && s < NumSuits
}

// Valid reports whether r lies in 1..12.
func (r Rank) Valid() bool {
	return r >= MinRank && r <= MaxRank
}

// Card is an immutable (suit, rank) pair. The zero value is not a valid card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// NewCard returns the card for the given suit and rank, or an error if either is out of range.
func NewCard(suit Suit, rank Rank) (Card, error) {
	c := Card{Suit: suit, Rank: rank}
	if !c.Valid() {
		return Card{}, fmt.Errorf("invalid card suit=%d rank=%d", suit, rank)
	}
	return c, nil
}

// Valid reports whether both suit and rank are in range.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

// Key is the canonical ordering key suit*12+rank, unique over the universe (1..48).
func (c Card) Key() int {
	return int(c.Suit)*NumRanks + int(c.Rank)
}

// Index is the zero-based position of c in Universe().
func (c Card) Index() int {
	return c.Key() - 1
}

// CardFromIndex is the inverse of Card.Index.
func CardFromIndex(i int) Card {
	return Card{Suit: Suit(i / NumRanks), Rank: Rank(i%NumRanks + 1)}
}

func (c Card) String() string {
	return fmt.Sprintf("%d of %s", c.Rank, c.Suit)
}

// Universe returns the 48 cards in canonical order (suit-major, rank ascending).
func Universe() []Card {
	cards := make([]Card, 0, DeckSize)
	for i := 0; i < DeckSize; i++ {
		cards = append(cards, CardFromIndex(i))
	}
	return cards
}

// ShuffledUniverse returns the universe permuted by rng.
func ShuffledUniverse(rng *rand.Rand) []Card {
	cards := Universe()
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}

// RankSum adds up the rank values of cards.
func RankSum(cards []Card) int {
	sum := 0
	for _, c := range cards {
		sum += int(c.Rank)
	}
	return sum
}

// IsPermutationOfUniverse reports whether cards holds every universe card exactly once.
func IsPermutationOfUniverse(cards []Card) error {
	if len(cards) != DeckSize {
		return fmt.Errorf("expected %d cards, got %d", DeckSize, len(cards))
	}
	var seen [DeckSize]bool
	for _, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("invalid card %v", c)
		}
		if seen[c.Index()] {
			return fmt.Errorf("duplicate card %v", c)
		}
		seen[c.Index()] = true
	}
	return nil
}
