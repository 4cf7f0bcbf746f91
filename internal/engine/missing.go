package engine

import (
	"math/bits"

	"github.com/jason-s-yu/chinchon/internal/models"
)

// CardSet is a set of cards keyed by models.Card.Key (suit*12+rank). Iteration order is
// always ascending key, independent of insertion order.
type CardSet uint64

// NewCardSet builds a set from cards.
func NewCardSet(cards ...models.Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s.Add(c)
	}
	return s
}

func (s *CardSet) Add(c models.Card) {
	if c.Valid() {
		*s |= 1 << uint(c.Key())
	}
}

func (s *CardSet) Remove(c models.Card) {
	if c.Valid() {
		*s &^= 1 << uint(c.Key())
	}
}

func (s CardSet) Contains(c models.Card) bool {
	return c.Valid() && s&(1<<uint(c.Key())) != 0
}

func (s CardSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// Cards lists the members in ascending key order.
func (s CardSet) Cards() []models.Card {
	cards := make([]models.Card, 0, s.Len())
	for rest := uint64(s); rest != 0; rest &= rest - 1 {
		key := bits.TrailingZeros64(rest)
		cards = append(cards, models.CardFromIndex(key-1))
	}
	return cards
}

// MissingCards computes the cards that would extend or complete the player's combos.
// For a stair every held card suggests its same-suit neighbours one rank below and above;
// for a group every absent suit of its rank is suggested. Cards already in hand are never
// suggested.
func MissingCards(slots Slots, hand []models.Card) CardSet {
	var missing CardSet
	for _, slot := range slots {
		switch slot.Kind {
		case KindStair:
			for _, c := range slot.Cards {
				for _, r := range [2]models.Rank{c.Rank - 1, c.Rank + 1} {
					n := models.Card{Suit: c.Suit, Rank: r}
					if !slot.Contains(n) {
						missing.Add(n)
					}
				}
			}
		case KindGroup:
			if len(slot.Cards) == 0 {
				continue
			}
			rank := slot.Cards[0].Rank
			for s := models.Suit(0); s < models.NumSuits; s++ {
				c := models.Card{Suit: s, Rank: rank}
				if !slot.Contains(c) {
					missing.Add(c)
				}
			}
		}
	}
	for _, c := range hand {
		missing.Remove(c)
	}
	return missing
}
