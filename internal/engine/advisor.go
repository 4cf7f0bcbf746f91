package engine

import (
	"github.com/jason-s-yu/chinchon/internal/models"
)

// Source is where a player draws from.
type Source int

const (
	SourceDeck Source = iota
	SourceDiscard
)

func (s Source) String() string {
	if s == SourceDiscard {
		return "discard"
	}
	return "deck"
}

// PileView is what a bot can see of the piles when choosing where to draw from.
type PileView struct {
	DiscardTop    models.Card
	HasDiscardTop bool
	DrawNonEmpty  bool
}

// DiscardNonEmpty is true whenever there is a top card to take.
func (v PileView) DiscardNonEmpty() bool {
	return v.HasDiscardTop
}

// ChooseSource picks the discard pile when its top is one of the missing cards and the
// draw pile otherwise. An empty draw pile forces the discard pile and an empty discard
// pile forces the draw pile, regardless of the heuristic.
func ChooseSource(missing CardSet, piles PileView) Source {
	source := SourceDeck
	if piles.HasDiscardTop && missing.Contains(piles.DiscardTop) {
		source = SourceDiscard
	}
	if !piles.DrawNonEmpty {
		source = SourceDiscard
	}
	if !piles.DiscardNonEmpty() {
		source = SourceDeck
	}
	return source
}

// FinishAdvice grades how advisable it is to end the round now.
type FinishAdvice int

const (
	AdviceNone     FinishAdvice = iota // not advisable
	AdviceOptional                     // two threes under the flexible-ending house rule
	AdviceEndNow                       // a three and a four
	AdviceBigStair                     // a seven-card stair
)

func (a FinishAdvice) String() string {
	switch a {
	case AdviceOptional:
		return "optional"
	case AdviceEndNow:
		return "end_now"
	case AdviceBigStair:
		return "big_stair"
	default:
		return "none"
	}
}

// CanFinish reports whether the advice allows closing the round.
func (a FinishAdvice) CanFinish() bool {
	return a != AdviceNone
}

// AdviseToFinish grades the two slot lengths. The checks run in fixed order: a big stair
// in either slot, then a 3+4 split, then two threes when flexibleEnding is on.
func AdviseToFinish(len0, len1 int, flexibleEnding bool) FinishAdvice {
	switch {
	case len0 == MaxComboCards || len1 == MaxComboCards:
		return AdviceBigStair
	case (len0 == 3 && len1 == 4) || (len0 == 4 && len1 == 3):
		return AdviceEndNow
	case len0 == 3 && len1 == 3 && flexibleEnding:
		return AdviceOptional
	default:
		return AdviceNone
	}
}

// ChooseDiscard picks the hand position a bot should throw away: the highest-ranked card
// that is in neither slot, the later one on ties. When every card is melded it falls back
// to the last card in hand. ok is false for an empty hand.
func ChooseDiscard(hand []models.Card, slots Slots) (idx int, ok bool) {
	if len(hand) == 0 {
		return 0, false
	}
	idx = -1
	for i, c := range hand {
		if slots.Melded(c) {
			continue
		}
		if idx < 0 || c.Rank >= hand[idx].Rank {
			idx = i
		}
	}
	if idx < 0 {
		idx = len(hand) - 1
	}
	return idx, true
}
