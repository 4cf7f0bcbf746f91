package engine

import (
	"testing"

	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCardSet(t *testing.T) {
	var s CardSet
	s.Add(card(3, 12))
	s.Add(card(0, 1))
	s.Add(card(1, 6))
	s.Add(card(0, 1))
	s.Add(card(0, 13))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(card(1, 6)))
	assert.False(t, s.Contains(card(1, 7)))
	assert.False(t, s.Contains(card(0, 13)))
	assert.Equal(t, []models.Card{card(0, 1), card(1, 6), card(3, 12)}, s.Cards())

	s.Remove(card(1, 6))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, NewCardSet(card(0, 1), card(3, 12)), s)
}

func TestCardSetCoversUniverse(t *testing.T) {
	s := NewCardSet(models.Universe()...)
	assert.Equal(t, models.DeckSize, s.Len())
	assert.Equal(t, models.Universe(), s.Cards())
}

func TestMissingCardsStair(t *testing.T) {
	hand := suitRun(0, 5, 6, 7)
	missing := MissingCards(Analyze(hand), hand)
	assert.Equal(t, []models.Card{card(0, 4), card(0, 8)}, missing.Cards())
}

func TestMissingCardsStairEdges(t *testing.T) {
	hand := suitRun(2, 1, 2, 3)
	missing := MissingCards(Analyze(hand), hand)
	assert.Equal(t, []models.Card{card(2, 4)}, missing.Cards(), "rank 0 does not exist")

	hand = suitRun(2, 10, 11, 12)
	missing = MissingCards(Analyze(hand), hand)
	assert.Equal(t, []models.Card{card(2, 9)}, missing.Cards())
}

func TestMissingCardsGapStairAsksForGap(t *testing.T) {
	hand := suitRun(1, 1, 2, 3, 5, 6, 7)
	missing := MissingCards(Analyze(hand), hand)
	assert.Equal(t, []models.Card{card(1, 4), card(1, 8)}, missing.Cards())
}

func TestMissingCardsGroup(t *testing.T) {
	hand := []models.Card{card(0, 9), card(2, 9), card(3, 9)}
	missing := MissingCards(Analyze(hand), hand)
	assert.Equal(t, []models.Card{card(1, 9)}, missing.Cards())
}

func TestMissingCardsExcludesHand(t *testing.T) {
	hand := []models.Card{card(0, 5), card(0, 6), card(0, 7), card(1, 5), card(2, 5), card(0, 8)}
	slots := Slots{
		{Kind: KindStair, Cards: suitRun(0, 5, 6, 7)},
		{Kind: KindGroup, Cards: []models.Card{card(1, 5), card(2, 5)}},
	}
	missing := MissingCards(slots, hand)

	// (0,8) and (0,5) are held, so only the stair's lower end and the fourth suit remain.
	assert.Equal(t, []models.Card{card(0, 4), card(3, 5)}, missing.Cards())
	for _, c := range hand {
		assert.False(t, missing.Contains(c), "%s is in hand", c)
	}
}

func TestMissingCardsEmptySlots(t *testing.T) {
	assert.Equal(t, 0, MissingCards(Slots{}, nil).Len())

	hand := []models.Card{card(0, 1), card(1, 3), card(2, 5)}
	assert.Equal(t, 0, MissingCards(Analyze(hand), hand).Len())
}
