package engine

import (
	"testing"

	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseSource(t *testing.T) {
	missing := NewCardSet(card(0, 4), card(0, 8))

	tests := []struct {
		name  string
		piles PileView
		want  Source
	}{
		{
			name:  "top is missing",
			piles: PileView{DiscardTop: card(0, 8), HasDiscardTop: true, DrawNonEmpty: true},
			want:  SourceDiscard,
		},
		{
			name:  "top is not missing",
			piles: PileView{DiscardTop: card(1, 8), HasDiscardTop: true, DrawNonEmpty: true},
			want:  SourceDeck,
		},
		{
			name:  "draw pile empty forces discard",
			piles: PileView{DiscardTop: card(1, 8), HasDiscardTop: true, DrawNonEmpty: false},
			want:  SourceDiscard,
		},
		{
			name:  "discard pile empty forces deck",
			piles: PileView{HasDiscardTop: false, DrawNonEmpty: true},
			want:  SourceDeck,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChooseSource(missing, tt.piles))
		})
	}
}

func TestChooseSourceNoMissingCards(t *testing.T) {
	piles := PileView{DiscardTop: card(2, 2), HasDiscardTop: true, DrawNonEmpty: true}
	assert.Equal(t, SourceDeck, ChooseSource(CardSet(0), piles))
}

func TestAdviseToFinish(t *testing.T) {
	tests := []struct {
		len0, len1 int
		flexible   bool
		want       FinishAdvice
	}{
		{3, 4, false, AdviceEndNow},
		{4, 3, false, AdviceEndNow},
		{3, 4, true, AdviceEndNow},
		{3, 3, false, AdviceNone},
		{3, 3, true, AdviceOptional},
		{7, 0, false, AdviceBigStair},
		{0, 7, true, AdviceBigStair},
		{4, 4, true, AdviceNone},
		{6, 0, true, AdviceNone},
		{0, 0, true, AdviceNone},
		{2, 3, true, AdviceNone},
	}
	for _, tt := range tests {
		got := AdviseToFinish(tt.len0, tt.len1, tt.flexible)
		assert.Equal(t, tt.want, got, "lengths (%d,%d) flexible=%v", tt.len0, tt.len1, tt.flexible)
		assert.Equal(t, tt.want != AdviceNone, got.CanFinish())
	}
}

func TestAdviseToFinishBigStairHand(t *testing.T) {
	slots := Analyze(suitRun(3, 2, 3, 4, 5, 6, 7, 8))
	l0, l1 := slots.Lengths()
	assert.Equal(t, AdviceBigStair, AdviseToFinish(l0, l1, false))
	assert.Equal(t, "big_stair", AdviceBigStair.String())
}

func TestChooseDiscard(t *testing.T) {
	hand := []models.Card{card(0, 5), card(0, 6), card(0, 7), card(1, 11), card(2, 2), card(3, 11)}
	slots := Analyze(hand)

	idx, ok := ChooseDiscard(hand, slots)
	require.True(t, ok)
	assert.Equal(t, 5, idx, "later of the two unmelded elevens")
}

func TestChooseDiscardSkipsMelded(t *testing.T) {
	hand := []models.Card{card(1, 10), card(1, 11), card(1, 12), card(0, 4), card(2, 1)}
	idx, ok := ChooseDiscard(hand, Analyze(hand))
	require.True(t, ok)
	assert.Equal(t, card(0, 4), hand[idx])
}

func TestChooseDiscardAllMelded(t *testing.T) {
	hand := suitRun(0, 1, 2, 3, 4, 5, 6, 7)
	idx, ok := ChooseDiscard(hand, Analyze(hand))
	require.True(t, ok)
	assert.Equal(t, len(hand)-1, idx)

	_, ok = ChooseDiscard(nil, Slots{})
	assert.False(t, ok)
}
