package game

import (
	"math/rand"
	"testing"

	"github.com/jason-s-yu/chinchon/internal/engine"
	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRound(t *testing.T, deck []models.Card) *RoundState {
	t.Helper()
	var players [models.NumSeats]*PlayerState
	for seat := range players {
		players[seat] = &PlayerState{Player: models.NewBotPlayer(seat), Hand: models.NewHand()}
	}
	rng := rand.New(rand.NewSource(11))
	r := NewRoundState(1, players, DefaultSettings(), rng)
	if deck == nil {
		deck = models.ShuffledUniverse(rng)
	}
	require.NoError(t, r.Deal(deck))
	return r
}

func TestDealRejectsBadDeck(t *testing.T) {
	var players [models.NumSeats]*PlayerState
	for seat := range players {
		players[seat] = &PlayerState{Player: models.NewBotPlayer(seat), Hand: models.NewHand()}
	}
	r := NewRoundState(1, players, DefaultSettings(), rand.New(rand.NewSource(1)))

	deck := models.Universe()
	deck[5] = deck[6]
	assert.ErrorContains(t, r.Deal(deck), "duplicate")
	assert.ErrorContains(t, r.Deal(deck[:40]), "expected 48")
}

func TestDealRoundRobin(t *testing.T) {
	deck := models.Universe()
	r := newTestRound(t, deck)

	first, err := r.Players[1].Hand.At(0)
	require.NoError(t, err)
	assert.Equal(t, deck[1], first)
	second, err := r.Players[1].Hand.At(1)
	require.NoError(t, err)
	assert.Equal(t, deck[5], second)
	assert.Equal(t, deck[28:], r.Draw.Cards())
}

func TestPlayerRejectsBadSeat(t *testing.T) {
	r := newTestRound(t, nil)
	_, err := r.Player(4)
	assert.ErrorIs(t, err, ErrInvalidSeat)
	_, err = r.Analyze(-1)
	assert.ErrorIs(t, err, ErrInvalidSeat)
}

func TestReshuffleWhenDrawPileRunsOut(t *testing.T) {
	r := newTestRound(t, nil)
	stock := r.Draw.Len()

	for i := 0; i < stock; i++ {
		_, reshuffled, err := r.DrawCard(0, engine.SourceDeck)
		require.NoError(t, err)
		if i < stock-1 {
			assert.False(t, reshuffled, "draw %d", i)
		} else {
			assert.True(t, reshuffled)
			assert.Equal(t, 1, r.Discard.Len(), "top discard stays")
			assert.Equal(t, stock-2, r.Draw.Len())
		}
		_, err = r.DiscardAt(0, 0)
		require.NoError(t, err)
		require.NoError(t, r.CheckPartition())
	}
}

func TestChooseSourceTakesMissingDiscard(t *testing.T) {
	hands := [models.NumSeats][]models.Card{bigStairHand, junkHandA, junkHandB, junkHandC}
	// Seat 0's stair wants the eight of oros, which seat 3 is about to throw.
	hands[0] = []models.Card{c(0, 5), c(0, 6), c(0, 7), c(1, 2), c(2, 4), c(3, 7), c(1, 10)}
	hands[3] = []models.Card{c(0, 8), c(3, 4), c(3, 6), c(3, 8), c(3, 10), c(3, 12), c(0, 12)}
	r := newTestRound(t, scriptedDeck(t, hands))

	src, err := r.ChooseSource(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SourceDeck, src, "nothing to take yet")

	_, err = r.DiscardAt(3, 0)
	require.NoError(t, err)
	src, err = r.ChooseSource(0)
	require.NoError(t, err)
	assert.Equal(t, engine.SourceDiscard, src)

	missing, err := r.MissingCards(0)
	require.NoError(t, err)
	assert.Equal(t, []models.Card{c(0, 4), c(0, 8)}, missing.Cards())
}

func TestCloseAdviceIgnoresThrownCard(t *testing.T) {
	r := newTestRound(t, scriptedDeck(t, [models.NumSeats][]models.Card{bigStairHand, junkHandA, junkHandB, junkHandC}, c(0, 8)))
	_, _, err := r.DrawCard(0, engine.SourceDeck)
	require.NoError(t, err)

	advice, err := r.CloseAdvice(0, 7)
	require.NoError(t, err)
	assert.Equal(t, engine.AdviceBigStair, advice)

	advice, err = r.CloseAdvice(0, 3)
	require.NoError(t, err)
	assert.Equal(t, engine.AdviceNone, advice, "throwing the four leaves 1-3 and 5-8")

	_, err = r.CloseAdvice(0, 8)
	assert.ErrorIs(t, err, models.ErrIndexOutOfRange)
	assert.Equal(t, models.HandSize+1, r.Players[0].Hand.Len())
}

func TestScoreAllLatches(t *testing.T) {
	r := newTestRound(t, scriptedDeck(t, [models.NumSeats][]models.Card{bigStairHand, junkHandA, junkHandB, junkHandC}))

	first := r.ScoreAll()
	assert.Equal(t, 0, first[0].RoundPts)
	assert.Equal(t, 48, first[1].RoundPts)
	second := r.ScoreAll()
	assert.Equal(t, first, second)
	assert.Equal(t, []int{0, 48, 37, 54}, r.Totals())
}

func TestNextTurnWraps(t *testing.T) {
	r := newTestRound(t, nil)
	for i := 0; i < models.NumSeats; i++ {
		assert.Equal(t, i, r.Turn)
		r.NextTurn()
	}
	assert.Equal(t, 0, r.Turn)
	assert.Equal(t, models.NumSeats, r.Turns)

	r.Settings.MaxTurnsPerRound = 4
	assert.True(t, r.Stalled())
	r.Settings.MaxTurnsPerRound = 0
	assert.False(t, r.Stalled())
}
