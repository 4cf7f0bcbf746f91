package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankFractions(t *testing.T) {
	assert.Equal(t, []float64{1, 0}, RankFractions([]int{10, 40}))
	assert.InDeltaSlice(t, []float64{2.0 / 3, 1, 0, 1.0 / 3}, RankFractions([]int{20, 5, 101, 60}), 1e-9)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 1, 0}, RankFractions([]int{30, 30, 0, 90}), 1e-9, "ties share places")
	assert.Equal(t, []float64{1}, RankFractions([]int{7}))
}

func TestUpdateGameMovesLowTotalsUp(t *testing.T) {
	start := []Rating{NewRating(), NewRating(), NewRating(), NewRating()}
	next, err := UpdateGame(start, []int{12, 48, 101, 30})
	require.NoError(t, err)

	assert.Greater(t, next[0].Elo, DefaultElo)
	assert.Less(t, next[2].Elo, DefaultElo)
	assert.Greater(t, next[0].Elo, next[3].Elo)
	assert.Greater(t, next[3].Elo, next[1].Elo)
	for _, r := range next {
		assert.Less(t, r.RD, DefaultRD, "deviation shrinks after a game")
		assert.Greater(t, r.Sigma, 0.0)
	}
}

func TestUpdateGameMismatch(t *testing.T) {
	_, err := UpdateGame([]Rating{NewRating()}, []int{1, 2})
	assert.Error(t, err)
}

func TestTableRecord(t *testing.T) {
	table := NewTable(2)
	for i := 0; i < 5; i++ {
		require.NoError(t, table.Record([]int{10, 50}))
	}
	assert.Equal(t, 5, table.Games)
	assert.Greater(t, table.Ratings[0].Elo, table.Ratings[1].Elo)
	assert.Error(t, table.Record([]int{1}))
	assert.Equal(t, 5, table.Games)
}
