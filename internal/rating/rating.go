// Package rating keeps Glicko-2 ratings for seats across a series of Chinchón games.
package rating

import (
	"fmt"
	"sort"
)

// Rating is a Glicko-2 rating expressed on the Elo scale.
type Rating struct {
	Elo   float64 `json:"elo"`
	RD    float64 `json:"rd"`
	Sigma float64 `json:"sigma"`
}

// NewRating is the rating every seat starts from.
func NewRating() Rating {
	return Rating{Elo: DefaultElo, RD: DefaultRD, Sigma: DefaultSigma}
}

// RankFractions turns final totals into scores in [0..1]: the lowest total gets 1, the
// highest 0, and tied totals share the average of the places they span.
func RankFractions(totals []int) []float64 {
	out := make([]float64, len(totals))
	if len(totals) < 2 {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	order := make([]int, len(totals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return totals[order[a]] < totals[order[b]]
	})

	last := float64(len(totals) - 1)
	for i := 0; i < len(order); {
		j := i + 1
		for j < len(order) && totals[order[j]] == totals[order[i]] {
			j++
		}
		avgRank := float64(i+j-1) / 2
		for k := i; k < j; k++ {
			out[order[k]] = 1.0 - avgRank/last
		}
		i = j
	}
	return out
}

// UpdateGame rates one finished game. Each seat plays against the average Elo of the
// others, with that opponent at the default deviation.
func UpdateGame(ratings []Rating, totals []int) ([]Rating, error) {
	if len(ratings) != len(totals) {
		return nil, fmt.Errorf("rating update: %d ratings for %d totals", len(ratings), len(totals))
	}
	if len(ratings) < 2 {
		return append([]Rating(nil), ratings...), nil
	}

	scores := RankFractions(totals)
	var sum float64
	for _, r := range ratings {
		sum += r.Elo
	}
	out := make([]Rating, len(ratings))
	for i, r := range ratings {
		oppElo := (sum - r.Elo) / float64(len(ratings)-1)
		opp := toGlicko2(Rating{Elo: oppElo, RD: DefaultRD, Sigma: DefaultSigma})
		out[i] = update(toGlicko2(r), opp, scores[i]).rating()
	}
	return out, nil
}

// Table tracks one rating per seat over many games.
type Table struct {
	Ratings []Rating
	Games   int
}

func NewTable(seats int) *Table {
	t := &Table{Ratings: make([]Rating, seats)}
	for i := range t.Ratings {
		t.Ratings[i] = NewRating()
	}
	return t
}

// Record applies a game's final totals, indexed by seat.
func (t *Table) Record(totals []int) error {
	next, err := UpdateGame(t.Ratings, totals)
	if err != nil {
		return err
	}
	t.Ratings = next
	t.Games++
	return nil
}
