package engine

import (
	"sort"

	"github.com/jason-s-yu/chinchon/internal/models"
)

// RoundScore is one player's score state. The round result is latched: once computed it
// is not recomputed until NewRound clears the latch.
type RoundScore struct {
	RoundPts int  `json:"roundPts"`
	TotalPts int  `json:"totalPts"`
	Scored   bool `json:"scored"`
}

// NewRound clears the latch and the previous round's points, keeping the running total.
func (s *RoundScore) NewRound() {
	s.RoundPts = 0
	s.Scored = false
}

// RoundPoints is the rank sum of the hand minus the rank sum of the melded cards.
func RoundPoints(hand []models.Card, slots Slots) int {
	melded := models.RankSum(slots[0].Cards) + models.RankSum(slots[1].Cards)
	return models.RankSum(hand) - melded
}

// CalcRoundScore scores the round into s and returns the result. A second call in the
// same round is a no-op.
func CalcRoundScore(s *RoundScore, hand []models.Card, slots Slots) RoundScore {
	if s.Scored {
		return *s
	}
	s.RoundPts = RoundPoints(hand, slots)
	s.TotalPts += s.RoundPts
	s.Scored = true
	return *s
}

// Standing pairs a seat with its running total.
type Standing struct {
	Seat     int `json:"seat"`
	TotalPts int `json:"totalPts"`
}

// GameOutcome is the end-of-game check over all seats.
//
// Flagged is the first seat, scanning totals in ascending order, whose total exceeds the
// configured maximum. Leader is the seat with the lowest total. Both are only meaningful
// when Over is true; Leader is also filled in while the game goes on.
type GameOutcome struct {
	Over      bool       `json:"over"`
	Flagged   int        `json:"flagged"`
	Leader    int        `json:"leader"`
	Standings []Standing `json:"standings"`
}

// DetectGameOver sorts seats by ascending total (seat order on ties) and flags the first
// one above maxTotalPoints.
func DetectGameOver(totals []int, maxTotalPoints int) GameOutcome {
	standings := make([]Standing, len(totals))
	for seat, total := range totals {
		standings[seat] = Standing{Seat: seat, TotalPts: total}
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].TotalPts < standings[j].TotalPts
	})

	out := GameOutcome{Standings: standings}
	if len(standings) > 0 {
		out.Leader = standings[0].Seat
	}
	for _, st := range standings {
		if st.TotalPts > maxTotalPoints {
			out.Over = true
			out.Flagged = st.Seat
			break
		}
	}
	return out
}
