package main

import (
	"strconv"

	"github.com/jason-s-yu/chinchon/internal/models"
	"github.com/jason-s-yu/chinchon/internal/rating"
	"github.com/pterm/pterm"
)

func seatLabel(seat int) string {
	return "seat " + strconv.Itoa(seat)
}

func closerLabel(closer int) string {
	if closer < 0 {
		return pterm.LightRed("stalled")
	}
	return seatLabel(closer)
}

// resultsTable has one row per game: rounds, each seat's total, flagged and leader.
func resultsTable(results []simResult) pterm.TableData {
	header := []string{"Game", "Seed", "Rounds"}
	for seat := 0; seat < models.NumSeats; seat++ {
		header = append(header, seatLabel(seat))
	}
	header = append(header, "Flagged", "Leader")

	data := pterm.TableData{header}
	for _, r := range results {
		totals := make([]int, models.NumSeats)
		for _, st := range r.Result.Outcome.Standings {
			totals[st.Seat] = st.TotalPts
		}
		row := []string{strconv.Itoa(r.Index), strconv.FormatInt(r.Seed, 10), strconv.Itoa(r.Result.Rounds)}
		for seat, total := range totals {
			cell := strconv.Itoa(total)
			switch seat {
			case r.Result.Outcome.Flagged:
				cell = pterm.LightRed(cell)
			case r.Result.Outcome.Leader:
				cell = pterm.LightGreen(cell)
			}
			row = append(row, cell)
		}
		row = append(row, seatLabel(r.Result.Outcome.Flagged), seatLabel(r.Result.Outcome.Leader))
		data = append(data, row)
	}
	return data
}

func printResults(results []simResult) error {
	pterm.DefaultSection.Println("Results")
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(resultsTable(results)).Render()
}

// printRounds shows every round of a single game with the closer and each seat's points.
func printRounds(r simResult) {
	pterm.DefaultSection.Printfln("Game %d rounds", r.Index)
	data := pterm.TableData{{"Round", "Turns", "Closer", "Points", "Totals"}}
	for _, s := range r.Rounds {
		var pts, totals string
		for i, res := range s.Results {
			if i > 0 {
				pts += " / "
				totals += " / "
			}
			pts += strconv.Itoa(res.RoundPts)
			totals += strconv.Itoa(res.TotalPts)
		}
		data = append(data, []string{strconv.Itoa(s.Round), strconv.Itoa(s.Turns), closerLabel(s.Closer), pts, totals})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// summary aggregates a batch of games.
type summary struct {
	Games     int
	AvgRounds float64
	Leads     [models.NumSeats]int
	Flags     [models.NumSeats]int
	Stalled   int
	// Ratings rates each seat over the batch, games taken in order.
	Ratings []rating.Rating
}

func summarize(results []simResult) summary {
	s := summary{Games: len(results)}
	table := rating.NewTable(models.NumSeats)
	rounds := 0
	for _, r := range results {
		totals := make([]int, models.NumSeats)
		for _, st := range r.Result.Outcome.Standings {
			totals[st.Seat] = st.TotalPts
		}
		if err := table.Record(totals); err != nil {
			pterm.Warning.Printfln("game %d not rated: %v", r.Index, err)
		}

		rounds += r.Result.Rounds
		s.Leads[r.Result.Outcome.Leader]++
		s.Flags[r.Result.Outcome.Flagged]++
		for _, rs := range r.Rounds {
			if rs.Closer < 0 {
				s.Stalled++
			}
		}
	}
	s.Ratings = table.Ratings
	if s.Games > 0 {
		s.AvgRounds = float64(rounds) / float64(s.Games)
	}
	return s
}

func printSummary(results []simResult) {
	s := summarize(results)
	text := pterm.Sprintfln("Games played: %d", s.Games)
	text += pterm.Sprintfln("Average rounds: %.2f", s.AvgRounds)
	text += pterm.Sprintfln("Stalled rounds: %d", s.Stalled)
	for seat := 0; seat < models.NumSeats; seat++ {
		r := s.Ratings[seat]
		text += pterm.Sprintfln("%s led %d, flagged %d, rating %.0f ± %.0f",
			pterm.LightCyan(seatLabel(seat)), s.Leads[seat], s.Flags[seat], r.Elo, 2*r.RD)
	}
	pbox := pterm.DefaultBox.WithLeftPadding(4).WithRightPadding(4).WithTopPadding(1).WithBottomPadding(1)
	pbox.WithTitle(pterm.LightYellow("|SUMMARY|")).WithTitleTopCenter().Println(text)
}
