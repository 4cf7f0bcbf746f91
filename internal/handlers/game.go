// internal/handlers/game.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jason-s-yu/chinchon/internal/engine"
	"github.com/jason-s-yu/chinchon/internal/game"
	"github.com/jason-s-yu/chinchon/internal/models"
)

type analyzeRequest struct {
	Hand           []models.Card `json:"hand"`
	FlexibleEnding bool          `json:"flexibleEnding"`
}

type analyzeResponse struct {
	Slots      engine.Slots  `json:"slots"`
	Missing    []models.Card `json:"missing"`
	Advice     int           `json:"advice"`
	AdviceName string        `json:"adviceName"`
	RoundPts   int           `json:"roundPts"`
	// DiscardIdx is the card a bot would throw, or -1 for an empty hand.
	DiscardIdx int  `json:"discardIdx"`
	Cached     bool `json:"cached"`
}

type scoreRequest struct {
	Hand  []models.Card `json:"hand"`
	Slots *engine.Slots `json:"slots,omitempty"`
}

type createSimRequest struct {
	Settings map[string]interface{} `json:"settings,omitempty"`
	Seed     int64                  `json:"seed,omitempty"`
}

var errDuplicateCard = errors.New("duplicate card")

// validateHand rejects out-of-range and repeated cards.
func validateHand(hand []models.Card) error {
	var seen engine.CardSet
	for i, c := range hand {
		if !c.Valid() {
			return fmt.Errorf("card %d: invalid card suit=%d rank=%d", i, c.Suit, c.Rank)
		}
		if seen.Contains(c) {
			return fmt.Errorf("card %d (%s): %w", i, c, errDuplicateCard)
		}
		seen.Add(c)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// AnalyzeHandler serves POST /engine/analyze.
func AnalyzeHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := validateHand(req.Hand); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, hit := gs.analyze(req.Hand, req.FlexibleEnding)
		idx, ok := engine.ChooseDiscard(req.Hand, res.Slots)
		if !ok {
			idx = -1
		}
		writeJSON(w, http.StatusOK, analyzeResponse{
			Slots:      res.Slots,
			Missing:    res.Missing.Cards(),
			Advice:     int(res.Advice),
			AdviceName: res.Advice.String(),
			RoundPts:   engine.RoundPoints(req.Hand, res.Slots),
			DiscardIdx: idx,
			Cached:     hit,
		})
	}
}

// ScoreHandler serves POST /engine/score. Slots are derived from the hand when absent.
func ScoreHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		if err := validateHand(req.Hand); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var slots engine.Slots
		if req.Slots != nil {
			slots = *req.Slots
			held := engine.NewCardSet(req.Hand...)
			var used engine.CardSet
			for i, s := range slots {
				if len(s.Cards) > engine.MaxComboCards {
					http.Error(w, fmt.Sprintf("slot %d holds %d cards, at most %d allowed", i, len(s.Cards), engine.MaxComboCards), http.StatusBadRequest)
					return
				}
				for _, c := range s.Cards {
					if !held.Contains(c) {
						http.Error(w, fmt.Sprintf("slot card %s is not in hand", c), http.StatusBadRequest)
						return
					}
					// A card melds at most once across both slots.
					if used.Contains(c) {
						http.Error(w, fmt.Sprintf("slot card %s is used twice", c), http.StatusBadRequest)
						return
					}
					used.Add(c)
				}
			}
		} else {
			res, _ := gs.analyze(req.Hand, false)
			slots = res.Slots
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"roundPts": engine.RoundPoints(req.Hand, slots),
			"slots":    slots,
		})
	}
}

// CreateSimHandler serves POST /sim/create. Settings start from the server defaults.
func CreateSimHandler(gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req createSimRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid body", http.StatusBadRequest)
				return
			}
		}
		settings, err := game.ParseRules(req.Settings, gs.Defaults)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		g := gs.NewSimulation(settings, req.Seed)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"game_id":  g.ID,
			"settings": settings,
		})
	}
}
