// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/chinchon/internal/game"
)

// UpsertGame stores the game row with the rules it is played under.
func UpsertGame(ctx context.Context, pool *pgxpool.Pool, gameID uuid.UUID, settings game.Settings) error {
	js, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	q := `
		INSERT INTO games (id, status, settings, start_time)
		VALUES ($1, 'in_progress', $2, NOW())
		ON CONFLICT (id) DO UPDATE SET settings = EXCLUDED.settings
	`
	if _, err := pool.Exec(ctx, q, gameID, js); err != nil {
		return fmt.Errorf("upsert game %s: %w", gameID, err)
	}
	return nil
}

// RecordRoundResults persists one scored round and every seat's result in a single transaction.
func RecordRoundResults(ctx context.Context, pool *pgxpool.Pool, gameID uuid.UUID, summary game.RoundSummary) error {
	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status)
			VALUES ($1, 'in_progress')
			ON CONFLICT (id) DO NOTHING
		`
		if _, e := tx.Exec(ctx, upsertGame, gameID); e != nil {
			return e
		}

		insRound := `
			INSERT INTO game_rounds (id, game_id, number, closer, turns)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`
		if _, e := tx.Exec(ctx, insRound, summary.RoundID, gameID, summary.Round, summary.Closer, summary.Turns); e != nil {
			return e
		}

		for _, r := range summary.Results {
			hand, e := json.Marshal(r.Hand)
			if e != nil {
				return e
			}
			q := `
				INSERT INTO round_results (round_id, seat, player_id, round_pts, total_pts, hand)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (round_id, seat)
				DO UPDATE SET round_pts=$4, total_pts=$5, hand=$6
			`
			if _, e2 := tx.Exec(ctx, q, summary.RoundID, r.Seat, r.PlayerID, r.RoundPts, r.TotalPts, hand); e2 != nil {
				return e2
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx record round %d: %w", summary.Round, err)
	}
	return nil
}

// RecordGameOutcome marks the game completed and stores the final standing of every seat.
func RecordGameOutcome(ctx context.Context, pool *pgxpool.Pool, gameID uuid.UUID, result game.GameResult) error {
	totals := make(map[int]int, len(result.Outcome.Standings))
	for _, st := range result.Outcome.Standings {
		totals[st.Seat] = st.TotalPts
	}
	flagged, leader := result.FlaggedPlayer(), result.LeaderPlayer()

	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upd := `
			INSERT INTO games (id, status, rounds, flagged_player, leader_player, end_time)
			VALUES ($1, 'completed', $2, $3, $4, NOW())
			ON CONFLICT (id) DO UPDATE
			SET status='completed', rounds=$2, flagged_player=$3, leader_player=$4, end_time=NOW()
		`
		if _, e := tx.Exec(ctx, upd, gameID, result.Rounds, flagged.ID, leader.ID); e != nil {
			return e
		}
		for _, p := range result.Players {
			q := `
				INSERT INTO game_results (game_id, seat, player_id, total_pts, flagged, leader)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game_id, seat)
				DO UPDATE SET total_pts=$4, flagged=$5, leader=$6
			`
			if _, e2 := tx.Exec(ctx, q, gameID, p.Seat, p.ID, totals[p.Seat], p.Seat == flagged.Seat, p.Seat == leader.Seat); e2 != nil {
				return e2
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx record game outcome: %w", err)
	}
	return nil
}
