package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id               UUID PRIMARY KEY,
	status           TEXT NOT NULL DEFAULT 'in_progress',
	settings         JSONB,
	rounds           INT NOT NULL DEFAULT 0,
	flagged_player   UUID,
	leader_player    UUID,
	start_time       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time         TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_rounds (
	id         UUID PRIMARY KEY,
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	number     INT NOT NULL,
	closer     INT NOT NULL,
	turns      INT NOT NULL,
	UNIQUE (game_id, number)
);

CREATE TABLE IF NOT EXISTS round_results (
	round_id   UUID NOT NULL REFERENCES game_rounds(id) ON DELETE CASCADE,
	seat       INT NOT NULL,
	player_id  UUID NOT NULL,
	round_pts  INT NOT NULL,
	total_pts  INT NOT NULL,
	hand       JSONB NOT NULL,
	PRIMARY KEY (round_id, seat)
);

CREATE TABLE IF NOT EXISTS game_results (
	game_id    UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	seat       INT NOT NULL,
	player_id  UUID NOT NULL,
	total_pts  INT NOT NULL,
	flagged    BOOLEAN NOT NULL,
	leader     BOOLEAN NOT NULL,
	PRIMARY KEY (game_id, seat)
);

CREATE TABLE IF NOT EXISTS game_actions (
	game_id        UUID NOT NULL,
	round_id       UUID,
	action_index   INT NOT NULL,
	actor_user_id  UUID,
	action_type    TEXT NOT NULL,
	action_payload JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (game_id, action_index)
);
`

// EnsureSchema creates the tables used by the server and the historian.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
