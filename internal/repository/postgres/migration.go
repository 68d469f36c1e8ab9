package postgres

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS matches (
	id          BIGSERIAL PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	users       JSONB       NOT NULL,
	winner      TEXT,
	created_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_matches_users ON matches USING gin (users);
CREATE INDEX IF NOT EXISTS idx_matches_finished_at ON matches (finished_at DESC);
`

// RunMigrations initializes the match-history schema. Idempotent.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %v", err)
	}
	return nil
}
