package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mindmash/backend/internal/domain"
)

// MatchRepo persists finished matches. It satisfies the coordinator's
// MatchRepository interface.
type MatchRepo struct {
	DB *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{DB: db}
}

// SaveMatch records one finished match with its full per-user round
// breakdown as jsonb.
func (r *MatchRepo) SaveMatch(record domain.MatchRecord) error {
	usersJSON, err := json.Marshal(record.Users)
	if err != nil {
		return fmt.Errorf("failed to marshal match users: %v", err)
	}

	var winner sql.NullString
	if record.Winner != nil {
		winner = sql.NullString{String: *record.Winner, Valid: true}
	}

	query := `
	INSERT INTO matches (room_code, users, winner, created_at, finished_at)
	VALUES ($1, $2, $3, $4, $5);
	`
	if _, err := r.DB.Exec(query, record.RoomID, usersJSON, winner, record.CreatedAt, record.FinishedAt); err != nil {
		return fmt.Errorf("failed to insert match record: %v", err)
	}
	return nil
}

// HistoryForUser returns the most recent finished matches the user appears
// in, newest first.
func (r *MatchRepo) HistoryForUser(userID string, limit int) ([]domain.MatchRecord, error) {
	filter, err := json.Marshal([]map[string]string{{"userId": userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to build history filter: %v", err)
	}

	query := `
	SELECT room_code, users, winner, created_at, finished_at
	FROM matches
	WHERE users @> $1::jsonb
	ORDER BY finished_at DESC
	LIMIT $2;
	`
	rows, err := r.DB.Query(query, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query match history: %v", err)
	}
	defer rows.Close()

	var records []domain.MatchRecord
	for rows.Next() {
		var record domain.MatchRecord
		var usersJSON []byte
		var winner sql.NullString

		if err := rows.Scan(&record.RoomID, &usersJSON, &winner, &record.CreatedAt, &record.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %v", err)
		}
		if err := json.Unmarshal(usersJSON, &record.Users); err != nil {
			return nil, fmt.Errorf("failed to decode match users: %v", err)
		}
		if winner.Valid {
			w := winner.String
			record.Winner = &w
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
