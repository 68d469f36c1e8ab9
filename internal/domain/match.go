package domain

import "time"

// MatchRecord is a finished match as persisted to history. Winner is nil
// for a draw.
type MatchRecord struct {
	RoomID     string          `json:"roomId"`
	Users      []MatchOverUser `json:"users"`
	Winner     *string         `json:"winner"`
	CreatedAt  time.Time       `json:"createdAt"`
	FinishedAt time.Time       `json:"finishedAt"`
}
