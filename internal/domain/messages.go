package domain

// ClientMessage is the single JSON envelope every websocket client event
// arrives in. Fields that don't apply to a given type are left zero.
type ClientMessage struct {
	Type     string  `json:"type"`
	Token    string  `json:"token,omitempty"`
	RoomID   string  `json:"roomId,omitempty"`
	UserID   string  `json:"userId,omitempty"`
	Round    int     `json:"round,omitempty"`
	Accuracy float64 `json:"accuracy,omitempty"`
	TimeMs   int64   `json:"timeMs,omitempty"`
}

// ServerMessage is the envelope for every event the server pushes over a
// websocket. Optional fields are omitted when empty so each event stays
// as small as the client contract expects.
type ServerMessage struct {
	Type    string     `json:"type"`
	Message string     `json:"message,omitempty"`
	RoomID  string     `json:"roomId,omitempty"`
	Problem *Problem   `json:"problem,omitempty"`
	UserID  string     `json:"userId,omitempty"`
	Round   int        `json:"round,omitempty"`
	Result  *MatchOver `json:"result,omitempty"`
}

// RoundResult is a single submitted round: how accurate the solution was
// and how long the player took. Resubmitting a round replaces the value.
type RoundResult struct {
	Accuracy float64 `json:"accuracy"`
	TimeMs   int64   `json:"timeMs"`
}

// MatchOverUser is one user's final line in a match_over event. Rounds only
// contains rounds the user actually submitted.
type MatchOverUser struct {
	UserID string              `json:"userId"`
	Score  int                 `json:"score"`
	Rounds map[int]RoundResult `json:"rounds"`
}

// MatchOver is the terminal payload of a match. Winner is nil for a draw.
type MatchOver struct {
	Users  []MatchOverUser `json:"users"`
	Winner *string         `json:"winner"`
}
