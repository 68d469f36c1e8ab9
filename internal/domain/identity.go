package domain

// Identity is the authenticated user attached to a live connection.
// Connections without one are anonymous; they may still queue and join
// rooms, but round results need a user to score against.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
}
