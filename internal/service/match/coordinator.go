package match

import (
	"log"
	"sync"
	"time"

	"github.com/mindmash/backend/internal/domain"
	"github.com/mindmash/backend/pkg/uid"
)

// Sender delivers a message to a single live connection. The websocket hub
// implements it; tests substitute a recording fake.
type Sender interface {
	Send(connID string, message domain.ServerMessage) error
}

// ProblemSource picks the starting problem for a fresh match.
type ProblemSource interface {
	Pick() domain.Problem
}

// MatchRepository persists finished matches. May be nil when history
// recording is disabled.
type MatchRepository interface {
	SaveMatch(record domain.MatchRecord) error
}

// client is the coordinator's view of one live connection.
type client struct {
	identity *domain.Identity
	roomID   string
}

// ticket is the single pending matchmaking request.
type ticket struct {
	connID   string
	identity *domain.Identity
}

// Coordinator owns all matchmaking and match state: the connection
// registry, the single waiting slot, and the room table. One mutex
// serializes every mutation, so handlers may call in from any goroutine
// and no partial update is ever observable.
type Coordinator struct {
	mu       sync.Mutex
	clients  map[string]*client
	waiting  *ticket
	rooms    map[string]*Room
	sender   Sender
	problems ProblemSource
	repo     MatchRepository
}

// NewCoordinator creates a coordinator with an empty ticket slot and an
// empty room table.
func NewCoordinator(sender Sender, problems ProblemSource, repo MatchRepository) *Coordinator {
	return &Coordinator{
		clients:  make(map[string]*client),
		rooms:    make(map[string]*Room),
		sender:   sender,
		problems: problems,
		repo:     repo,
	}
}

// Register adds a freshly connected, still-anonymous connection.
func (c *Coordinator) Register(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[connID] = &client{}
}

// Identify attaches a verified identity to a connection. Credential
// verification happens at the transport layer; a failed verification simply
// never reaches here and the connection stays anonymous.
func (c *Coordinator) Identify(connID string, identity domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl := c.clientLocked(connID)
	cl.identity = &identity
	log.Printf("[MATCH] Connection %s identified as %s (%s)", connID, identity.Username, identity.UserID)
}

// Identity returns the identity attached to a connection, if any.
func (c *Coordinator) Identity(connID string) (domain.Identity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl, ok := c.clients[connID]
	if !ok || cl.identity == nil {
		return domain.Identity{}, false
	}
	return *cl.identity, true
}

// Disconnect cleans up after a closed connection. A held waiting ticket is
// cleared so nobody gets paired with a dead socket; room membership is left
// as-is, sends to the gone connection just drop.
func (c *Coordinator) Disconnect(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waiting != nil && c.waiting.connID == connID {
		c.waiting = nil
		log.Printf("[QUEUE] Waiting connection %s disconnected, ticket cleared", connID)
	}
	delete(c.clients, connID)
}

// Enqueue asks for a match. If someone else is waiting the two are paired
// into a new room; otherwise the caller becomes the sole waiter. Calling
// again while already waiting just re-acks, a connection is never paired
// with itself.
func (c *Coordinator) Enqueue(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cl := c.clientLocked(connID)

	if c.waiting == nil || c.waiting.connID == connID {
		c.waiting = &ticket{connID: connID, identity: cl.identity}
		c.send(connID, domain.ServerMessage{Type: "queued"})
		log.Printf("[QUEUE] Connection %s waiting", connID)
		return
	}

	other := c.waiting
	c.waiting = nil

	code := uid.RoomCode()
	room := newRoom(code, other.connID, connID)
	c.rooms[code] = room
	if oc, ok := c.clients[other.connID]; ok {
		oc.roomID = code
	}
	cl.roomID = code

	problem := c.problems.Pick()
	log.Printf("[QUEUE] Paired %s with %s in room %s (problem %s)", other.connID, connID, code, problem.ID)

	found := domain.ServerMessage{Type: "match_found", RoomID: code, Problem: &problem}
	c.send(other.connID, found)
	c.send(connID, found)
}

// CancelQueue clears the waiting ticket, but only for its owner.
func (c *Coordinator) CancelQueue(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waiting == nil || c.waiting.connID != connID {
		return
	}
	c.waiting = nil
	c.send(connID, domain.ServerMessage{Type: "queue_canceled"})
	log.Printf("[QUEUE] Connection %s canceled", connID)
}

// JoinRoom adds a connection to a room's broadcast group, creating the room
// if the code is client-supplied. Membership is not capped at two; extra
// joiners are announced like any other.
func (c *Coordinator) JoinRoom(connID, code string) {
	if code == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cl := c.clientLocked(connID)
	room, ok := c.rooms[code]
	if !ok {
		room = newRoom(code)
		c.rooms[code] = room
		log.Printf("[MATCH] Room %s created by direct join", code)
	}

	for _, member := range room.members {
		if member == connID {
			return
		}
	}
	for _, member := range room.members {
		c.send(member, domain.ServerMessage{Type: "player_joined"})
	}
	room.members = append(room.members, connID)
	cl.roomID = code
}

// WinAttempt is the legacy direct-room finish: the submitter is confirmed
// the winner and everyone else in the room is told they lost.
func (c *Coordinator) WinAttempt(connID, roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if room, ok := c.rooms[roomID]; ok {
		for _, member := range room.members {
			if member == connID {
				continue
			}
			c.send(member, domain.ServerMessage{Type: "opponent_won"})
		}
	}
	c.send(connID, domain.ServerMessage{Type: "winner_confirmed"})
}

// SubmitRoundResult records one round for one user and runs the finish
// rules. Unknown rooms and out-of-range rounds are dropped; accuracy is
// clamped to [0,1]. A resubmitted round replaces the earlier value.
func (c *Coordinator) SubmitRoundResult(roomID, userID string, round int, accuracy float64, timeMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.rooms[roomID]
	if !ok {
		log.Printf("[MATCH] round_result for unknown room %s dropped", roomID)
		return
	}
	if userID == "" {
		log.Printf("[MATCH] round_result without user in room %s dropped", roomID)
		return
	}
	if round < 1 || round > RoundsPerMatch {
		log.Printf("[MATCH] round %d out of range in room %s, dropped", round, roomID)
		return
	}
	if accuracy < 0 {
		accuracy = 0
	} else if accuracy > 1 {
		accuracy = 1
	}

	room.recordResult(userID, round, accuracy, timeMs)
	c.broadcast(room, domain.ServerMessage{Type: "round_progress", UserID: userID, Round: round})

	winner, over := room.evaluate(userID)
	if !over {
		return
	}
	c.finishMatch(room, winner)
}

// finishMatch emits match_over, hands the record off for persistence and
// discards the room. Terminal: the room code is unknown from here on.
func (c *Coordinator) finishMatch(room *Room, winner *string) {
	users := room.scoreboard()
	c.broadcast(room, domain.ServerMessage{
		Type:   "match_over",
		Result: &domain.MatchOver{Users: users, Winner: winner},
	})

	c.saveMatchAsync(domain.MatchRecord{
		RoomID:     room.Code,
		Users:      users,
		Winner:     winner,
		CreatedAt:  room.createdAt,
		FinishedAt: time.Now(),
	})

	delete(c.rooms, room.Code)
	for _, member := range room.members {
		if cl, ok := c.clients[member]; ok && cl.roomID == room.Code {
			cl.roomID = ""
		}
	}

	if winner != nil {
		log.Printf("[MATCH] Room %s finished, winner %s", room.Code, *winner)
	} else {
		log.Printf("[MATCH] Room %s finished in a draw", room.Code)
	}
}

// saveMatchAsync persists in the background so match_over delivery is never
// blocked on the database.
func (c *Coordinator) saveMatchAsync(record domain.MatchRecord) {
	if c.repo == nil {
		return
	}
	go func() {
		if err := c.repo.SaveMatch(record); err != nil {
			log.Printf("[MATCH] Error saving match %s: %v", record.RoomID, err)
		} else {
			log.Printf("[MATCH] Match %s saved", record.RoomID)
		}
	}()
}

// SweepStaleRooms drops rooms older than maxAge in which no member is still
// connected. Finished rooms are removed on the spot, so this only catches
// matches every participant walked away from. Returns the number removed.
func (c *Coordinator) SweepStaleRooms(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for code, room := range c.rooms {
		if room.createdAt.After(cutoff) {
			continue
		}
		alive := false
		for _, member := range room.members {
			if _, ok := c.clients[member]; ok {
				alive = true
				break
			}
		}
		if alive {
			continue
		}
		delete(c.rooms, code)
		removed++
		log.Printf("[MATCH] Stale room %s removed", code)
	}
	return removed
}

func (c *Coordinator) broadcast(room *Room, msg domain.ServerMessage) {
	for _, member := range room.members {
		c.send(member, msg)
	}
}

func (c *Coordinator) send(connID string, msg domain.ServerMessage) {
	if err := c.sender.Send(connID, msg); err != nil {
		log.Printf("[MATCH] Failed to send %s to %s: %v", msg.Type, connID, err)
	}
}

// clientLocked returns the registry entry for a connection, creating it if
// the transport never registered one. Caller must hold c.mu.
func (c *Coordinator) clientLocked(connID string) *client {
	cl, ok := c.clients[connID]
	if !ok {
		cl = &client{}
		c.clients[connID] = cl
	}
	return cl
}
