package match

import (
	"sync"
	"testing"
	"time"

	"github.com/mindmash/backend/internal/domain"
)

type fakeSender struct {
	mu   sync.Mutex
	sent map[string][]domain.ServerMessage
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[string][]domain.ServerMessage)}
}

func (f *fakeSender) Send(connID string, msg domain.ServerMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[connID] = append(f.sent[connID], msg)
	return nil
}

func (f *fakeSender) countType(connID, typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msg := range f.sent[connID] {
		if msg.Type == typ {
			n++
		}
	}
	return n
}

func (f *fakeSender) lastOfType(connID, typ string) (domain.ServerMessage, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.sent[connID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == typ {
			return msgs[i], true
		}
	}
	return domain.ServerMessage{}, false
}

type fixedProblems struct{}

func (fixedProblems) Pick() domain.Problem {
	return domain.Problem{ID: "factorial-5", Title: "Factorial of 5", ExpectedOutput: "120"}
}

type recordingRepo struct {
	records chan domain.MatchRecord
}

func (r *recordingRepo) SaveMatch(record domain.MatchRecord) error {
	r.records <- record
	return nil
}

func newTestCoordinator(repo MatchRepository) (*Coordinator, *fakeSender) {
	sender := newFakeSender()
	return NewCoordinator(sender, fixedProblems{}, repo), sender
}

// pair queues two connections and returns the room code they were matched
// into.
func pair(t *testing.T, c *Coordinator, s *fakeSender, a, b string) string {
	t.Helper()
	c.Register(a)
	c.Register(b)
	c.Enqueue(a)
	c.Enqueue(b)

	msg, ok := s.lastOfType(a, "match_found")
	if !ok {
		t.Fatal("first player never received match_found")
	}
	other, ok := s.lastOfType(b, "match_found")
	if !ok {
		t.Fatal("second player never received match_found")
	}
	if msg.RoomID == "" || msg.RoomID != other.RoomID {
		t.Fatalf("players matched into different rooms: %q vs %q", msg.RoomID, other.RoomID)
	}
	if msg.Problem == nil {
		t.Fatal("match_found carried no starting problem")
	}
	return msg.RoomID
}

func TestEnqueuePairsTwoWaiters(t *testing.T) {
	c, s := newTestCoordinator(nil)

	c.Register("c1")
	c.Enqueue("c1")
	if got := s.countType("c1", "queued"); got != 1 {
		t.Fatalf("expected sole waiter to be acked queued once, got %d", got)
	}

	c.Register("c2")
	c.Enqueue("c2")
	if _, ok := s.lastOfType("c1", "match_found"); !ok {
		t.Fatal("waiter did not receive match_found")
	}
	if _, ok := s.lastOfType("c2", "match_found"); !ok {
		t.Fatal("joiner did not receive match_found")
	}
}

func TestEnqueueIsIdempotent(t *testing.T) {
	c, s := newTestCoordinator(nil)

	c.Register("c1")
	c.Enqueue("c1")
	c.Enqueue("c1")

	if got := s.countType("c1", "match_found"); got != 0 {
		t.Fatalf("connection paired with itself: %d match_found messages", got)
	}
	if got := s.countType("c1", "queued"); got != 2 {
		t.Fatalf("expected duplicate enqueue to re-ack, got %d acks", got)
	}

	// Still a valid waiter: next joiner pairs immediately.
	c.Register("c2")
	c.Enqueue("c2")
	if _, ok := s.lastOfType("c1", "match_found"); !ok {
		t.Fatal("waiter was lost after duplicate enqueue")
	}
}

func TestThirdConnectionBecomesNewWaiter(t *testing.T) {
	c, s := newTestCoordinator(nil)
	pair(t, c, s, "c1", "c2")

	c.Register("c3")
	c.Enqueue("c3")
	if got := s.countType("c3", "queued"); got != 1 {
		t.Fatalf("expected third connection to become sole waiter, got %d queued acks", got)
	}
	if got := s.countType("c3", "match_found"); got != 0 {
		t.Fatalf("third connection unexpectedly matched: %d", got)
	}
}

func TestCancelQueue(t *testing.T) {
	c, s := newTestCoordinator(nil)

	c.Register("c1")
	c.Enqueue("c1")
	c.CancelQueue("c1")
	if got := s.countType("c1", "queue_canceled"); got != 1 {
		t.Fatalf("expected cancel ack, got %d", got)
	}

	// Queue is empty again: the next enqueue waits instead of pairing.
	c.Register("c2")
	c.Enqueue("c2")
	if got := s.countType("c2", "match_found"); got != 0 {
		t.Fatal("new joiner was paired with a canceled ticket")
	}
}

func TestCancelQueueNotOwnerIsNoop(t *testing.T) {
	c, s := newTestCoordinator(nil)

	c.Register("c1")
	c.Enqueue("c1")
	c.Register("c2")
	c.CancelQueue("c2")

	if got := s.countType("c2", "queue_canceled"); got != 0 {
		t.Fatal("non-owner received a cancel ack")
	}

	// c1's ticket must be intact: c3 pairs with c1.
	c.Register("c3")
	c.Enqueue("c3")
	if _, ok := s.lastOfType("c1", "match_found"); !ok {
		t.Fatal("owner's ticket was cleared by someone else's cancel")
	}
}

func TestDisconnectClearsTicket(t *testing.T) {
	c, s := newTestCoordinator(nil)

	c.Register("c1")
	c.Enqueue("c1")
	c.Disconnect("c1")

	c.Register("c2")
	c.Enqueue("c2")
	if got := s.countType("c2", "match_found"); got != 0 {
		t.Fatal("new joiner was paired with a disconnected ticket")
	}
	if got := s.countType("c2", "queued"); got != 1 {
		t.Fatalf("expected new joiner to become sole waiter, got %d acks", got)
	}
}

func TestEarlyFinishWin(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	c.SubmitRoundResult(room, "alice", 1, 1.0, 1000)
	c.SubmitRoundResult(room, "alice", 2, 1.0, 1000)
	if got := s.countType("c1", "match_over"); got != 0 {
		t.Fatal("match ended before all rounds were in")
	}

	c.SubmitRoundResult(room, "alice", 3, 1.0, 1000)

	for _, conn := range []string{"c1", "c2"} {
		msg, ok := s.lastOfType(conn, "match_over")
		if !ok {
			t.Fatalf("%s did not receive match_over", conn)
		}
		if msg.Result == nil || msg.Result.Winner == nil || *msg.Result.Winner != "alice" {
			t.Fatalf("%s: expected winner alice, got %+v", conn, msg.Result)
		}
		if len(msg.Result.Users) != 1 {
			t.Fatalf("%s: expected one scored user, got %d", conn, len(msg.Result.Users))
		}
	}

	// Terminal: the room is gone, further submissions are dropped.
	c.SubmitRoundResult(room, "bob", 1, 1.0, 0)
	if got := s.countType("c1", "round_progress"); got != 3 {
		t.Fatalf("closed room still broadcasting: %d progress messages", got)
	}
}

func TestEarlyFinishBeatsIncompleteOpponent(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	// bob is slower: two rounds in when alice finishes her third.
	c.SubmitRoundResult(room, "bob", 1, 1.0, 500)
	c.SubmitRoundResult(room, "alice", 1, 0.2, 500)
	c.SubmitRoundResult(room, "bob", 2, 1.0, 500)
	c.SubmitRoundResult(room, "alice", 2, 0.2, 500)
	c.SubmitRoundResult(room, "alice", 3, 0.2, 500)

	msg, ok := s.lastOfType("c2", "match_over")
	if !ok {
		t.Fatal("match_over not broadcast")
	}
	if msg.Result.Winner == nil || *msg.Result.Winner != "alice" {
		t.Fatalf("expected first finisher alice to win outright, got %+v", msg.Result.Winner)
	}
	// Both users appear, bob scored over his two submitted rounds.
	if len(msg.Result.Users) != 2 {
		t.Fatalf("expected both users in scoreboard, got %d", len(msg.Result.Users))
	}
	for _, u := range msg.Result.Users {
		if u.UserID == "bob" && len(u.Rounds) != 2 {
			t.Fatalf("expected bob's partial rounds, got %d", len(u.Rounds))
		}
	}
}

func TestDuplicateRoundOverwrites(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	c.SubmitRoundResult(room, "alice", 1, 0.5, 60000)
	c.SubmitRoundResult(room, "alice", 1, 1.0, 0) // resubmission replaces
	c.SubmitRoundResult(room, "alice", 2, 1.0, 0)
	c.SubmitRoundResult(room, "alice", 3, 1.0, 0)

	msg, _ := s.lastOfType("c1", "match_over")
	if msg.Result == nil || len(msg.Result.Users) != 1 {
		t.Fatalf("unexpected match_over payload: %+v", msg.Result)
	}
	if got := msg.Result.Users[0].Score; got != 450 {
		t.Fatalf("expected score 450 from latest submissions, got %d", got)
	}
}

func TestRoundValidation(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	c.SubmitRoundResult(room, "alice", 0, 1.0, 0)
	c.SubmitRoundResult(room, "alice", 4, 1.0, 0)
	if got := s.countType("c1", "round_progress"); got != 0 {
		t.Fatalf("out-of-range rounds were recorded: %d progress broadcasts", got)
	}

	// Accuracy above 1 is clamped, not rejected.
	c.SubmitRoundResult(room, "alice", 1, 5.0, 0)
	c.SubmitRoundResult(room, "alice", 2, 1.0, 0)
	c.SubmitRoundResult(room, "alice", 3, 1.0, 0)
	msg, _ := s.lastOfType("c1", "match_over")
	if got := msg.Result.Users[0].Score; got != 450 {
		t.Fatalf("expected clamped score 450, got %d", got)
	}
}

func TestUnknownRoomIgnored(t *testing.T) {
	c, s := newTestCoordinator(nil)
	c.Register("c1")
	c.SubmitRoundResult("NOPE42", "alice", 1, 1.0, 0)
	if got := s.countType("c1", "round_progress"); got != 0 {
		t.Fatal("submission to unknown room produced broadcasts")
	}
}

func TestRoundProgressBroadcast(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	c.SubmitRoundResult(room, "alice", 2, 0.7, 12000)
	for _, conn := range []string{"c1", "c2"} {
		msg, ok := s.lastOfType(conn, "round_progress")
		if !ok {
			t.Fatalf("%s did not receive round_progress", conn)
		}
		if msg.UserID != "alice" || msg.Round != 2 {
			t.Fatalf("%s: unexpected progress payload %+v", conn, msg)
		}
	}
}

func TestJoinRoomPermissiveThirdJoiner(t *testing.T) {
	c, s := newTestCoordinator(nil)
	for _, conn := range []string{"c1", "c2", "c3"} {
		c.Register(conn)
		c.JoinRoom(conn, "ROOM01")
	}

	if got := s.countType("c1", "player_joined"); got != 2 {
		t.Fatalf("first member should hear both later joiners, got %d", got)
	}
	if got := s.countType("c2", "player_joined"); got != 1 {
		t.Fatalf("second member should hear the third joiner, got %d", got)
	}
	if got := s.countType("c3", "player_joined"); got != 0 {
		t.Fatalf("third member joined last, expected no broadcasts, got %d", got)
	}

	// Re-joining must not re-announce.
	c.JoinRoom("c2", "ROOM01")
	if got := s.countType("c1", "player_joined"); got != 2 {
		t.Fatal("duplicate join was re-announced")
	}
}

func TestWinAttempt(t *testing.T) {
	c, s := newTestCoordinator(nil)
	c.Register("c1")
	c.Register("c2")
	c.JoinRoom("c1", "ROOM02")
	c.JoinRoom("c2", "ROOM02")

	c.WinAttempt("c1", "ROOM02")
	if got := s.countType("c1", "winner_confirmed"); got != 1 {
		t.Fatalf("submitter not confirmed: %d", got)
	}
	if got := s.countType("c2", "opponent_won"); got != 1 {
		t.Fatalf("opponent not notified: %d", got)
	}
	if got := s.countType("c1", "opponent_won"); got != 0 {
		t.Fatal("submitter received its own loss notification")
	}
}

func TestIdentify(t *testing.T) {
	c, _ := newTestCoordinator(nil)
	c.Register("c1")

	if _, ok := c.Identity("c1"); ok {
		t.Fatal("fresh connection should be anonymous")
	}
	c.Identify("c1", domain.Identity{UserID: "u1", Username: "alice"})
	identity, ok := c.Identity("c1")
	if !ok || identity.Username != "alice" {
		t.Fatalf("identity not attached: %+v ok=%v", identity, ok)
	}
}

func TestMatchRecordSaved(t *testing.T) {
	repo := &recordingRepo{records: make(chan domain.MatchRecord, 1)}
	c, s := newTestCoordinator(repo)
	room := pair(t, c, s, "c1", "c2")

	c.SubmitRoundResult(room, "alice", 1, 1.0, 0)
	c.SubmitRoundResult(room, "alice", 2, 1.0, 0)
	c.SubmitRoundResult(room, "alice", 3, 1.0, 0)

	select {
	case record := <-repo.records:
		if record.RoomID != room {
			t.Fatalf("record for wrong room: %q", record.RoomID)
		}
		if record.Winner == nil || *record.Winner != "alice" {
			t.Fatalf("record winner wrong: %+v", record.Winner)
		}
	case <-time.After(time.Second):
		t.Fatal("match record was never persisted")
	}
}

func TestSweepStaleRooms(t *testing.T) {
	c, s := newTestCoordinator(nil)
	room := pair(t, c, s, "c1", "c2")

	if removed := c.SweepStaleRooms(0); removed != 0 {
		t.Fatalf("room with live members swept: removed %d", removed)
	}

	c.Disconnect("c1")
	c.Disconnect("c2")
	if removed := c.SweepStaleRooms(0); removed != 1 {
		t.Fatalf("abandoned room not swept: removed %d", removed)
	}

	// Gone for good: a late submission is dropped.
	c.SubmitRoundResult(room, "alice", 1, 1.0, 0)
	if got := s.countType("c1", "round_progress"); got != 0 {
		t.Fatalf("swept room still broadcasting, got %d messages", got)
	}
}
