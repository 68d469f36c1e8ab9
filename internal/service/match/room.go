package match

import (
	"math"
	"sort"
	"time"

	"github.com/mindmash/backend/internal/domain"
)

// RoundsPerMatch is the fixed number of rounds in a duel.
const RoundsPerMatch = 3

// Room is one match in progress: the broadcast group and each user's
// submitted rounds. Rooms are created by pairing or by direct join and
// discarded the moment the match resolves.
type Room struct {
	Code      string
	members   []string
	progress  map[string]map[int]domain.RoundResult
	createdAt time.Time
}

func newRoom(code string, members ...string) *Room {
	return &Room{
		Code:      code,
		members:   members,
		progress:  make(map[string]map[int]domain.RoundResult),
		createdAt: time.Now(),
	}
}

// recordResult stores a round for a user, replacing any earlier submission
// for the same round. Last write wins.
func (r *Room) recordResult(userID string, round int, accuracy float64, timeMs int64) {
	rounds, ok := r.progress[userID]
	if !ok {
		rounds = make(map[int]domain.RoundResult)
		r.progress[userID] = rounds
	}
	rounds[round] = domain.RoundResult{Accuracy: accuracy, TimeMs: timeMs}
}

// evaluate applies the finish rules after a submission by submitter. It
// returns the winning user (nil for a draw) and whether the match is over.
//
// The first user to complete every round wins outright while any opponent
// still has rounds missing; a score comparison only happens when everyone
// known to the room has finished.
func (r *Room) evaluate(submitter string) (winner *string, over bool) {
	if !r.complete(submitter) {
		return nil, false
	}

	sawOther := false
	othersAllComplete := true
	othersAllIncomplete := true
	for user := range r.progress {
		if user == submitter {
			continue
		}
		sawOther = true
		if r.complete(user) {
			othersAllIncomplete = false
		} else {
			othersAllComplete = false
		}
	}

	if !sawOther || othersAllIncomplete {
		// First-finisher auto-win: the submitter crossed the line before
		// anyone else, no score comparison.
		w := submitter
		return &w, true
	}

	if !othersAllComplete {
		return nil, false
	}

	// Everyone has all rounds in. Strictly highest score wins, an exact
	// shared maximum is a draw.
	bestScore := -1
	tie := false
	for user, rounds := range r.progress {
		score := scoreRounds(rounds)
		if score > bestScore {
			bestScore = score
			u := user
			winner = &u
			tie = false
		} else if score == bestScore {
			tie = true
		}
	}
	if tie {
		return nil, true
	}
	return winner, true
}

// complete reports whether a user has submitted every round.
func (r *Room) complete(userID string) bool {
	rounds := r.progress[userID]
	for round := 1; round <= RoundsPerMatch; round++ {
		if _, ok := rounds[round]; !ok {
			return false
		}
	}
	return true
}

// scoreboard builds the per-user final lines, scored over whatever rounds
// each user actually submitted. Sorted by user id for stable output.
func (r *Room) scoreboard() []domain.MatchOverUser {
	users := make([]domain.MatchOverUser, 0, len(r.progress))
	for user, rounds := range r.progress {
		users = append(users, domain.MatchOverUser{
			UserID: user,
			Score:  scoreRounds(rounds),
			Rounds: rounds,
		})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}

// scoreRounds sums per-round points: up to 100 for accuracy plus a time
// bonus that starts at 50 and runs out at 50 seconds.
func scoreRounds(rounds map[int]domain.RoundResult) int {
	total := 0
	for _, res := range rounds {
		bonus := 50 - float64(res.TimeMs)/1000
		if bonus < 0 {
			bonus = 0
		}
		total += int(math.Round(100*res.Accuracy + bonus))
	}
	return total
}
