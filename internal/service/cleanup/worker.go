package cleanup

import (
	"log"
	"time"

	"github.com/mindmash/backend/internal/service/match"
)

// Worker sweeps abandoned match rooms in the background. Rooms are normally
// removed when a match finishes; the sweeper only catches rooms whose
// participants all disconnected mid-match.
type Worker struct {
	Coordinator *match.Coordinator
	MaxRoomAge  time.Duration
	Interval    time.Duration
}

func NewWorker(coordinator *match.Coordinator) *Worker {
	return &Worker{
		Coordinator: coordinator,
		MaxRoomAge:  2 * time.Hour,
		Interval:    15 * time.Minute,
	}
}

// Start initiates the background ticker
func (w *Worker) Start() {
	go w.runCleanup()

	ticker := time.NewTicker(w.Interval)
	go func() {
		for range ticker.C {
			w.runCleanup()
		}
	}()
	log.Println("[CLEANUP] Background worker started")
}

func (w *Worker) runCleanup() {
	removed := w.Coordinator.SweepStaleRooms(w.MaxRoomAge)
	if removed > 0 {
		log.Printf("[CLEANUP] Removed %d abandoned rooms", removed)
	}
}
