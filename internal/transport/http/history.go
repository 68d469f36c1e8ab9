package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindmash/backend/internal/repository/postgres"
)

const historyPageSize = 20

// HistoryHandler serves a user's finished matches. Nil MatchRepo means
// history recording is disabled (no Postgres configured).
type HistoryHandler struct {
	Matches *postgres.MatchRepo
}

func NewHistoryHandler(matches *postgres.MatchRepo) *HistoryHandler {
	return &HistoryHandler{Matches: matches}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.Matches == nil {
		c.JSON(http.StatusOK, gin.H{"matches": []struct{}{}})
		return
	}

	userID := c.GetString("user_id")
	records, err := h.Matches.HistoryForUser(userID, historyPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": records})
}
