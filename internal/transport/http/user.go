package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mindmash/backend/internal/repository/mongo"
)

const leaderboardCacheKey = "leaderboard:top"
const leaderboardSize = 20

// CacheRepository is the small cache surface the user handlers need; nil
// when Redis is disabled.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// UserHandler serves profile, leaderboard and win reporting.
type UserHandler struct {
	Users    *mongo.UserRepo
	Cache    CacheRepository
	CacheTTL time.Duration
}

func NewUserHandler(users *mongo.UserRepo, cache CacheRepository, cacheTTL time.Duration) *UserHandler {
	return &UserHandler{Users: users, Cache: cache, CacheTTL: cacheTTL}
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.Users.FindByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, leaderboardCacheKey); err == nil && cached != "" {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	top, err := h.Users.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		log.Printf("[USER] Leaderboard query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	body, err := json.Marshal(top)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, leaderboardCacheKey, string(body), h.CacheTTL); err != nil {
			log.Printf("[USER] Failed to cache leaderboard: %v", err)
		}
	}

	c.Data(http.StatusOK, "application/json", body)
}

// MatchWin bumps the caller's wins and rating. The coordinator doesn't
// touch persistent points; clients report wins through this endpoint.
func (h *UserHandler) MatchWin(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.Users.RecordWin(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// The cached leaderboard is stale now.
	if h.Cache != nil {
		if err := h.Cache.Del(c.Request.Context(), leaderboardCacheKey); err != nil {
			log.Printf("[USER] Failed to invalidate leaderboard cache: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"rating": user.Rating, "wins": user.Wins})
}
