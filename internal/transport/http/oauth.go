package http

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mindmash/backend/internal/config"
	"github.com/mindmash/backend/internal/repository/mongo"
	"github.com/mindmash/backend/pkg/auth"
	"github.com/mindmash/backend/pkg/uid"
)

// OAuthHandler implements Google sign-in. Callback lands the user on the
// frontend with a freshly issued JWT.
type OAuthHandler struct {
	Users  *mongo.UserRepo
	Config *config.OAuthConfig
}

func NewOAuthHandler(users *mongo.UserRepo, cfg *config.OAuthConfig) *OAuthHandler {
	return &OAuthHandler{Users: users, Config: cfg}
}

// GoogleLogin redirects the user to Google.
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	url := h.Config.GoogleLoginConfig.AuthCodeURL("state")
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the response from Google.
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	frontend := config.AppConfig.FrontendURL

	code := c.Query("code")
	token, err := h.Config.GoogleLoginConfig.Exchange(context.Background(), code)
	if err != nil {
		log.Printf("[OAUTH] Failed to exchange token: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?error=auth_failed")
		return
	}

	userInfo, err := config.GetGoogleUserInfo(token.AccessToken)
	if err != nil {
		log.Printf("[OAUTH] Failed to get user info: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?error=user_info_failed")
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.FindByEmail(ctx, userInfo.Email)
	if err != nil {
		log.Printf("[OAUTH] User lookup failed: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?error=server_error")
		return
	}

	if user != nil {
		// Existing account: auto-link the Google id if it isn't yet.
		if user.GoogleID == "" {
			if err := h.Users.LinkGoogleID(ctx, userInfo.Email, userInfo.ID); err != nil {
				log.Printf("[OAUTH] Failed to link Google ID: %v", err)
			}
		}
	} else {
		username := h.pickUsername(ctx, userInfo)
		user, err = h.Users.Create(ctx, username, userInfo.Email, "", userInfo.ID)
		if err != nil {
			log.Printf("[OAUTH] Failed to create user: %v", err)
			c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?error=server_error")
			return
		}
		log.Printf("[OAUTH] Created account %s for %s", username, userInfo.Email)
	}

	jwtToken, err := auth.GenerateJWT(user.ID.Hex(), user.Username)
	if err != nil {
		log.Printf("[OAUTH] Failed to generate token: %v", err)
		c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?error=server_error")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, frontend+"/login?token="+jwtToken)
}

// pickUsername derives a username from the Google profile, de-colliding
// with a random suffix when taken.
func (h *OAuthHandler) pickUsername(ctx context.Context, userInfo *config.GoogleUser) string {
	base := strings.ToLower(strings.ReplaceAll(userInfo.Name, " ", ""))
	if base == "" {
		base = strings.SplitN(userInfo.Email, "@", 2)[0]
	}

	existing, err := h.Users.FindByUsername(ctx, base)
	if err == nil && existing == nil {
		return base
	}
	return base + uid.Suffix(4)
}
