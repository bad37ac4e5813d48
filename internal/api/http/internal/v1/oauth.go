package v1

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
)

const oauthStateCookie = "discord_oauth_state"

func (h *Handler) initOAuthRoutes(api *gin.RouterGroup) {
	oauth := api.Group("/form/oauth")
	oauth.GET("/begin", h.oauthBegin)
	oauth.GET("/callback", h.oauthCallback)
}

type oauthBeginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
} // @name OAuthBeginResponse

// @Summary Start the Discord sign-in round-trip
// @Tags oauth
// @Produce json
// @Param token query string true "link token"
// @Success 200 {object} oauthBeginResponse
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/oauth/begin [get]
func (h *Handler) oauthBegin(c *gin.Context) {
	linkToken := c.Query("token")
	if linkToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "token is required"})
		return
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorStruct{Message: MsgInternalError})
		return
	}
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	url, err := h.services.Form.BeginOAuth(c.Request.Context(), linkToken, state)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", true, true)
	c.SetCookie(oauthStateCookie+"_token", linkToken, 600, "/", "", true, true)

	c.JSON(http.StatusOK, oauthBeginResponse{AuthorizationURL: url})
}

type oauthCallbackResponse struct {
	GuildMember bool `json:"guild_member"`
} // @name OAuthCallbackResponse

// @Summary Finish the Discord sign-in round-trip
// @Tags oauth
// @Produce json
// @Param code query string true "authorization code"
// @Param state query string true "opaque state from begin"
// @Success 200 {object} oauthCallbackResponse
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/oauth/callback [get]
func (h *Handler) oauthCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "code and state are required"})
		return
	}

	expectedState, err := c.Cookie(oauthStateCookie)
	if err != nil || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "state mismatch"})
		return
	}

	linkToken, err := c.Cookie(oauthStateCookie + "_token")
	if err != nil || linkToken == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "missing link token cookie"})
		return
	}

	c.SetCookie(oauthStateCookie, "", -1, "/", "", true, true)
	c.SetCookie(oauthStateCookie+"_token", "", -1, "/", "", true, true)

	member, err := h.services.Form.CompleteOAuth(c.Request.Context(), linkToken, code)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, oauthCallbackResponse{GuildMember: member})
}
