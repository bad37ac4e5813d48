package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/badal-community/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	admin.POST("/login", h.adminLogin)

	authed := admin.Group("", h.adminIdentityMiddleware)
	authed.POST("/invite", h.adminInvite)
	authed.GET("/email-log", h.adminEmailLog)
	authed.POST("/sweeps/:name/run", h.adminRunSweep)
}

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

type adminLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
} // @name AdminLoginResponse

// @Summary Operator login
// @Tags admin
// @Accept json
// @Produce json
// @Param input body adminLoginRequest true "credentials"
// @Success 200 {object} adminLoginResponse
// @Failure 400,401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /admin/login [post]
func (h *Handler) adminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	token, ttl, err := h.services.Admin.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, adminLoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(ttl / time.Second),
	})
}

type adminInviteRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
}

// @Summary Send the initial form link to a recipient
// @Tags admin
// @Security AdminAuth
// @Accept json
// @Produce json
// @Param input body adminInviteRequest true "recipient id"
// @Success 200
// @Failure 400,404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /admin/invite [post]
func (h *Handler) adminInvite(c *gin.Context) {
	var req adminInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "invalid recipient id"})
		return
	}

	if err := h.services.Admin.InviteRecipient(c.Request.Context(), recipientID); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type emailLogEntryResponse struct {
	OwnerID   string    `json:"owner_id"`
	Recipient string    `json:"recipient"`
	EmailType string    `json:"email_type"`
	Success   bool      `json:"success"`
	SentAt    time.Time `json:"sent_at"`
} // @name EmailLogEntryResponse

// @Summary List recent email send attempts
// @Tags admin
// @Security AdminAuth
// @Produce json
// @Param limit query int false "max entries, default 100"
// @Success 200 {array} emailLogEntryResponse
// @Failure 500 {object} ErrorStruct
// @Router /admin/email-log [get]
func (h *Handler) adminEmailLog(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.services.Admin.EmailLog(c.Request.Context(), limit)
	if err != nil {
		errorResponse(c, err)
		return
	}

	out := make([]emailLogEntryResponse, len(entries))
	for i, entry := range entries {
		out[i] = emailLogEntryResponse{
			OwnerID:   entry.OwnerID.String(),
			Recipient: entry.Recipient,
			EmailType: string(entry.EmailType),
			Success:   entry.Success,
			SentAt:    entry.SentAt,
		}
	}

	c.JSON(http.StatusOK, out)
}

type sweepRunResponse struct {
	Processed int `json:"processed"`
	Deferred  int `json:"deferred"`
	Absorbed  int `json:"absorbed"`
	Resent    int `json:"resent"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
} // @name SweepRunResponse

// @Summary Run one sweep immediately
// @Tags admin
// @Security AdminAuth
// @Produce json
// @Param name path string true "sweep name" Enums(never-opened, stale-activation, deferred-resend, retention)
// @Success 200 {object} sweepRunResponse
// @Failure 400 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /admin/sweeps/{name}/run [post]
func (h *Handler) adminRunSweep(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Param("name") {
	case "never-opened":
		stats, err := h.services.Sweeps.RunNeverOpened(ctx)
		if err != nil {
			errorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepStatsResponse(stats))
	case "stale-activation":
		stats, err := h.services.Sweeps.RunStaleActivation(ctx)
		if err != nil {
			errorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepStatsResponse(stats))
	case "deferred-resend":
		stats, err := h.services.Sweeps.RunDeferredResend(ctx)
		if err != nil {
			errorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepStatsResponse(stats))
	case "retention":
		deleted, err := h.services.Sweeps.RunRetention(ctx)
		if err != nil {
			errorResponse(c, err)
			return
		}
		c.JSON(http.StatusOK, sweepRunResponse{Processed: int(deleted)})
	default:
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorStruct{Message: "unknown sweep"})
	}
}

func sweepStatsResponse(stats *service.SweepStats) sweepRunResponse {
	return sweepRunResponse{
		Processed: stats.Processed,
		Deferred:  stats.Deferred,
		Absorbed:  stats.Absorbed,
		Resent:    stats.Resent,
		Skipped:   stats.Skipped,
		Errors:    stats.Errors,
	}
}
