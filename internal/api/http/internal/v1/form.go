package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/badal-community/backend/internal/domain"
	"github.com/badal-community/backend/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) initFormRoutes(api *gin.RouterGroup) {
	form := api.Group("/form")
	form.POST("/activate", h.formActivate)
	form.GET("/validate/:token", h.formValidate)
	form.POST("/verify-phone", h.formVerifyPhone)
	form.POST("/submit", h.formSubmit)
	form.POST("/defer", h.formDefer)
	form.POST("/optout", h.formOptOut)
	form.POST("/partial", h.formSaveDraft)
	form.GET("/partial/:token", h.formGetDraft)
	form.DELETE("/partial/:token", h.formDeleteDraft)
}

type activateRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}

type activateResponse struct {
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
} // @name ActivateResponse

// @Summary Open a form link
// @Tags form
// @Accept json
// @Produce json
// @Param input body activateRequest true "link token"
// @Success 200 {object} activateResponse
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/activate [post]
func (h *Handler) formActivate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	activation, err := h.services.Form.Activate(c.Request.Context(), req.Token)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, activateResponse{
		ActivatedAt: activation.ActivatedAt,
		ExpiresAt:   activation.ExpiresAt,
	})
}

type validateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
} // @name ValidateResponse

// @Summary Check whether a form link is still actionable
// @Tags form
// @Produce json
// @Param token path string true "link token"
// @Success 200 {object} validateResponse
// @Failure 500 {object} ErrorStruct
// @Router /form/validate/{token} [get]
func (h *Handler) formValidate(c *gin.Context) {
	validation, err := h.services.Form.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, validateResponse{
		Valid:  validation.Valid,
		Reason: validation.Reason,
	})
}

type verifyPhoneRequest struct {
	Token         string `json:"token" binding:"required,max=64"`
	Phone         string `json:"phone" binding:"required,phonenumber"`
	ProviderToken string `json:"provider_token" binding:"required"`
}

// @Summary Verify the claimed phone against the identity provider
// @Tags form
// @Accept json
// @Produce json
// @Param input body verifyPhoneRequest true "claimed phone and provider token"
// @Success 200
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/verify-phone [post]
func (h *Handler) formVerifyPhone(c *gin.Context) {
	var req verifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Form.VerifyPhone(c.Request.Context(), req.Token, req.Phone, req.ProviderToken); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type orgReferenceRequest struct {
	Type string `json:"type" binding:"required,oneof=orgs default custom"`
	ID   string `json:"id" binding:"max=64"`
	Name string `json:"name" binding:"max=200"`
}

type submitRequest struct {
	Token         string              `json:"token" binding:"required,max=64"`
	ProviderToken string              `json:"provider_token" binding:"required"`
	FullName      string              `json:"full_name" binding:"required,max=100"`
	Email         string              `json:"email" binding:"required,email,max=255"`
	Phone         string              `json:"phone" binding:"required,phonenumber"`
	GithubURL     *string             `json:"github_url" binding:"omitempty,url,max=255"`
	Organization  orgReferenceRequest `json:"organization" binding:"required"`
	Source        string              `json:"source" binding:"omitempty,max=32"`
	City          *string             `json:"city" binding:"omitempty,max=100"`
	TechStack     []string            `json:"tech_stack" binding:"omitempty,dive,max=64"`
}

type submitResponse struct {
	ExternalUserID string `json:"external_user_id"`
} // @name SubmitResponse

// @Summary Submit the completed form
// @Tags form
// @Accept json
// @Produce json
// @Param input body submitRequest true "form payload"
// @Success 200 {object} submitResponse
// @Failure 400,404 {object} ErrorStruct
// @Failure 409 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/submit [post]
func (h *Handler) formSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Form.Submit(c.Request.Context(), service.SubmitInput{
		LinkToken:     req.Token,
		ProviderToken: req.ProviderToken,
		FullName:      req.FullName,
		Email:         req.Email,
		Phone:         req.Phone,
		GithubURL:     req.GithubURL,
		OrgRef: service.OrgReference{
			Type: domain.OrgRefType(req.Organization.Type),
			ID:   req.Organization.ID,
			Name: req.Organization.Name,
		},
		Source:    req.Source,
		City:      req.City,
		TechStack: req.TechStack,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, submitResponse{ExternalUserID: result.ExternalUserID})
}

type deferRequest struct {
	Token string `json:"token" binding:"required,max=64"`
}

// @Summary Defer the form and enroll in the reminder cycle
// @Tags form
// @Accept json
// @Produce json
// @Param input body deferRequest true "link token"
// @Success 200
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/defer [post]
func (h *Handler) formDefer(c *gin.Context) {
	var req deferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Form.Defer(c.Request.Context(), req.Token); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type optOutRequest struct {
	Token  string  `json:"token" binding:"required,max=64"`
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

// @Summary Opt out of all further emails
// @Tags form
// @Accept json
// @Produce json
// @Param input body optOutRequest true "link token and optional reason"
// @Success 200
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/optout [post]
func (h *Handler) formOptOut(c *gin.Context) {
	var req optOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Form.OptOut(c.Request.Context(), req.Token, req.Reason); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type saveDraftRequest struct {
	Token   string          `json:"token" binding:"required,max=64"`
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// @Summary Save a partially filled form
// @Tags form
// @Accept json
// @Produce json
// @Param input body saveDraftRequest true "link token and draft payload"
// @Success 200
// @Failure 400,404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/partial [post]
func (h *Handler) formSaveDraft(c *gin.Context) {
	var req saveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	if err := h.services.Form.SaveDraft(c.Request.Context(), req.Token, req.Payload); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}

type draftResponse struct {
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
} // @name DraftResponse

// @Summary Load the saved draft for a link
// @Tags form
// @Produce json
// @Param token path string true "link token"
// @Success 200 {object} draftResponse
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/partial/{token} [get]
func (h *Handler) formGetDraft(c *gin.Context) {
	draft, err := h.services.Form.GetDraft(c.Request.Context(), c.Param("token"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, draftResponse{
		Payload: draft.Payload,
		SavedAt: draft.SavedAt,
	})
}

// @Summary Delete the saved draft for a link
// @Tags form
// @Produce json
// @Param token path string true "link token"
// @Success 200
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /form/partial/{token} [delete]
func (h *Handler) formDeleteDraft(c *gin.Context) {
	if err := h.services.Form.DeleteDraft(c.Request.Context(), c.Param("token")); err != nil {
		errorResponse(c, err)
		return
	}

	c.Status(http.StatusOK)
}
