package v1

import (
	"github.com/badal-community/backend/internal/config"
	"github.com/badal-community/backend/internal/service"
	"github.com/badal-community/backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Badal Onboarding API
// @version 1.0
// @description Token-gated onboarding form lifecycle

// @BasePath /api/v1

// @securityDefinitions.apikey AdminAuth
// @in header
// @name Authorization

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1")

	h.initFormRoutes(v1)
	h.initOAuthRoutes(v1)
	h.initAdminRoutes(v1)
}
