package admin

import (
	"embed"
	"net/http"

	"github.com/badal-community/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed *.html
var adminFiles embed.FS

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ConsolePage serves the operator console: login, invites, email log and
// manual sweep runs. Everything it does goes through the /api/v1/admin
// endpoints.
func (h *Handler) ConsolePage(c *gin.Context) {
	htmlContent, err := adminFiles.ReadFile("console.html")
	if err != nil {
		logger.Error("failed to read admin console page", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to read admin console page")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", htmlContent)
}
