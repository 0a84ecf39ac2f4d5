package handler

import (
	"net/http"

	"bizledger/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{ repo repository.AuditLogRepository }

func NewAuditHandler(repo repository.AuditLogRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List godoc
// @Summary      List recent audit entries
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max entries (default 100)"
// @Success      200 {array} model.AuditLog
// @Router       /v1/audit-log [get]
func (h *AuditHandler) List(c *gin.Context) {
	entries, err := h.repo.List(c.Request.Context(), atoiDefault(c.Query("limit"), 100))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
