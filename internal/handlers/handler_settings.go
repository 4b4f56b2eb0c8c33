package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

type settingsHandler struct {
	settingsService portssvc.SettingsSvcFacade
}

func registerSettingsRoutes(rg *gin.RouterGroup, settingsService portssvc.SettingsSvcFacade) {
	h := &settingsHandler{settingsService: settingsService}

	settings := rg.Group("/settings")
	{
		settings.GET("/rules", h.getRules)
		settings.PATCH("/rules", h.updateRules)
	}
}

func (h *settingsHandler) getRules(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToRuleSettingsResponse(h.settingsService.CurrentRuleSettings(c.Request.Context())))
}

func (h *settingsHandler) updateRules(c *gin.Context) {
	var req dto.UpdateRuleSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(c, err, "Failed to update rule settings")
		return
	}

	updated, err := h.settingsService.UpdateSettings(c.Request.Context(), patch, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to update rule settings")
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleSettingsResponse(updated))
}
