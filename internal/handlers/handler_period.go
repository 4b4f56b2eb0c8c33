package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// periodHandler handles HTTP requests for accounting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

// registerPeriodRoutes registers routes related to accounting periods.
func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := &periodHandler{periodService: periodService}

	periods := rg.Group("/periods")
	{
		periods.GET("", h.listPeriods)
		periods.POST("", h.createPeriod)
		periods.GET("/:periodID", h.getPeriod)
		periods.PATCH("/:periodID", h.updatePeriod)
		periods.DELETE("/:periodID", h.deletePeriod)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
	}
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	var params dto.ListPeriodsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	periods, err := h.periodService.ListPeriods(c.Request.Context(), params.ToFilter())
	if err != nil {
		respondError(c, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPeriodsResponse(periods))
}

func (h *periodHandler) createPeriod(c *gin.Context) {
	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	in, err := req.ToInput()
	if err != nil {
		respondError(c, err, "Failed to create period")
		return
	}
	period, err := h.periodService.CreatePeriod(c.Request.Context(), in, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to create period")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	period, err := h.periodService.GetPeriod(c.Request.Context(), c.Param("periodID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) updatePeriod(c *gin.Context) {
	var req dto.UpdatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(c, err, "Failed to update period")
		return
	}
	period, err := h.periodService.UpdatePeriod(c.Request.Context(), c.Param("periodID"), patch, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to update period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) deletePeriod(c *gin.Context) {
	if err := h.periodService.DeletePeriod(c.Request.Context(), c.Param("periodID"), middleware.GetActorIDFromContext(c)); err != nil {
		respondError(c, err, "Failed to delete period")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *periodHandler) closePeriod(c *gin.Context) {
	period, err := h.periodService.ClosePeriod(c.Request.Context(), c.Param("periodID"), middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to close period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) reopenPeriod(c *gin.Context) {
	period, err := h.periodService.ReopenPeriod(c.Request.Context(), c.Param("periodID"), middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to reopen period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}
