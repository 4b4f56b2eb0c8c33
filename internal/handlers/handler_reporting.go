package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
)

type reportingHandler struct {
	chartService portssvc.ChartReaderSvc
}

func registerReportingRoutes(rg *gin.RouterGroup, chartService portssvc.ChartReaderSvc) {
	h := &reportingHandler{chartService: chartService}

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
	}
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	tb, err := h.chartService.TrialBalance(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrialBalanceResponse(tb))
}
