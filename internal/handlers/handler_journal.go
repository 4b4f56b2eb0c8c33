package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

// journalHandler handles HTTP requests for journal entries.
type journalHandler struct {
	journalService   portssvc.JournalSvcFacade
	generatorService portssvc.EntryGeneratorSvc
}

func newJournalHandler(js portssvc.JournalSvcFacade, gs portssvc.EntryGeneratorSvc) *journalHandler {
	return &journalHandler{journalService: js, generatorService: gs}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, generatorService portssvc.EntryGeneratorSvc) {
	h := newJournalHandler(journalService, generatorService)

	entries := rg.Group("/journal-entries")
	{
		entries.GET("", h.listEntries)
		entries.POST("", h.createEntry)
		entries.POST("/validate", h.validateEntry)
		entries.POST("/automatic", h.createAutomaticEntry)
		entries.GET("/automatic/event-types", h.listEventTypes)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/approve", h.approveEntry)
		entries.POST("/:entryID/reject", h.rejectEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

func (h *journalHandler) bindEntry(c *gin.Context) (domain.EntryInput, bool) {
	var req dto.EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return domain.EntryInput{}, false
	}
	in, err := req.ToInput()
	if err != nil {
		respondError(c, err, "Failed to read journal entry")
		return domain.EntryInput{}, false
	}
	return in, true
}

// validateEntry runs the validator without storing anything. An invalid
// entry is still a successful call; the result lists the violations.
func (h *journalHandler) validateEntry(c *gin.Context) {
	in, ok := h.bindEntry(c)
	if !ok {
		return
	}
	result, err := h.journalService.ValidateInput(c.Request.Context(), in, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to validate journal entry")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *journalHandler) createEntry(c *gin.Context) {
	in, ok := h.bindEntry(c)
	if !ok {
		return
	}
	entry, err := h.journalService.CreateEntry(c.Request.Context(), in, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to create journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *journalHandler) updateEntry(c *gin.Context) {
	in, ok := h.bindEntry(c)
	if !ok {
		return
	}
	entry, err := h.journalService.UpdateEntry(c.Request.Context(), c.Param("entryID"), in, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to update journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalHandler) getEntry(c *gin.Context) {
	entry, err := h.journalService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err, "Failed to retrieve journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *journalHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	svcParams, err := params.ToServiceParams()
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	page, err := h.journalService.ListEntries(c.Request.Context(), svcParams)
	if err != nil {
		respondError(c, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToListEntriesResponse(page))
}

type entryTransition func(c *gin.Context, entryID, actor string) (*domain.JournalEntry, error)

// transition runs a lifecycle call on the entry named in the path.
func (h *journalHandler) transition(name string, fn entryTransition) gin.HandlerFunc {
	return func(c *gin.Context) {
		entryID := c.Param("entryID")
		actor := middleware.GetActorIDFromContext(c)
		middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received journal entry transition",
			slog.String("transition", name), slog.String("entry_id", entryID), slog.String("actor", actor))

		entry, err := fn(c, entryID, actor)
		if err != nil {
			respondError(c, err, "Failed to "+name+" journal entry")
			return
		}
		c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
	}
}

func (h *journalHandler) postEntry(c *gin.Context) {
	h.transition("post", func(c *gin.Context, id, actor string) (*domain.JournalEntry, error) {
		return h.journalService.PostEntry(c.Request.Context(), id, actor)
	})(c)
}

func (h *journalHandler) approveEntry(c *gin.Context) {
	h.transition("approve", func(c *gin.Context, id, actor string) (*domain.JournalEntry, error) {
		return h.journalService.ApproveEntry(c.Request.Context(), id, actor)
	})(c)
}

func (h *journalHandler) rejectEntry(c *gin.Context) {
	h.transition("reject", func(c *gin.Context, id, actor string) (*domain.JournalEntry, error) {
		return h.journalService.RejectEntry(c.Request.Context(), id, actor)
	})(c)
}

func (h *journalHandler) reverseEntry(c *gin.Context) {
	var req dto.ReverseEntryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err, "request format")
			return
		}
	}
	date, err := req.ReversalDate()
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}

	entryID := c.Param("entryID")
	entry, err := h.journalService.ReverseEntry(c.Request.Context(), entryID, date, middleware.GetActorIDFromContext(c))
	if err != nil {
		respondError(c, err, "Failed to reverse journal entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// createAutomaticEntry books a business event as a draft. With post=true the
// draft is posted straight away; a posting failure leaves the draft stored.
func (h *journalHandler) createAutomaticEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AutomaticEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "request format")
		return
	}
	post, err := strconv.ParseBool(c.DefaultQuery("post", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid query parameters: post must be a boolean"})
		return
	}

	payload, err := req.ToPayload()
	if err != nil {
		respondError(c, err, "Failed to read business event")
		return
	}

	actor := middleware.GetActorIDFromContext(c)
	entry, err := h.generatorService.GenerateFromPayload(c.Request.Context(), req.EventType, payload, actor)
	if err != nil {
		respondError(c, err, "Failed to generate journal entry")
		return
	}
	if post {
		posted, err := h.journalService.PostEntry(c.Request.Context(), entry.EntryID, actor)
		if err != nil {
			logger.Warn("Generated entry kept as draft", slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
			respondError(c, err, "Failed to post generated journal entry")
			return
		}
		entry = posted
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *journalHandler) listEventTypes(c *gin.Context) {
	c.JSON(http.StatusOK, dto.EventTypesResponse{EventTypes: h.generatorService.EventKinds()})
}
