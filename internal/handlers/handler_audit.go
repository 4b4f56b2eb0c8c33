package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/middleware"
)

const (
	defaultAuditLimit  = 100
	streamWriteTimeout = 5 * time.Second
)

type auditHandler struct {
	recent         AuditRecent
	stream         AuditStream
	originPatterns []string
}

func registerAuditRoutes(rg *gin.RouterGroup, recent AuditRecent, stream AuditStream, origins []string) {
	h := &auditHandler{recent: recent, stream: stream, originPatterns: originPatterns(origins)}

	auditGroup := rg.Group("/audit")
	{
		auditGroup.GET("/events", h.listEvents)
		auditGroup.GET("/stream", h.streamEvents)
	}
}

// originPatterns turns the CORS origins into the host patterns the
// websocket handshake checks against.
func originPatterns(origins []string) []string {
	if containsWildcard(origins) {
		return []string{"*"}
	}
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

func (h *auditHandler) listEvents(c *gin.Context) {
	var params dto.ListAuditEventsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err, "query parameters")
		return
	}
	limit := params.Limit
	if limit == 0 {
		limit = defaultAuditLimit
	}

	events := []domain.AuditEvent{}
	if h.recent != nil {
		if recent := h.recent.Recent(limit); recent != nil {
			events = recent
		}
	}
	c.JSON(http.StatusOK, dto.ListAuditEventsResponse{Events: events})
}

// streamEvents upgrades to a websocket and pushes every audit event recorded
// after the handshake. Client messages are ignored.
func (h *auditHandler) streamEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if h.stream == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Audit stream is not enabled"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		logger.Warn("Audit stream handshake failed", slog.String("error", err.Error()))
		return
	}
	defer conn.CloseNow()

	events, cancel := h.stream.Subscribe()
	defer cancel()

	ctx := conn.CloseRead(c.Request.Context())
	logger.Info("Audit stream subscriber connected")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Audit stream subscriber disconnected")
			conn.Close(websocket.StatusGoingAway, "")
			return
		case evt, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "stream closed")
				return
			}
			if err := writeEvent(ctx, conn, evt); err != nil {
				if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
					logger.Warn("Audit stream write failed", slog.String("error", err.Error()))
				}
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, evt domain.AuditEvent) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, evt)
}
