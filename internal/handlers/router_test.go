package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/audit"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
)

var routerNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// RouterTestSuite drives the full HTTP surface over real services and the
// in-memory store.
type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	ring   *audit.Ring
	hub    *audit.Hub
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}, Rules: domain.DefaultRuleSettings()}
	suite.ring = audit.NewRing(100)
	suite.hub = audit.NewHub(16)

	container, err := services.NewServiceContainer(ctx, cfg, memory.NewStore().Provider(), audit.Fanout{suite.ring, suite.hub},
		services.WithClock(func() time.Time { return routerNow }))
	suite.Require().NoError(err)
	_, err = container.Chart.SeedDefaultChart(ctx, "setup")
	suite.Require().NoError(err)

	router, err := handlers.NewRouter(cfg, slog.Default(), container, suite.ring, suite.hub)
	suite.Require().NoError(err)
	suite.router = router
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (suite *RouterTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.ActorHeader, "bob")
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, req)
	return rr
}

func (suite *RouterTestSuite) decode(rr *httptest.ResponseRecorder, v any) {
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}

func (suite *RouterTestSuite) openYear() dto.PeriodResponse {
	rr := suite.do(http.MethodPost, "/api/v1/periods", dto.CreatePeriodRequest{
		Name: "FY2024", StartDate: "2024-01-01", EndDate: "2024-12-31",
	})
	suite.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var p dto.PeriodResponse
	suite.decode(rr, &p)
	return p
}

func sale(desc, amount string) dto.EntryRequest {
	return dto.EntryRequest{
		Date:        "2024-03-15",
		Description: desc,
		Lines: []dto.EntryLineRequest{
			{AccountID: "1110", Debit: decimal.RequireFromString(amount)},
			{AccountID: "4100", Credit: decimal.RequireFromString(amount)},
		},
	}
}

func (suite *RouterTestSuite) createEntry(req dto.EntryRequest) dto.EntryResponse {
	rr := suite.do(http.MethodPost, "/api/v1/journal-entries", req)
	suite.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var e dto.EntryResponse
	suite.decode(rr, &e)
	return e
}

func (suite *RouterTestSuite) balance(accountID string) decimal.Decimal {
	rr := suite.do(http.MethodGet, "/api/v1/accounts/"+accountID, nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	var a dto.AccountResponse
	suite.decode(rr, &a)
	return a.Balance
}

func (suite *RouterTestSuite) TestHealth() {
	rr := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, rr.Code)
	suite.Equal("OK", rr.Body.String())
}

func (suite *RouterTestSuite) TestEntryLifecycle() {
	suite.openYear()

	entry := suite.createEntry(sale("Till sale", "25.50"))
	suite.Equal("DRAFT", entry.Status)
	suite.Equal("JE-000001", entry.Number)
	suite.Equal("bob", entry.CreatedBy)
	suite.True(suite.balance("1110").IsZero())

	rr := suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var posted dto.EntryResponse
	suite.decode(rr, &posted)
	suite.Equal("POSTED", posted.Status)
	suite.True(decimal.RequireFromString("25.50").Equal(suite.balance("1110")))

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, rr.Code)

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/reverse", nil)
	suite.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var reversal dto.EntryResponse
	suite.decode(rr, &reversal)
	suite.Equal(entry.EntryID, reversal.ReversalOf)
	suite.Equal("2024-06-01", reversal.Date, "reversals are dated today by default")
	suite.Equal("POSTED", reversal.Status)
	suite.True(suite.balance("1110").IsZero())

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/reverse", nil)
	suite.Equal(http.StatusConflict, rr.Code)
	suite.Contains(rr.Body.String(), string(domain.KindAlreadyReversed))
}

func (suite *RouterTestSuite) TestValidateDoesNotStore() {
	req := sale("Unbalanced", "10.00")
	req.Lines[1].Credit = decimal.RequireFromString("9.99")

	rr := suite.do(http.MethodPost, "/api/v1/journal-entries/validate", req)
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var result domain.ValidationResult
	suite.decode(rr, &result)
	suite.False(result.IsValid)
	suite.True(result.Has(domain.KindUnbalanced))

	rr = suite.do(http.MethodGet, "/api/v1/journal-entries", nil)
	var list dto.ListEntriesResponse
	suite.decode(rr, &list)
	suite.Empty(list.Entries)
}

func (suite *RouterTestSuite) TestPostEntry_InvalidIsRejected() {
	suite.openYear()
	req := sale("Unbalanced", "10.00")
	req.Lines[1].Credit = decimal.RequireFromString("9.99")

	draft := suite.createEntry(req)
	suite.Equal("DRAFT", draft.Status)

	rr := suite.do(http.MethodPost, "/api/v1/journal-entries/"+draft.EntryID+"/post", nil)
	suite.Equal(http.StatusBadRequest, rr.Code)
	suite.Contains(rr.Body.String(), `"validation"`)
	suite.Contains(rr.Body.String(), string(domain.KindUnbalanced))
	suite.True(suite.balance("1110").IsZero())
}

func (suite *RouterTestSuite) TestCreateEntry_BadDateAndPrecision() {
	req := sale("Bad date", "10.00")
	req.Date = "15/03/2024"
	rr := suite.do(http.MethodPost, "/api/v1/journal-entries", req)
	suite.Equal(http.StatusBadRequest, rr.Code)

	req = sale("Too precise", "10.001")
	rr = suite.do(http.MethodPost, "/api/v1/journal-entries", req)
	suite.Equal(http.StatusBadRequest, rr.Code)
}

func (suite *RouterTestSuite) TestListEntriesPaginates() {
	for _, desc := range []string{"one", "two", "three"} {
		suite.createEntry(sale(desc, "1.00"))
	}

	rr := suite.do(http.MethodGet, "/api/v1/journal-entries?limit=2", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	var page dto.ListEntriesResponse
	suite.decode(rr, &page)
	suite.Len(page.Entries, 2)
	suite.Require().NotEmpty(page.NextToken)

	rr = suite.do(http.MethodGet, "/api/v1/journal-entries?limit=2&nextToken="+page.NextToken, nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	var rest dto.ListEntriesResponse
	suite.decode(rr, &rest)
	suite.Len(rest.Entries, 1)
	suite.Empty(rest.NextToken)

	rr = suite.do(http.MethodGet, "/api/v1/journal-entries?from=2024-04-01&to=2024-03-01", nil)
	suite.Equal(http.StatusBadRequest, rr.Code)
}

func (suite *RouterTestSuite) TestAutomaticEntry() {
	suite.openYear()

	rr := suite.do(http.MethodGet, "/api/v1/journal-entries/automatic/event-types", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	suite.Contains(rr.Body.String(), string(domain.EventSaleCash))

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/automatic?post=true", dto.AutomaticEntryRequest{
		EventType: "sale_cash", Date: "2024-03-15", Amount: decimal.RequireFromString("100"), CustomerName: "Acme",
	})
	suite.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	var entry dto.EntryResponse
	suite.decode(rr, &entry)
	suite.Equal("POSTED", entry.Status)
	suite.Equal("AUTOMATIC", entry.Source)
	suite.True(strings.HasPrefix(entry.Number, domain.AutomaticEntryPrefix))
	suite.True(decimal.NewFromInt(100).Equal(suite.balance("1110")))

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/automatic", dto.AutomaticEntryRequest{
		EventType: "barter", Date: "2024-03-15", Amount: decimal.NewFromInt(5),
	})
	suite.Equal(http.StatusBadRequest, rr.Code)
	suite.Contains(rr.Body.String(), string(domain.KindUnknownEventType))
}

func (suite *RouterTestSuite) TestAutomaticEntry_UnknownEventTypeIsAudited() {
	suite.openYear()

	rr := suite.do(http.MethodPost, "/api/v1/journal-entries/automatic", dto.AutomaticEntryRequest{
		EventType: "refund", Date: "2024-03-15", Amount: decimal.NewFromInt(5),
	})
	suite.Require().Equal(http.StatusBadRequest, rr.Code, rr.Body.String())

	recent := suite.ring.Recent(1)
	suite.Require().Len(recent, 1)
	evt := recent[0]
	suite.Equal(domain.OpGenerateEntry, evt.Operation)
	suite.Equal(domain.OutcomeFailure, evt.Outcome)
	suite.Empty(evt.EntityID)
	suite.Require().NotEmpty(evt.Errors)
	suite.Equal(string(domain.KindUnknownEventType), evt.Errors[0].Kind)
}

func (suite *RouterTestSuite) TestClosedPeriodBlocksPosting() {
	period := suite.openYear()

	rr := suite.do(http.MethodPost, "/api/v1/periods/"+period.PeriodID+"/close", nil)
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var closed dto.PeriodResponse
	suite.decode(rr, &closed)
	suite.True(closed.IsClosed)

	entry := suite.createEntry(sale("Late sale", "5.00"))
	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, rr.Code)

	rr = suite.do(http.MethodPost, "/api/v1/periods/"+period.PeriodID+"/reopen", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusOK, rr.Code, rr.Body.String())
}

func (suite *RouterTestSuite) TestPeriodCRUD() {
	period := suite.openYear()

	rr := suite.do(http.MethodPost, "/api/v1/periods", dto.CreatePeriodRequest{
		Name: "Overlap", StartDate: "2024-06-01", EndDate: "2025-05-31",
	})
	suite.Equal(http.StatusConflict, rr.Code)
	suite.Contains(rr.Body.String(), string(domain.KindOverlap))

	name := "Fiscal 2024"
	rr = suite.do(http.MethodPatch, "/api/v1/periods/"+period.PeriodID, dto.UpdatePeriodRequest{Name: &name})
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	rr = suite.do(http.MethodGet, "/api/v1/periods?search=fiscal", nil)
	var list dto.ListPeriodsResponse
	suite.decode(rr, &list)
	suite.Require().Len(list.Periods, 1)
	suite.Equal(name, list.Periods[0].Name)

	rr = suite.do(http.MethodDelete, "/api/v1/periods/"+period.PeriodID, nil)
	suite.Equal(http.StatusNoContent, rr.Code)
	rr = suite.do(http.MethodGet, "/api/v1/periods/"+period.PeriodID, nil)
	suite.Equal(http.StatusNotFound, rr.Code)
}

func (suite *RouterTestSuite) TestApprovalPolicy() {
	suite.openYear()
	on := true
	rr := suite.do(http.MethodPatch, "/api/v1/settings/rules", dto.UpdateRuleSettingsRequest{RequireApproval: &on})
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	entry := suite.createEntry(sale("Needs approval", "12.00"))
	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Equal(http.StatusConflict, rr.Code)
	suite.Contains(rr.Body.String(), string(domain.KindApprovalRequired))

	rr = suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/approve", nil)
	suite.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	var approved dto.EntryResponse
	suite.decode(rr, &approved)
	suite.Equal("APPROVED", approved.Status)
}

func (suite *RouterTestSuite) TestTrialBalance() {
	suite.openYear()
	entry := suite.createEntry(sale("Till sale", "40.00"))
	rr := suite.do(http.MethodPost, "/api/v1/journal-entries/"+entry.EntryID+"/post", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)

	rr = suite.do(http.MethodGet, "/api/v1/reports/trial-balance", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	var tb dto.TrialBalanceResponse
	suite.decode(rr, &tb)
	suite.True(tb.Balanced)
	suite.True(decimal.NewFromInt(40).Equal(tb.TotalDebit))
}

func (suite *RouterTestSuite) TestAuditEvents() {
	suite.createEntry(sale("Audited", "3.00"))

	rr := suite.do(http.MethodGet, "/api/v1/audit/events?limit=5", nil)
	suite.Require().Equal(http.StatusOK, rr.Code)
	var resp dto.ListAuditEventsResponse
	suite.decode(rr, &resp)
	suite.Require().NotEmpty(resp.Events)
	suite.Equal(domain.OpCreateEntry, resp.Events[0].Operation)
	suite.Equal("bob", resp.Events[0].Actor)
}

func (suite *RouterTestSuite) TestAuditStream() {
	srv := httptest.NewServer(suite.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/audit/stream", nil)
	suite.Require().NoError(err)
	defer conn.CloseNow()

	suite.Require().Eventually(func() bool { return suite.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	suite.createEntry(sale("Streamed", "7.00"))

	var evt domain.AuditEvent
	suite.Require().NoError(wsjson.Read(ctx, conn, &evt))
	suite.Equal(domain.OpCreateEntry, evt.Operation)
	suite.Equal(domain.OutcomeSuccess, evt.Outcome)

	conn.Close(websocket.StatusNormalClosure, "")
	suite.Eventually(func() bool { return suite.hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}
