package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// --- Mock ChartService ---
type MockChartService struct {
	mock.Mock
}

func (m *MockChartService) LookupAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockChartService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockChartService) Chart(ctx context.Context) (*domain.ChartOfAccounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChartOfAccounts), args.Error(1)
}
func (m *MockChartService) CheckHierarchy(ctx context.Context) ([]domain.HierarchyIssue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HierarchyIssue), args.Error(1)
}
func (m *MockChartService) TrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalance), args.Error(1)
}
func (m *MockChartService) CreateAccount(ctx context.Context, in portssvc.CreateAccountInput, actor string) (*domain.Account, error) {
	args := m.Called(ctx, in, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockChartService) SeedDefaultChart(ctx context.Context, actor string) (int, error) {
	args := m.Called(ctx, actor)
	return args.Int(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.ChartSvcFacade = (*MockChartService)(nil)

// --- Test Suite Setup ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	mockChart *MockChartService
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockChart = new(MockChartService)

	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}}
	container := &portssvc.ServiceContainer{Chart: suite.mockChart}
	router, err := handlers.NewRouter(cfg, slog.Default(), container, nil, nil)
	suite.Require().NoError(err)
	suite.router = router
}

func (suite *AccountHandlerTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, "alice")
	rr := httptest.NewRecorder()
	suite.router.ServeHTTP(rr, req)
	return rr
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Success() {
	in := portssvc.CreateAccountInput{Number: "1150", Name: "Petty cash", AccountType: domain.Asset, ParentAccountID: "1100"}
	created := &domain.Account{AccountID: "1150", Number: "1150", Name: "Petty cash", AccountType: domain.Asset, ParentAccountID: "1100", IsActive: true}
	suite.mockChart.On("CreateAccount", mock.Anything, in, "alice").Return(created, nil).Once()

	rr := suite.do(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Number: "1150", Name: "Petty cash", AccountType: domain.Asset, ParentAccountID: "1100",
	})

	suite.Equal(http.StatusCreated, rr.Code)
	var resp dto.AccountResponse
	suite.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	suite.Equal("1150", resp.AccountID)
	suite.Equal("1100", resp.ParentAccountID)
	suite.mockChart.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_BadType() {
	rr := suite.do(http.MethodPost, "/api/v1/accounts", map[string]string{
		"number": "9000", "name": "Bogus", "accountType": "ASSETS",
	})
	suite.Equal(http.StatusBadRequest, rr.Code)
	suite.mockChart.AssertNotCalled(suite.T(), "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AccountHandlerTestSuite) TestCreateAccount_Duplicate() {
	suite.mockChart.On("CreateAccount", mock.Anything, mock.Anything, "alice").
		Return(nil, apperrors.NewAppError(apperrors.ErrDuplicate, "account 1110 already exists", nil)).Once()

	rr := suite.do(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		Number: "1110", Name: "Cash", AccountType: domain.Asset,
	})
	suite.Equal(http.StatusConflict, rr.Code)
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockChart.On("LookupAccount", mock.Anything, "9999").
		Return(nil, apperrors.NewAppError(apperrors.ErrNotFound, "account 9999 not found", nil)).Once()

	rr := suite.do(http.MethodGet, "/api/v1/accounts/9999", nil)
	suite.Equal(http.StatusNotFound, rr.Code)
	suite.Contains(rr.Body.String(), "9999")
}

func (suite *AccountHandlerTestSuite) TestListAccounts_InternalErrorIsMasked() {
	suite.mockChart.On("ListAccounts", mock.Anything).Return(nil, errors.New("connection reset by peer")).Once()

	rr := suite.do(http.MethodGet, "/api/v1/accounts", nil)
	suite.Equal(http.StatusInternalServerError, rr.Code)
	suite.NotContains(rr.Body.String(), "connection reset")
	suite.Contains(rr.Body.String(), "Failed to list accounts")
}

func (suite *AccountHandlerTestSuite) TestHierarchyIssues_EmptyList() {
	suite.mockChart.On("CheckHierarchy", mock.Anything).Return(nil, nil).Once()

	rr := suite.do(http.MethodGet, "/api/v1/accounts/hierarchy-issues", nil)
	suite.Equal(http.StatusOK, rr.Code)
	suite.JSONEq(`{"issues":[]}`, rr.Body.String())
}
