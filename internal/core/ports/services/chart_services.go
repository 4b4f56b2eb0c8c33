package services

import (
	"context"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

// CreateAccountInput is a new account as requested by a caller.
type CreateAccountInput struct {
	AccountID       string
	Number          string
	Name            string
	AccountType     domain.AccountType
	ParentAccountID string
	Description     string
}

// ChartReaderSvc defines read operations on the chart of accounts
type ChartReaderSvc interface {
	// LookupAccount resolves an account by id. A miss returns apperrors.ErrNotFound.
	LookupAccount(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts returns every account ordered by number.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// Chart returns a read-only tree view over the current accounts.
	Chart(ctx context.Context) (*domain.ChartOfAccounts, error)

	// CheckHierarchy reports structural problems in the chart without changing it.
	CheckHierarchy(ctx context.Context) ([]domain.HierarchyIssue, error)

	// TrialBalance lists current account balances on their natural side.
	TrialBalance(ctx context.Context) (*domain.TrialBalance, error)
}

// ChartWriterSvc defines write operations on the chart of accounts
type ChartWriterSvc interface {
	// CreateAccount adds an account. The parent, when given, must exist and must not create a cycle.
	CreateAccount(ctx context.Context, in CreateAccountInput, actor string) (*domain.Account, error)

	// SeedDefaultChart inserts the default chart accounts that do not exist yet.
	SeedDefaultChart(ctx context.Context, actor string) (int, error)
}

// ChartSvcFacade combines all chart-related service interfaces
type ChartSvcFacade interface {
	ChartReaderSvc
	ChartWriterSvc
}
