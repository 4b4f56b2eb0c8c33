package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
)

// chartService implements the ChartSvcFacade interface
type chartService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewChartService creates a new chart of accounts service.
func NewChartService(repo portsrepo.AccountRepositoryFacade, options ...ServiceOption) portssvc.ChartSvcFacade {
	return &chartService{
		BaseService: newBaseService(options...),
		accountRepo: repo,
	}
}

var _ portssvc.ChartSvcFacade = (*chartService)(nil)

func (s *chartService) LookupAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to look up account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *chartService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *chartService) Chart(ctx context.Context) (*domain.ChartOfAccounts, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewChartOfAccounts(accounts), nil
}

func (s *chartService) CheckHierarchy(ctx context.Context) ([]domain.HierarchyIssue, error) {
	chart, err := s.Chart(ctx)
	if err != nil {
		return nil, err
	}
	issues := chart.Issues()
	if len(issues) > 0 {
		s.LogInfo(ctx, "Chart of accounts has hierarchy issues", slog.Int("count", len(issues)))
	}
	return issues, nil
}

func (s *chartService) TrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	tb := domain.BuildTrialBalance(accounts)
	if !tb.Balanced {
		s.GetLogger(ctx).Error("Trial balance is out of balance",
			slog.String("total_debit", tb.TotalDebit.String()),
			slog.String("total_credit", tb.TotalCredit.String()))
	}
	return &tb, nil
}

func (s *chartService) CreateAccount(ctx context.Context, in portssvc.CreateAccountInput, actor string) (account *domain.Account, err error) {
	defer func() {
		id := in.AccountID
		if account != nil {
			id = account.AccountID
		}
		s.Audit(ctx, domain.OpCreateAccount, id, actor, err)
	}()

	in.Name = strings.TrimSpace(in.Name)
	in.Number = strings.TrimSpace(in.Number)
	if in.Name == "" || in.Number == "" {
		return nil, fmt.Errorf("%w: account number and name are required", apperrors.ErrValidation)
	}
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, in.AccountType)
	}

	id := in.AccountID
	if id == "" {
		id = in.Number
	}

	if in.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, in.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, in.ParentAccountID)
			}
			s.LogError(ctx, err, "Failed to find parent account", slog.String("parent_id", in.ParentAccountID))
			return nil, fmt.Errorf("invalid parent account: %w", err)
		}
		chart, err := s.Chart(ctx)
		if err != nil {
			return nil, err
		}
		if parent.AccountID == id || chart.WouldCycle(id, parent.AccountID) {
			return nil, fmt.Errorf("%w: attaching %s under %s would create a cycle", apperrors.ErrValidation, id, parent.AccountID)
		}
		if parent.AccountType != in.AccountType {
			// Reported through CheckHierarchy, never rejected.
			s.LogInfo(ctx, "Account type differs from parent",
				slog.String("account_id", id),
				slog.String("account_type", string(in.AccountType)),
				slog.String("parent_type", string(parent.AccountType)))
		}
	}

	now := s.now()
	newAccount := domain.Account{
		AccountID:       id,
		Number:          in.Number,
		Name:            in.Name,
		AccountType:     in.AccountType,
		ParentAccountID: in.ParentAccountID,
		Description:     in.Description,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(actor, now),
	}

	if err := s.accountRepo.SaveAccount(ctx, newAccount); err != nil {
		s.LogFailure(ctx, err, "Failed to save account", slog.String("account_id", id))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", id), slog.String("number", in.Number))
	return &newAccount, nil
}

func (s *chartService) SeedDefaultChart(ctx context.Context, actor string) (n int, err error) {
	defer func() { s.Audit(ctx, domain.OpSeedChart, "", actor, err) }()

	now := s.now()
	accounts := make([]domain.Account, len(domain.DefaultChart))
	for i, e := range domain.DefaultChart {
		accounts[i] = domain.Account{
			AccountID:       e.Number,
			Number:          e.Number,
			Name:            e.Name,
			AccountType:     e.Type,
			ParentAccountID: e.Parent,
			Description:     e.Description,
			IsActive:        true,
			AuditFields:     domain.NewAuditFields(actor, now),
		}
	}

	n, err = s.accountRepo.SaveAccounts(ctx, accounts)
	if err != nil {
		s.LogError(ctx, err, "Failed to seed default chart")
		return 0, fmt.Errorf("failed to seed default chart: %w", err)
	}
	s.LogInfo(ctx, "Default chart seeded", slog.Int("inserted", n))
	return n, nil
}
