package pgsql

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

const accountColumns = `account_id, number, name, account_type, parent_account_id, description, is_active, balance,
		created_at, created_by, last_updated_at, last_updated_by`

const insertAccountSQL = `
		INSERT INTO accounts (account_id, number, name, account_type, parent_account_id, description, is_active, balance,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)
	_ portsrepo.TransactionManager      = (*PgxAccountRepository)(nil)
)

func accountArgs(m models.Account) []any {
	return []any{
		m.AccountID, m.Number, m.Name, m.AccountType, m.ParentAccountID, m.Description, m.IsActive, m.Balance,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	return pgx.CollectRows(rows, pgx.RowToStructByName[models.Account])
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = $1`, accountID)
	if err != nil {
		return nil, dbError(err, "failed to query account "+accountID)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound("account", accountID)
		}
		return nil, dbError(err, "failed to scan account "+accountID)
	}
	d := mapping.ToDomainAccount(m)
	return &d, nil
}

// FindAccountsByIDs retrieves the accounts that exist among accountIDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ANY($1)`, accountIDs)
	if err != nil {
		return nil, dbError(err, "failed to query accounts by ids")
	}
	found, err := collectAccounts(rows)
	if err != nil {
		return nil, dbError(err, "failed to scan accounts")
	}
	for _, m := range found {
		out[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return out, nil
}

// ListAccounts retrieves every account ordered by number.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.Pool.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY number`)
	if err != nil {
		return nil, dbError(err, "failed to list accounts")
	}
	found, err := collectAccounts(rows)
	if err != nil {
		return nil, dbError(err, "failed to scan accounts")
	}
	out := make([]domain.Account, len(found))
	for i, m := range found {
		out[i] = mapping.ToDomainAccount(m)
	}
	return out, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := r.Pool.Exec(ctx, insertAccountSQL, accountArgs(mapping.ToModelAccount(account))...); err != nil {
		return dbError(err, "failed to insert account "+account.AccountID)
	}
	return nil
}

// SaveAccounts inserts accounts in one transaction, skipping ids already present.
func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) (int, error) {
	inserted := 0
	err := r.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range accounts {
			batch.Queue(insertAccountSQL+` ON CONFLICT (account_id) DO NOTHING`, accountArgs(mapping.ToModelAccount(a))...)
		}
		br := tx.SendBatch(ctx, batch)
		for range accounts {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return dbError(err, "failed to insert accounts")
			}
			inserted += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return dbError(err, "failed to insert accounts")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Accounts saved", slog.Int("requested", len(accounts)), slog.Int("inserted", inserted))
	return inserted, nil
}

// applyBalanceChanges adds each delta to its account inside tx. Rows are
// updated in id order so concurrent commits lock accounts in the same order.
// A missing account or an overflowing balance aborts the transaction.
func applyBalanceChanges(ctx context.Context, tx pgx.Tx, changes map[string]domain.Money, entry domain.JournalEntry) error {
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		var current int64
		err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE account_id = $1 FOR UPDATE`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewAppError(apperrors.ErrNotFound, "account "+id+" not found", nil)
		}
		if err != nil {
			return dbError(err, "failed to lock account "+id)
		}
		balance, err := accounting.ApplyBalanceChange(id, domain.Money(current), changes[id])
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE accounts SET balance = $1, last_updated_at = $2, last_updated_by = $3 WHERE account_id = $4`,
			int64(balance), entry.LastUpdatedAt, entry.LastUpdatedBy, id); err != nil {
			return dbError(err, "failed to update balance of account "+id)
		}
	}
	return nil
}
