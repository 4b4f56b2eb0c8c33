package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/accounting"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

const accountColumns = `account_id, number, name, account_type, parent_account_id, description, is_active, balance,
	created_at, created_by, last_updated_at, last_updated_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		m      models.Account
		parent sql.NullString
		audit  auditColumns
	)
	dest := append([]any{&m.AccountID, &m.Number, &m.Name, &m.AccountType, &parent, &m.Description, &m.IsActive, &m.Balance}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.Account{}, err
	}
	var err error
	if m.CreatedAt, m.LastUpdatedAt, err = audit.parse(); err != nil {
		return domain.Account{}, err
	}
	m.CreatedBy, m.LastUpdatedBy = audit.createdBy, audit.updatedBy
	m.ParentAccountID = stringPtr(parent)
	return mapping.ToDomainAccount(m), nil
}

func queryAccounts(ctx context.Context, q queryer, query string, args ...any) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query accounts")
	}
	defer rows.Close()

	out := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, dbError(err, "failed to scan account row")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "error iterating account rows")
	}
	return out, nil
}

func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	a, err := scanAccount(s.reader.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ?`, accountID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("account", accountID)
	}
	if err != nil {
		return nil, dbError(err, "failed to find account "+accountID)
	}
	return &a, nil
}

func (s *Store) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}
	found, err := queryAccounts(ctx, s.reader,
		`SELECT `+accountColumns+` FROM accounts WHERE account_id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, a := range found {
		out[a.AccountID] = a
	}
	return out, nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return queryAccounts(ctx, s.reader, `SELECT `+accountColumns+` FROM accounts ORDER BY number`)
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	if _, err := s.writer.ExecContext(ctx, insertAccountSQL, accountArgs(account)...); err != nil {
		return dbError(err, "failed to insert account "+account.AccountID)
	}
	return nil
}

func (s *Store) SaveAccounts(ctx context.Context, accounts []domain.Account) (int, error) {
	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range accounts {
			res, err := tx.ExecContext(ctx, insertAccountSQL+` ON CONFLICT (account_id) DO NOTHING`, accountArgs(a)...)
			if err != nil {
				return dbError(err, "failed to insert account "+a.AccountID)
			}
			n, _ := res.RowsAffected()
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

const insertAccountSQL = `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func accountArgs(a domain.Account) []any {
	m := mapping.ToModelAccount(a)
	return []any{
		m.AccountID, m.Number, m.Name, m.AccountType, nullString(m.ParentAccountID), m.Description, m.IsActive, m.Balance,
		formatTime(m.CreatedAt), m.CreatedBy, formatTime(m.LastUpdatedAt), m.LastUpdatedBy,
	}
}

// applyBalanceChanges adds each delta to its account inside tx, in id order.
func applyBalanceChanges(ctx context.Context, tx *sql.Tx, changes map[string]domain.Money, entry domain.JournalEntry) error {
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		var current int64
		err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE account_id = ?`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NewAppError(apperrors.ErrNotFound, "account "+id+" not found", nil)
		}
		if err != nil {
			return dbError(err, "failed to read balance of account "+id)
		}
		balance, err := accounting.ApplyBalanceChange(id, domain.Money(current), changes[id])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET balance = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?`,
			int64(balance), formatTime(entry.LastUpdatedAt), entry.LastUpdatedBy, id); err != nil {
			return dbError(err, "failed to update balance of account "+id)
		}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
