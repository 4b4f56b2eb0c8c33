package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

const entryColumns = `entry_id, number, entry_date, description, total_debit, total_credit, status, source, event_kind, reversal_of,
		created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_no, account_id, account_name, description, debit, credit`

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

// withLines loads the lines of each entry row and maps the result.
func (r *PgxJournalRepository) withLines(ctx context.Context, q querier, rows []models.JournalEntry) ([]domain.JournalEntry, error) {
	if len(rows) == 0 {
		return []domain.JournalEntry{}, nil
	}
	ids := make([]string, len(rows))
	for i, m := range rows {
		ids[i] = m.EntryID
	}
	lineRows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY entry_id, line_no`, ids)
	if err != nil {
		return nil, dbError(err, "failed to query journal lines")
	}
	lines, err := pgx.CollectRows(lineRows, pgx.RowToStructByName[models.JournalLine])
	if err != nil {
		return nil, dbError(err, "failed to scan journal lines")
	}
	byEntry := make(map[string][]models.JournalLine, len(rows))
	for _, l := range lines {
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}

	out := make([]domain.JournalEntry, len(rows))
	for i, m := range rows {
		out[i] = mapping.ToDomainJournalEntry(m, byEntry[m.EntryID])
	}
	return out, nil
}

func (r *PgxJournalRepository) queryEntries(ctx context.Context, q querier, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query journal entries")
	}
	found, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.JournalEntry])
	if err != nil {
		return nil, dbError(err, "failed to scan journal entries")
	}
	return r.withLines(ctx, q, found)
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	found, err := r.queryEntries(ctx, r.Pool, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = $1`, entryID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("journal entry", entryID)
	}
	return &found[0], nil
}

// ListEntries pages through entries newest first. The cursor compares the
// (date, created_at, id) tuple so pages never repeat or skip rows.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken string) ([]domain.JournalEntry, string, error) {
	limit = pagination.ClampLimit(limit)

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conds = append(conds, "status = "+arg(string(filter.Status)))
	}
	if filter.From != nil {
		conds = append(conds, "entry_date >= "+arg(domain.DateOf(*filter.From)))
	}
	if filter.To != nil {
		conds = append(conds, "entry_date <= "+arg(domain.DateOf(*filter.To)))
	}
	if nextToken != "" {
		cursor, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", apperrors.NewAppError(apperrors.ErrValidation, "invalid nextToken", err)
		}
		conds = append(conds, fmt.Sprintf("(entry_date, created_at, entry_id) < (%s, %s, %s)",
			arg(domain.DateOf(cursor.Date)), arg(cursor.CreatedAt), arg(cursor.ID)))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT " + arg(limit+1)

	found, err := r.queryEntries(ctx, r.Pool, query, args...)
	if err != nil {
		return nil, "", err
	}
	if len(found) <= limit {
		return found, "", nil
	}
	page := found[:limit]
	last := page[len(page)-1]
	return page, pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.EntryID}), nil
}

// FindDuplicates matches committed entries on date, total debit and normalized description.
func (r *PgxJournalRepository) FindDuplicates(ctx context.Context, date time.Time, description string, totalDebit domain.Money, excludeID string) ([]domain.JournalEntry, error) {
	return r.queryEntries(ctx, r.Pool, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE entry_date = $1
		  AND total_debit = $2
		  AND lower(btrim(description)) = $3
		  AND status IN ($4, $5)
		  AND entry_id <> $6
		ORDER BY number`,
		domain.DateOf(date), int64(totalDebit), strings.ToLower(strings.TrimSpace(description)),
		string(domain.StatusPosted), string(domain.StatusApproved), excludeID)
}

// FindReversalOf returns the entry reversing entryID.
func (r *PgxJournalRepository) FindReversalOf(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	found, err := r.queryEntries(ctx, r.Pool, `SELECT `+entryColumns+` FROM journal_entries WHERE reversal_of = $1`, entryID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("reversal of", entryID)
	}
	return &found[0], nil
}

// SaveEntry inserts a new entry with its lines.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return insertEntry(ctx, tx, entry)
	})
}

// UpdateEntry rewrites a stored draft and its lines.
func (r *PgxJournalRepository) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	return r.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		stored, err := lockDraft(ctx, tx, entry.EntryID)
		if err != nil {
			return err
		}
		if !stored {
			return notFound("journal entry", entry.EntryID)
		}
		return rewriteEntry(ctx, tx, entry)
	})
}

// CommitEntry stores the committed entry and applies balance changes in one
// transaction. The row lock on a stored entry makes a concurrent second
// commit of the same draft fail the draft check. The SHARE lock on the
// period table waits out any running period mutation and blocks new ones
// until the commit ends.
func (r *PgxJournalRepository) CommitEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]domain.Money) error {
	err := r.withTx(ctx, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE accounting_periods IN SHARE MODE`); err != nil {
			return dbError(err, "failed to lock accounting periods")
		}
		periods, err := listPeriods(ctx, tx)
		if err != nil {
			return err
		}
		if err := domain.EnsureOpenIn(periods, entry.Date); err != nil {
			return err
		}

		stored, err := lockDraft(ctx, tx, entry.EntryID)
		switch {
		case err != nil:
			return err
		case stored:
			if err := rewriteEntry(ctx, tx, entry); err != nil {
				return err
			}
		default:
			if err := insertEntry(ctx, tx, entry); err != nil {
				return err
			}
		}
		return applyBalanceChanges(ctx, tx, balanceChanges, entry)
	})
	if err != nil {
		return err
	}
	middleware.GetLoggerFromCtx(ctx).Debug("Journal entry committed",
		slog.String("entry_id", entry.EntryID), slog.String("status", string(entry.Status)), slog.Int("accounts", len(balanceChanges)))
	return nil
}

// NextEntryNumber increments the per-prefix counter and returns the new value.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context, prefix string) (int64, error) {
	var value int64
	err := r.Pool.QueryRow(ctx, `
		INSERT INTO entry_sequences (prefix, value) VALUES ($1, 1)
		ON CONFLICT (prefix) DO UPDATE SET value = entry_sequences.value + 1
		RETURNING value`, prefix).Scan(&value)
	if err != nil {
		return 0, dbError(err, "failed to allocate entry number for prefix "+prefix)
	}
	return value, nil
}

// lockDraft locks the stored entry row. It reports false when the entry is
// not stored and fails when the stored entry is no longer a draft.
func lockDraft(ctx context.Context, tx pgx.Tx, entryID string) (bool, error) {
	var status string
	err := tx.QueryRow(ctx, `SELECT status FROM journal_entries WHERE entry_id = $1 FOR UPDATE`, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dbError(err, "failed to lock journal entry "+entryID)
	}
	if domain.JournalStatus(status) != domain.StatusDraft {
		return true, &domain.EntryError{
			Kind:    domain.KindInvalidTransition,
			EntryID: entryID,
			Detail:  fmt.Sprintf("entry is %s, not a draft", status),
		}
	}
	return true, nil
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m, lines := mapping.ToModelJournalEntry(entry)
	_, err := tx.Exec(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.EntryID, m.Number, m.EntryDate, m.Description, m.TotalDebit, m.TotalCredit, m.Status, m.Source,
		m.EventKind, m.ReversalOf, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return dbError(err, "failed to insert journal entry "+m.EntryID)
	}
	return insertLines(ctx, tx, lines)
}

func rewriteEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	m, lines := mapping.ToModelJournalEntry(entry)
	_, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET entry_date = $2, description = $3, total_debit = $4, total_credit = $5, status = $6,
		    last_updated_at = $7, last_updated_by = $8
		WHERE entry_id = $1`,
		m.EntryID, m.EntryDate, m.Description, m.TotalDebit, m.TotalCredit, m.Status, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return dbError(err, "failed to update journal entry "+m.EntryID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1`, m.EntryID); err != nil {
		return dbError(err, "failed to replace lines of journal entry "+m.EntryID)
	}
	return insertLines(ctx, tx, lines)
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []models.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(`INSERT INTO journal_lines (`+lineColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			l.LineID, l.EntryID, l.LineNo, l.AccountID, l.AccountName, l.Description, l.Debit, l.Credit)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return dbError(err, "failed to insert journal lines")
	}
	return nil
}
