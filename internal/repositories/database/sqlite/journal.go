package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
	"github.com/SscSPs/ledger_core/internal/utils/pagination"
)

const entryColumns = `entry_id, number, entry_date, description, total_debit, total_credit, status, source, event_kind, reversal_of,
	created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, line_no, account_id, account_name, description, debit, credit`

func scanEntry(row rowScanner) (models.JournalEntry, error) {
	var (
		m                     models.JournalEntry
		entryDate             string
		eventKind, reversalOf sql.NullString
		audit                 auditColumns
	)
	dest := append([]any{&m.EntryID, &m.Number, &entryDate, &m.Description, &m.TotalDebit, &m.TotalCredit,
		&m.Status, &m.Source, &eventKind, &reversalOf}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return m, err
	}
	var err error
	if m.EntryDate, err = parseDate(entryDate); err != nil {
		return m, err
	}
	if m.CreatedAt, m.LastUpdatedAt, err = audit.parse(); err != nil {
		return m, err
	}
	m.CreatedBy, m.LastUpdatedBy = audit.createdBy, audit.updatedBy
	m.EventKind, m.ReversalOf = stringPtr(eventKind), stringPtr(reversalOf)
	return m, nil
}

func queryEntries(ctx context.Context, q queryer, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err, "failed to query journal entries")
	}
	var found []models.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, dbError(err, "failed to scan journal entry row")
		}
		found = append(found, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "error iterating journal entry rows")
	}
	return withLines(ctx, q, found)
}

func withLines(ctx context.Context, q queryer, entries []models.JournalEntry) ([]domain.JournalEntry, error) {
	out := make([]domain.JournalEntry, len(entries))
	if len(entries) == 0 {
		return out, nil
	}
	args := make([]any, len(entries))
	for i, m := range entries {
		args[i] = m.EntryID
	}
	rows, err := q.QueryContext(ctx,
		`SELECT `+lineColumns+` FROM journal_lines WHERE entry_id IN (`+placeholders(len(args))+`) ORDER BY entry_id, line_no`, args...)
	if err != nil {
		return nil, dbError(err, "failed to query journal lines")
	}
	defer rows.Close()

	byEntry := make(map[string][]models.JournalLine, len(entries))
	for rows.Next() {
		var l models.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.AccountName, &l.Description, &l.Debit, &l.Credit); err != nil {
			return nil, dbError(err, "failed to scan journal line row")
		}
		byEntry[l.EntryID] = append(byEntry[l.EntryID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "error iterating journal line rows")
	}
	for i, m := range entries {
		out[i] = mapping.ToDomainJournalEntry(m, byEntry[m.EntryID])
	}
	return out, nil
}

func (s *Store) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	found, err := queryEntries(ctx, s.reader, `SELECT `+entryColumns+` FROM journal_entries WHERE entry_id = ?`, entryID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("journal entry", entryID)
	}
	return &found[0], nil
}

func (s *Store) ListEntries(ctx context.Context, filter domain.EntryFilter, limit int, nextToken string) ([]domain.JournalEntry, string, error) {
	limit = pagination.ClampLimit(limit)

	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.From != nil {
		conds = append(conds, "entry_date >= ?")
		args = append(args, formatDate(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "entry_date <= ?")
		args = append(args, formatDate(*filter.To))
	}
	if nextToken != "" {
		cursor, err := pagination.DecodeToken(nextToken)
		if err != nil {
			return nil, "", apperrors.NewAppError(apperrors.ErrValidation, "invalid nextToken", err)
		}
		conds = append(conds, "(entry_date, created_at, entry_id) < (?, ?, ?)")
		args = append(args, formatDate(cursor.Date), formatTime(cursor.CreatedAt), cursor.ID)
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT ?"
	args = append(args, limit+1)

	found, err := queryEntries(ctx, s.reader, query, args...)
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

func (s *Store) FindDuplicates(ctx context.Context, date time.Time, description string, totalDebit domain.Money, excludeID string) ([]domain.JournalEntry, error) {
	return queryEntries(ctx, s.reader, `
		SELECT `+entryColumns+`
		FROM journal_entries
		WHERE entry_date = ?
		  AND total_debit = ?
		  AND lower(trim(description)) = ?
		  AND status IN (?, ?)
		  AND entry_id <> ?
		ORDER BY number`,
		formatDate(date), int64(totalDebit), strings.ToLower(strings.TrimSpace(description)),
		string(domain.StatusPosted), string(domain.StatusApproved), excludeID)
}

func (s *Store) FindReversalOf(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	found, err := queryEntries(ctx, s.reader, `SELECT `+entryColumns+` FROM journal_entries WHERE reversal_of = ?`, entryID)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, notFound("reversal of", entryID)
	}
	return &found[0], nil
}

func (s *Store) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertEntry(ctx, tx, entry)
	})
}

func (s *Store) UpdateEntry(ctx context.Context, entry domain.JournalEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stored, err := requireDraft(ctx, tx, entry.EntryID)
		if err != nil {
			return err
		}
		if !stored {
			return notFound("journal entry", entry.EntryID)
		}
		return rewriteEntry(ctx, tx, entry)
	})
}

// CommitEntry reads the periods inside the writer transaction, so no period
// mutation can land between the open-period check and the balance update.
func (s *Store) CommitEntry(ctx context.Context, entry domain.JournalEntry, balanceChanges map[string]domain.Money) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		periods, err := listPeriods(ctx, tx)
		if err != nil {
			return err
		}
		if err := domain.EnsureOpenIn(periods, entry.Date); err != nil {
			return err
		}

		stored, err := requireDraft(ctx, tx, entry.EntryID)
		switch {
		case err != nil:
			return err
		case stored:
			err = rewriteEntry(ctx, tx, entry)
		default:
			err = insertEntry(ctx, tx, entry)
		}
		if err != nil {
			return err
		}
		return applyBalanceChanges(ctx, tx, balanceChanges, entry)
	})
}

func (s *Store) NextEntryNumber(ctx context.Context, prefix string) (int64, error) {
	var value int64
	err := s.writer.QueryRowContext(ctx, `
		INSERT INTO entry_sequences (prefix, value) VALUES (?, 1)
		ON CONFLICT (prefix) DO UPDATE SET value = value + 1
		RETURNING value`, prefix).Scan(&value)
	if err != nil {
		return 0, dbError(err, "failed to allocate entry number for prefix "+prefix)
	}
	return value, nil
}

// requireDraft reports whether the entry is stored and fails when it is no
// longer a draft.
func requireDraft(ctx context.Context, tx *sql.Tx, entryID string) (bool, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM journal_entries WHERE entry_id = ?`, entryID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, dbError(err, "failed to read journal entry "+entryID)
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

func insertEntry(ctx context.Context, tx *sql.Tx, entry domain.JournalEntry) error {
	m, lines := mapping.ToModelJournalEntry(entry)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.EntryID, m.Number, formatDate(m.EntryDate), m.Description, m.TotalDebit, m.TotalCredit, m.Status, m.Source,
		nullString(m.EventKind), nullString(m.ReversalOf),
		formatTime(m.CreatedAt), m.CreatedBy, formatTime(m.LastUpdatedAt), m.LastUpdatedBy)
	if err != nil {
		return dbError(err, "failed to insert journal entry "+m.EntryID)
	}
	return insertLines(ctx, tx, lines)
}

func rewriteEntry(ctx context.Context, tx *sql.Tx, entry domain.JournalEntry) error {
	m, lines := mapping.ToModelJournalEntry(entry)
	_, err := tx.ExecContext(ctx, `
		UPDATE journal_entries
		SET entry_date = ?, description = ?, total_debit = ?, total_credit = ?, status = ?,
		    last_updated_at = ?, last_updated_by = ?
		WHERE entry_id = ?`,
		formatDate(m.EntryDate), m.Description, m.TotalDebit, m.TotalCredit, m.Status,
		formatTime(m.LastUpdatedAt), m.LastUpdatedBy, m.EntryID)
	if err != nil {
		return dbError(err, "failed to update journal entry "+m.EntryID)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM journal_lines WHERE entry_id = ?`, m.EntryID); err != nil {
		return dbError(err, "failed to replace lines of journal entry "+m.EntryID)
	}
	return insertLines(ctx, tx, lines)
}

func insertLines(ctx context.Context, tx *sql.Tx, lines []models.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO journal_lines (`+lineColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dbError(err, "failed to prepare journal line insert")
	}
	defer stmt.Close()
	for _, l := range lines {
		if _, err := stmt.ExecContext(ctx, l.LineID, l.EntryID, l.LineNo, l.AccountID, l.AccountName, l.Description, l.Debit, l.Credit); err != nil {
			return dbError(err, "failed to insert journal line "+l.LineID)
		}
	}
	return nil
}
