package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

func (s *Store) LoadRuleSettings(ctx context.Context) (*domain.RuleSettings, error) {
	var (
		m         models.RuleSettings
		ceiling   sql.NullInt64
		updatedAt string
	)
	err := s.reader.QueryRowContext(ctx, `
		SELECT enforce_validation, allow_backdated_entries, max_entry_amount, require_approval,
		       check_duplicate_entries, allow_negative_inventory, updated_at, updated_by
		FROM rule_settings WHERE id = 1`).Scan(
		&m.EnforceValidation, &m.AllowBackdatedEntries, &ceiling, &m.RequireApproval,
		&m.CheckDuplicateEntries, &m.AllowNegativeInventory, &updatedAt, &m.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, dbError(err, "failed to load rule settings")
	}
	if ceiling.Valid {
		m.MaxEntryAmount = &ceiling.Int64
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, dbError(err, "failed to parse rule settings timestamp")
	}
	d := mapping.ToDomainRuleSettings(m)
	return &d, nil
}

func (s *Store) SaveRuleSettings(ctx context.Context, settings domain.RuleSettings, actor string) error {
	m := mapping.ToModelRuleSettings(settings, actor, time.Now().UTC())
	var ceiling sql.NullInt64
	if m.MaxEntryAmount != nil {
		ceiling = sql.NullInt64{Int64: *m.MaxEntryAmount, Valid: true}
	}
	_, err := s.writer.ExecContext(ctx, `
		INSERT INTO rule_settings (id, enforce_validation, allow_backdated_entries, max_entry_amount, require_approval,
			check_duplicate_entries, allow_negative_inventory, updated_at, updated_by)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			enforce_validation = excluded.enforce_validation,
			allow_backdated_entries = excluded.allow_backdated_entries,
			max_entry_amount = excluded.max_entry_amount,
			require_approval = excluded.require_approval,
			check_duplicate_entries = excluded.check_duplicate_entries,
			allow_negative_inventory = excluded.allow_negative_inventory,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by`,
		m.EnforceValidation, m.AllowBackdatedEntries, ceiling, m.RequireApproval,
		m.CheckDuplicateEntries, m.AllowNegativeInventory, formatTime(m.UpdatedAt), m.UpdatedBy)
	if err != nil {
		return dbError(err, "failed to save rule settings")
	}
	return nil
}
