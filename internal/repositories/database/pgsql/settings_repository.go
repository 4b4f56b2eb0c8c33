package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/models"
	"github.com/SscSPs/ledger_core/internal/utils/mapping"
)

type PgxSettingsRepository struct {
	BaseRepository
}

func newPgxSettingsRepository(pool *pgxpool.Pool) portsrepo.SettingsRepository {
	return &PgxSettingsRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

// LoadRuleSettings reads the single settings row.
func (r *PgxSettingsRepository) LoadRuleSettings(ctx context.Context) (*domain.RuleSettings, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT enforce_validation, allow_backdated_entries, max_entry_amount, require_approval,
		       check_duplicate_entries, allow_negative_inventory, updated_at, updated_by
		FROM rule_settings WHERE id = 1`)
	if err != nil {
		return nil, dbError(err, "failed to query rule settings")
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.RuleSettings])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, dbError(err, "failed to scan rule settings")
	}
	d := mapping.ToDomainRuleSettings(m)
	return &d, nil
}

// SaveRuleSettings upserts the single settings row.
func (r *PgxSettingsRepository) SaveRuleSettings(ctx context.Context, settings domain.RuleSettings, actor string) error {
	m := mapping.ToModelRuleSettings(settings, actor, time.Now().UTC())
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO rule_settings (id, enforce_validation, allow_backdated_entries, max_entry_amount, require_approval,
			check_duplicate_entries, allow_negative_inventory, updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			enforce_validation = EXCLUDED.enforce_validation,
			allow_backdated_entries = EXCLUDED.allow_backdated_entries,
			max_entry_amount = EXCLUDED.max_entry_amount,
			require_approval = EXCLUDED.require_approval,
			check_duplicate_entries = EXCLUDED.check_duplicate_entries,
			allow_negative_inventory = EXCLUDED.allow_negative_inventory,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by`,
		m.EnforceValidation, m.AllowBackdatedEntries, m.MaxEntryAmount, m.RequireApproval,
		m.CheckDuplicateEntries, m.AllowNegativeInventory, m.UpdatedAt, m.UpdatedBy)
	if err != nil {
		return dbError(err, "failed to save rule settings")
	}
	return nil
}
