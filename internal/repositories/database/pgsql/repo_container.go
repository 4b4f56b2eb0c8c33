package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository onto one pool. periodRetries
// bounds how often a period mutation is retried after a serialization failure.
func NewRepositoryProvider(dbPool *pgxpool.Pool, periodRetries int) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:  newPgxAccountRepository(dbPool),
		JournalRepo:  newPgxJournalRepository(dbPool),
		PeriodRepo:   newPgxPeriodRepository(dbPool, periodRetries),
		SettingsRepo: newPgxSettingsRepository(dbPool),
	}
}
