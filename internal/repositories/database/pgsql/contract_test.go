package pgsql_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/internal/repositories/storetest"
	"github.com/SscSPs/ledger_core/pkg/database"
)

// testDatabaseURL names a disposable database; every table in it is
// truncated between tests.
const testDatabaseURL = "LEDGER_TEST_PGSQL_URL"

func TestPgxRepositoryContract(t *testing.T) {
	url := os.Getenv(testDatabaseURL)
	if url == "" {
		t.Skipf("%s not set", testDatabaseURL)
	}
	ctx := context.Background()
	require.NoError(t, database.MigrateUp(database.EnginePostgres, url))

	pool, err := database.NewPgxPool(ctx, url, database.PoolOptions{MaxConns: 4, Ping: true})
	require.NoError(t, err)
	t.Cleanup(func() { database.ClosePgxPool(pool) })

	suite.Run(t, &storetest.ContractSuite{
		NewProvider: func(t *testing.T) portsrepo.RepositoryProvider {
			_, err := pool.Exec(ctx, `TRUNCATE journal_lines, journal_entries, accounts, entry_sequences, accounting_periods, rule_settings CASCADE`)
			require.NoError(t, err)
			return pgsql.NewRepositoryProvider(pool, 3)
		},
	})
}
