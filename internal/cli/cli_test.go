package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/ledger_core/internal/core/domain"
)

const balancedEntry = `{
  "date": "2024-03-15",
  "description": "Till sale",
  "lines": [
    {"accountID": "1110", "debit": "20.00"},
    {"accountID": "4100", "credit": "20.00"}
  ]
}`

const unbalancedEntry = `{
  "date": "2024-03-15",
  "description": "Till sale",
  "lines": [
    {"accountID": "1110", "debit": "20.00"},
    {"accountID": "4100", "credit": "19.00"}
  ]
}`

func runValidate(t *testing.T, body string) (domain.ValidationResult, error) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	path := filepath.Join(t.TempDir(), "entry.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "--file", path})
	err := cmd.ExecuteContext(context.Background())

	var result domain.ValidationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result), out.String())
	return result, err
}

func TestValidateCommand_Balanced(t *testing.T) {
	result, err := runValidate(t, balancedEntry)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidateCommand_Unbalanced(t *testing.T) {
	result, err := runValidate(t, unbalancedEntry)
	assert.ErrorIs(t, err, errEntryInvalid)
	assert.False(t, result.IsValid)
	assert.True(t, result.Has(domain.KindUnbalanced))
}

func TestValidateCommand_RequiresFile(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"validate"})
	assert.Error(t, cmd.Execute())
}

func TestMigrateRejectsMemoryDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "up"})
	assert.ErrorContains(t, cmd.Execute(), "no schema to migrate")
}

func TestMigrateUpSQLite(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "ledger.db"))
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"migrate", "up"})
	require.NoError(t, cmd.Execute())

	cmd = NewRootCmd()
	cmd.SetArgs([]string{"migrate", "down", "--steps", "1"})
	assert.NoError(t, cmd.Execute())
}
