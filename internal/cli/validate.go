package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/ledger_core/internal/audit"
	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/dto"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/repositories/memory"
)

// errEntryInvalid makes the process exit non-zero after the result is printed.
var errEntryInvalid = errors.New("journal entry is invalid")

func newValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a journal entry file against the default chart and configured rules",
		Long: "Reads a journal entry in the API request format and prints the validation result as JSON.\n" +
			"Nothing is stored. Use --file - to read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			in, err := readEntry(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			result, err := validateOffline(cmd.Context(), cfg.Rules, in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.IsValid {
				return errEntryInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the entry JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readEntry(stdin io.Reader, path string) (domain.EntryInput, error) {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.EntryInput{}, fmt.Errorf("failed to read entry: %w", err)
	}

	var req dto.EntryRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return domain.EntryInput{}, fmt.Errorf("failed to decode entry: %w", err)
	}
	return req.ToInput()
}

// validateOffline runs the journal validator over a throwaway in-memory
// ledger holding only the default chart.
func validateOffline(ctx context.Context, rules domain.RuleSettings, in domain.EntryInput) (domain.ValidationResult, error) {
	cfg := &config.Config{Rules: rules}
	container, err := services.NewServiceContainer(ctx, cfg, memory.NewStore().Provider(), audit.Fanout{})
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if _, err := container.Chart.SeedDefaultChart(ctx, "cli"); err != nil {
		return domain.ValidationResult{}, err
	}
	return container.Journal.ValidateInput(ctx, in, "cli")
}
