package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX files exported from your bank.

Examples:
  finsight import ~/Downloads/chase_jan_2024.qfx
  finsight import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}

	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing OFX files", "file_count", len(allFiles), "dry_run", dryRun)

	var allTransactions []model.Transaction
	seen := make(map[string]bool) // hash-based deduplication across files

	parser := ofx.NewParser()

	for _, filePath := range allFiles {
		f, err := os.Open(filePath)
		if err != nil {
			slog.Error("Failed to open file", "file", filePath, "error", err)
			continue
		}

		transactions, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", filePath, "error", err)
			continue
		}

		added := 0
		for _, tx := range transactions {
			if !seen[tx.Hash] {
				seen[tx.Hash] = true
				allTransactions = append(allTransactions, tx)
				added++
			}
		}
		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions", len(transactions),
			"new", added)
	}

	if len(allTransactions) == 0 {
		return fmt.Errorf("no transactions found in any file")
	}

	if dryRun {
		fmt.Printf("Dry run: %d transactions would be imported\n", len(allTransactions))
		for _, tx := range allTransactions {
			fmt.Printf("  %s  %-30s %10.2f  %s\n",
				tx.Date.Format("2006-01-02"), tx.MerchantName, tx.Amount, tx.AccountID)
		}
		return nil
	}

	store, err := newStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	fmt.Printf("Imported %d transactions from %d files\n", len(allTransactions), len(allFiles))
	return nil
}
