package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finsight-io/finsight/internal/engine"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [accountID...]",
		Short: "Run the full analysis pipeline over stored transactions",
		Long: `Classify the transaction history of one or more accounts and derive
anomalies, recurring patterns, waste items, and savings suggestions.

With no arguments every known account is analyzed.`,
		RunE: runAnalyze,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Print every detected item, not just the summary")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	ctx := cmd.Context()

	store, err := newStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	accounts := args
	if len(accounts) == 0 {
		accounts, err = store.ListAccounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no accounts found; import transactions first")
	}

	bar := progressbar.NewOptions(len(accounts),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Analyzing accounts..."),
	)

	var results []engine.AccountResult
	for _, accountID := range accounts {
		result, analysisErr := eng.Analyze(ctx, accountID)
		results = append(results, engine.AccountResult{
			AccountID: accountID,
			Result:    result,
			Err:       analysisErr,
		})
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			slog.Error("analysis failed", "account_id", res.AccountID, "error", res.Err)
			continue
		}
		printAccountSummary(res.Result, verbose)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accounts failed", failed, len(accounts))
	}
	return nil
}

func printAccountSummary(result *engine.AnalysisResult, verbose bool) {
	fmt.Printf("Account %s\n", result.AccountID)
	fmt.Printf("  anomalies:   %d\n", len(result.Anomalies))
	fmt.Printf("  patterns:    %d\n", len(result.Patterns))
	fmt.Printf("  waste items: %d\n", len(result.Waste))
	fmt.Printf("  suggestions: %d\n", len(result.Suggestions))

	for _, sug := range result.Suggestions {
		fmt.Printf("  [%s] %s (save %.2f/yr, confidence %.0f%%)\n",
			sug.Priority, sug.Explanation, sug.PotentialSavings, sug.Confidence*100)
	}

	if !verbose {
		fmt.Println()
		return
	}

	for _, a := range result.Anomalies {
		fmt.Printf("  anomaly: %s %s %s\n", a.Severity, a.Type, a.Explanation)
	}
	for _, p := range result.Patterns {
		fmt.Printf("  pattern: %s %s %.2f (next ~%s)\n",
			p.MerchantName, p.Frequency, p.AverageAmount,
			p.NextExpectedDate.Format("2006-01-02"))
	}
	for _, w := range result.Waste {
		fmt.Printf("  waste: %s %s save %.2f/yr\n",
			w.MerchantName, w.Type, w.PotentialSaving)
	}
	fmt.Println()
}
