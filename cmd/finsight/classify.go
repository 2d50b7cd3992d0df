package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/finsight-io/finsight/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify a single transaction from the command line",
		Long: `Run the categorization lexicon against an ad-hoc transaction and print
the resulting category, confidence, and alternatives as JSON.

Examples:
  finsight classify --merchant "Esselunga Milano" --amount 54.30
  finsight classify --description "NETFLIX.COM AMSTERDAM" --amount 15.99`,
		RunE: runClassify,
	}

	cmd.Flags().String("merchant", "", "Merchant name")
	cmd.Flags().String("description", "", "Raw transaction description")
	cmd.Flags().Float64("amount", 0, "Transaction amount (positive values are treated as expenses)")
	cmd.Flags().String("account", "", "Account ID for confirmation lookups")

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	merchant, _ := cmd.Flags().GetString("merchant")
	description, _ := cmd.Flags().GetString("description")
	amount, _ := cmd.Flags().GetFloat64("amount")
	account, _ := cmd.Flags().GetString("account")

	store, err := newStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	eng, err := newEngine(store)
	if err != nil {
		return err
	}

	if amount > 0 {
		amount = -amount
	}

	classification, err := eng.Classify(cmd.Context(), model.Transaction{
		ID:           "adhoc",
		AccountID:    account,
		MerchantName: merchant,
		Description:  description,
		Amount:       amount,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(classification)
}
