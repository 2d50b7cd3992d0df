package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight-io/finsight/internal/model"
)

func suggestionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List and act on savings suggestions",
	}

	cmd.AddCommand(suggestionsListCmd())
	cmd.AddCommand(suggestionsActionCmd("implement", model.ActionImplement,
		"Mark a suggestion as implemented"))
	cmd.AddCommand(suggestionsActionCmd("dismiss", model.ActionDismiss,
		"Dismiss a suggestion; it will not be re-derived for 30 days"))

	return cmd
}

func suggestionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <accountID>",
		Short: "List stored suggestions for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			suggestions, err := store.ListSuggestions(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Println("No suggestions. Run `finsight analyze` first.")
				return nil
			}

			for _, sug := range suggestions {
				fmt.Printf("%s  [%s/%s]  %s\n", sug.ID, sug.Priority, sug.Status, sug.Explanation)
				fmt.Printf("    save %.2f/yr (%.2f/mo), confidence %.0f%%\n",
					sug.PotentialSavings, sug.MonthlySavings, sug.Confidence*100)
				for _, step := range sug.ActionSteps {
					fmt.Printf("    - %s\n", step)
				}
			}
			return nil
		},
	}
}

func suggestionsActionCmd(use string, action model.SuggestionAction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <suggestionID>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := newStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			if err := store.RecordAction(cmd.Context(), args[0], action); err != nil {
				return err
			}
			fmt.Printf("Suggestion %s: %s\n", args[0], action)
			return nil
		},
	}
}
