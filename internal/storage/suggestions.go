package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finsight-io/finsight/internal/common"
	"github.com/finsight-io/finsight/internal/model"
)

// SaveSuggestions upserts one analysis run's suggestions keyed by
// account+rule. Rows the user already implemented or dismissed keep their
// status and ID; only still-active rows pick up the recomputed scoring.
func (s *SQLiteStorage) SaveSuggestions(ctx context.Context, accountID string, suggestions []model.Suggestion) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return err
	}
	for i := range suggestions {
		if err := validateSuggestion(&suggestions[i]); err != nil {
			return fmt.Errorf("suggestion at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO suggestions
			(id, account_id, rule_key, merchant_name, category, priority, status,
			 explanation, action_steps, potential_savings, monthly_savings,
			 confidence, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, rule_key) DO UPDATE SET
			merchant_name = excluded.merchant_name,
			category = excluded.category,
			priority = excluded.priority,
			explanation = excluded.explanation,
			action_steps = excluded.action_steps,
			potential_savings = excluded.potential_savings,
			monthly_savings = excluded.monthly_savings,
			confidence = excluded.confidence,
			score = excluded.score,
			created_at = excluded.created_at
		WHERE suggestions.status = 'ACTIVE'`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, sg := range suggestions {
		steps, err := json.Marshal(sg.ActionSteps)
		if err != nil {
			return fmt.Errorf("failed to encode action steps: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			sg.ID, accountID, sg.RuleKey, sg.MerchantName,
			string(sg.Category), string(sg.Priority), string(sg.Status),
			sg.Explanation, string(steps),
			sg.PotentialSavings, sg.MonthlySavings, sg.Confidence, sg.Score,
			sg.CreatedAt); err != nil {
			return fmt.Errorf("failed to upsert suggestion %s: %w", sg.ID, err)
		}
	}

	return tx.Commit()
}

// GetSuggestion returns a stored suggestion by ID.
func (s *SQLiteStorage) GetSuggestion(ctx context.Context, suggestionID string) (*model.Suggestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(suggestionID, "suggestionID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, rule_key, merchant_name, category, priority, status,
		       explanation, action_steps, potential_savings, monthly_savings,
		       confidence, score, created_at
		FROM suggestions WHERE id = ?`, suggestionID)

	var sg model.Suggestion
	var merchant, explanation, steps sql.NullString
	var category, priority, status string
	err := row.Scan(&sg.ID, &sg.RuleKey, &merchant, &category, &priority, &status,
		&explanation, &steps, &sg.PotentialSavings, &sg.MonthlySavings,
		&sg.Confidence, &sg.Score, &sg.CreatedAt)
	switch {
	case err == sql.ErrNoRows:
		return nil, common.NotFoundError("suggestion", suggestionID)
	case err != nil:
		return nil, fmt.Errorf("failed to query suggestion: %w", err)
	}

	sg.MerchantName = merchant.String
	sg.Explanation = explanation.String
	sg.Category = model.SuggestionCategory(category)
	sg.Priority = model.Priority(priority)
	sg.Status = model.SuggestionStatus(status)
	if steps.String != "" {
		if err := json.Unmarshal([]byte(steps.String), &sg.ActionSteps); err != nil {
			return nil, fmt.Errorf("failed to decode action steps: %w", err)
		}
	}

	return &sg, nil
}

// RecordAction applies an implement/dismiss action to a stored suggestion.
func (s *SQLiteStorage) RecordAction(ctx context.Context, suggestionID string, action model.SuggestionAction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(suggestionID, "suggestionID"); err != nil {
		return err
	}
	status, ok := action.Status()
	if !ok {
		return common.ValidationError("action", fmt.Sprintf("%q is not a known suggestion action", action))
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE suggestions SET status = ?, acted_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), suggestionID)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check action result: %w", err)
	}
	if affected == 0 {
		return common.NotFoundError("suggestion", suggestionID)
	}
	return nil
}

// DismissedRuleKeys returns the account's rule keys dismissed on or after
// the given time, mapped to when they were dismissed.
func (s *SQLiteStorage) DismissedRuleKeys(ctx context.Context, accountID string, since time.Time) (map[string]time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_key, acted_at
		FROM suggestions
		WHERE account_id = ? AND status = 'DISMISSED' AND acted_at >= ?`,
		accountID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query dismissals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	dismissed := make(map[string]time.Time)
	for rows.Next() {
		var ruleKey string
		var actedAt time.Time
		if err := rows.Scan(&ruleKey, &actedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dismissal: %w", err)
		}
		dismissed[ruleKey] = actedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dismissals: %w", err)
	}

	return dismissed, nil
}

// ListSuggestions returns the stored suggestions for an account, highest
// score first.
func (s *SQLiteStorage) ListSuggestions(ctx context.Context, accountID string) ([]model.Suggestion, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, rule_key, merchant_name, category, priority, status,
		       explanation, action_steps, potential_savings, monthly_savings,
		       confidence, score, created_at
		FROM suggestions
		WHERE account_id = ?
		ORDER BY score DESC, potential_savings DESC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query suggestions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var suggestions []model.Suggestion
	for rows.Next() {
		var sg model.Suggestion
		var merchant, explanation, steps sql.NullString
		var category, priority, status string
		if err := rows.Scan(&sg.ID, &sg.RuleKey, &merchant, &category, &priority, &status,
			&explanation, &steps, &sg.PotentialSavings, &sg.MonthlySavings,
			&sg.Confidence, &sg.Score, &sg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		sg.MerchantName = merchant.String
		sg.Explanation = explanation.String
		sg.Category = model.SuggestionCategory(category)
		sg.Priority = model.Priority(priority)
		sg.Status = model.SuggestionStatus(status)
		if steps.String != "" {
			if err := json.Unmarshal([]byte(steps.String), &sg.ActionSteps); err != nil {
				return nil, fmt.Errorf("failed to decode action steps: %w", err)
			}
		}
		suggestions = append(suggestions, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suggestions: %w", err)
	}

	return suggestions, nil
}
