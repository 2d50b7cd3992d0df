// Package classify assigns categories to transactions using the lexicon and
// prior user confirmations.
package classify

import (
	"fmt"
	"strings"

	"github.com/finsight-io/finsight/internal/common"
	"github.com/finsight-io/finsight/internal/lexicon"
	"github.com/finsight-io/finsight/internal/model"
	"github.com/finsight-io/finsight/internal/scoring"
)

// fallbackCategory is assigned when no lexicon rule matches.
const fallbackCategory = "Other"

// Config holds the classifier's tunable scoring parameters.
type Config struct {
	// ConfidenceMin and ConfidenceMax bound lexicon-derived confidence.
	ConfidenceMin float64
	ConfidenceMax float64
	// ConfirmationThreshold is the number of matching user confirmations
	// required to short-circuit the lexicon with confidence 1.0.
	ConfirmationThreshold int
	// MaxAlternatives caps the ranked alternative list.
	MaxAlternatives int
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		ConfidenceMin:         0.70,
		ConfidenceMax:         0.95,
		ConfirmationThreshold: 3,
		MaxAlternatives:       2,
	}
}

// Classifier assigns a category, subcategory, and confidence to a
// transaction. It is a pure function of its inputs and safe for concurrent
// use.
type Classifier struct {
	lexicon *lexicon.Lexicon
	config  Config
}

// New creates a classifier over the given lexicon.
func New(lex *lexicon.Lexicon) *Classifier {
	return NewWithConfig(lex, DefaultConfig())
}

// NewWithConfig creates a classifier with custom scoring parameters.
func NewWithConfig(lex *lexicon.Lexicon, config Config) *Classifier {
	if config.ConfidenceMax <= config.ConfidenceMin {
		config = DefaultConfig()
	}
	return &Classifier{lexicon: lex, config: config}
}

// Classify assigns a category to the transaction. Prior user-confirmed
// classifications for the same merchant, when supplied, short-circuit the
// lexicon once their count reaches the configured threshold.
func (c *Classifier) Classify(txn model.Transaction, prior []model.Classification) (model.Classification, error) {
	if strings.TrimSpace(txn.Description) == "" && strings.TrimSpace(txn.MerchantName) == "" {
		return model.Classification{}, common.ValidationError("transaction", "requires a description or merchant name")
	}

	if confirmed, ok := c.fromConfirmations(txn, prior); ok {
		return confirmed, nil
	}

	searchText := strings.ToLower(txn.Description + " " + txn.MerchantName)
	matches := c.lexicon.Match(searchText)
	if len(matches) == 0 {
		return model.Classification{
			TransactionID: txn.ID,
			Category:      fallbackCategory,
			Confidence:    0.5,
			Tags:          []string{"unmatched"},
			Explanation:   "no lexicon rule matched the description or merchant",
		}, nil
	}

	primary := matches[0]
	confidence := c.matchConfidence(primary)

	return model.Classification{
		TransactionID: txn.ID,
		Category:      primary.Category,
		Subcategory:   primary.Subcategory,
		Confidence:    confidence,
		Tags:          []string{"lexicon-match"},
		Explanation:   fmt.Sprintf("matched %q in the transaction text", primary.MatchToken),
		Alternatives:  c.alternatives(matches, primary, confidence),
	}, nil
}

// fromConfirmations returns a confidence-1.0 classification when the
// merchant has enough prior user confirmations agreeing on one category.
func (c *Classifier) fromConfirmations(txn model.Transaction, prior []model.Classification) (model.Classification, bool) {
	type tally struct {
		subcategory string
		count       int
	}
	counts := make(map[string]*tally)
	for _, p := range prior {
		if !p.ConfirmedByUser || p.Category == "" {
			continue
		}
		t, ok := counts[p.Category]
		if !ok {
			t = &tally{}
			counts[p.Category] = t
		}
		t.count++
		if p.Subcategory != "" {
			t.subcategory = p.Subcategory
		}
	}

	var bestCategory string
	var best *tally
	for cat, t := range counts {
		if best == nil || t.count > best.count || (t.count == best.count && cat < bestCategory) {
			bestCategory, best = cat, t
		}
	}

	if best == nil || best.count < c.config.ConfirmationThreshold {
		return model.Classification{}, false
	}

	return model.Classification{
		TransactionID: txn.ID,
		Category:      bestCategory,
		Subcategory:   best.subcategory,
		Confidence:    1.0,
		Tags:          []string{"user-confirmed"},
		Explanation: fmt.Sprintf("confirmed as %s by %d prior user classifications of this merchant",
			bestCategory, best.count),
	}, true
}

// matchConfidence scores a lexicon match inside the configured confidence
// range. A subcategory match lands in the upper portion of the range, a
// category-only match in the lower; longer tokens score higher within each.
func (c *Classifier) matchConfidence(rule lexicon.Rule) float64 {
	span := c.config.ConfidenceMax - c.config.ConfidenceMin
	tokenFactor := scoring.Clamp01(float64(len(rule.MatchToken)) / 12)

	specificity := 0.4 * tokenFactor
	if rule.Subcategory != "" {
		specificity = 0.6 + 0.4*tokenFactor
	}

	return c.config.ConfidenceMin + span*specificity
}

// alternatives builds the ranked alternative list from the remaining
// matches: the next distinct categories, each proportionally discounted.
func (c *Classifier) alternatives(matches []lexicon.Rule, primary lexicon.Rule, primaryConfidence float64) []model.CategoryAlternative {
	var alts []model.CategoryAlternative
	seen := map[string]bool{primary.Category: true}

	for _, m := range matches[1:] {
		if seen[m.Category] {
			continue
		}
		seen[m.Category] = true

		discount := 0.5 - 0.15*float64(len(alts))
		alts = append(alts, model.CategoryAlternative{
			Category:    m.Category,
			Subcategory: m.Subcategory,
			Confidence:  primaryConfidence * discount,
		})
		if len(alts) >= c.config.MaxAlternatives {
			break
		}
	}

	return alts
}
