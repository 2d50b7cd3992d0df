// Package lexicon provides the ordered merchant/description-to-category rule
// set used by the classifier.
package lexicon

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps a lowercase match token to a category and optional subcategory.
// Higher priority rules are consulted first; among equal priorities, longer
// tokens win so a short token never shadows a more specific one.
type Rule struct {
	MatchToken  string `yaml:"token"`
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory,omitempty"`
	Priority    int    `yaml:"priority,omitempty"`
}

// Lexicon is an ordered, read-only rule set. Safe for concurrent reads once
// built.
type Lexicon struct {
	rules []Rule
}

// New builds a lexicon from the given rules, normalizing tokens and fixing
// the scan order: priority descending, then token length descending, then
// original position.
func New(rules []Rule) *Lexicon {
	ordered := make([]Rule, 0, len(rules))
	for _, r := range rules {
		token := strings.TrimSpace(strings.ToLower(r.MatchToken))
		if token == "" {
			continue
		}
		r.MatchToken = token
		ordered = append(ordered, r)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority > ordered[j].Priority
		}
		return len(ordered[i].MatchToken) > len(ordered[j].MatchToken)
	})

	return &Lexicon{rules: ordered}
}

// Rules returns the rules in scan order.
func (l *Lexicon) Rules() []Rule {
	return l.rules
}

// Len returns the number of rules.
func (l *Lexicon) Len() int {
	return len(l.rules)
}

// Match returns every rule whose token occurs in the search text, in scan
// order. Matching is plain substring over the already-lowercased text.
func (l *Lexicon) Match(searchText string) []Rule {
	var matches []Rule
	for _, r := range l.rules {
		if strings.Contains(searchText, r.MatchToken) {
			matches = append(matches, r)
		}
	}
	return matches
}

// ruleFile is the YAML shape of a lexicon override file.
type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load reads lexicon rules from a YAML stream and appends them, at elevated
// priority, ahead of the built-in defaults.
func Load(r io.Reader) (*Lexicon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules)+len(defaultRules))
	for _, r := range file.Rules {
		if r.Priority == 0 {
			r.Priority = userRulePriority
		}
		rules = append(rules, r)
	}
	rules = append(rules, defaultRules...)

	return New(rules), nil
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return New(defaultRules)
}
