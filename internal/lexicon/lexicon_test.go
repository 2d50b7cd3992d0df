package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ScanOrder(t *testing.T) {
	lex := New([]Rule{
		{MatchToken: "ip", Category: "Tech"},
		{MatchToken: "shipping", Category: "Shopping", Subcategory: "Delivery"},
		{MatchToken: "ship", Category: "Travel"},
	})

	rules := lex.Rules()
	require.Len(t, rules, 3)

	// Longest token first so "ip" can never shadow "shipping".
	assert.Equal(t, "shipping", rules[0].MatchToken)
	assert.Equal(t, "ship", rules[1].MatchToken)
	assert.Equal(t, "ip", rules[2].MatchToken)
}

func TestNew_PriorityBeatsLength(t *testing.T) {
	lex := New([]Rule{
		{MatchToken: "longertoken", Category: "A"},
		{MatchToken: "short", Category: "B", Priority: 10},
	})

	assert.Equal(t, "short", lex.Rules()[0].MatchToken)
}

func TestNew_DropsEmptyTokens(t *testing.T) {
	lex := New([]Rule{
		{MatchToken: "  ", Category: "A"},
		{MatchToken: "netflix", Category: "Entertainment"},
	})

	assert.Equal(t, 1, lex.Len())
}

func TestMatch(t *testing.T) {
	lex := New([]Rule{
		{MatchToken: "esselunga", Category: "Alimentari", Subcategory: "Supermercato"},
		{MatchToken: "netflix", Category: "Entertainment", Subcategory: "Streaming"},
	})

	tests := []struct {
		name     string
		text     string
		wantCats []string
	}{
		{
			name:     "substring match inside description",
			text:     "esselunga milano esselunga",
			wantCats: []string{"Alimentari"},
		},
		{
			name:     "no match",
			text:     "unknown merchant",
			wantCats: nil,
		},
		{
			name:     "multiple matches in scan order",
			text:     "netflix via esselunga card",
			wantCats: []string{"Alimentari", "Entertainment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := lex.Match(tt.text)
			var cats []string
			for _, m := range matches {
				cats = append(cats, m.Category)
			}
			assert.Equal(t, tt.wantCats, cats)
		})
	}
}

func TestLoad(t *testing.T) {
	yaml := `
rules:
  - token: Esselunga
    category: Alimentari
    subcategory: Supermercato
  - token: enel
    category: Utenze
    priority: 80
`
	lex, err := Load(strings.NewReader(yaml))
	require.NoError(t, err)

	// File rules outrank the built-in defaults.
	matches := lex.Match("esselunga milano")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Alimentari", matches[0].Category)
	assert.Equal(t, "Supermercato", matches[0].Subcategory)

	matches = lex.Match("enel energia")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Utenze", matches[0].Category)
	assert.Equal(t, 80, matches[0].Priority)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(strings.NewReader("rules: [unclosed"))
	assert.Error(t, err)
}

func TestDefault_CoversCommonMerchants(t *testing.T) {
	lex := Default()

	matches := lex.Match("netflix.com 15.99")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Entertainment", matches[0].Category)
	assert.Equal(t, "Streaming", matches[0].Subcategory)

	// "uber eats" must win over the shorter "uber" token.
	matches = lex.Match("uber eats order")
	require.NotEmpty(t, matches)
	assert.Equal(t, "Dining", matches[0].Category)
}
