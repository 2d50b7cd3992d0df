package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("FINSIGHT_TEST_DIR", "/data/finsight")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"absolute untouched", "/var/lib/finsight.db", "/var/lib/finsight.db"},
		{"tilde prefix", "~/finsight.db", filepath.Join(home, "finsight.db")},
		{"bare tilde", "~", home},
		{"env var", "$FINSIGHT_TEST_DIR/finsight.db", "/data/finsight/finsight.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestDefaultDatabasePath(t *testing.T) {
	path, err := DefaultDatabasePath()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, filepath.Join("finsight", "finsight.db")))
}
