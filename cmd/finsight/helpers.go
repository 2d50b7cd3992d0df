package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/finsight-io/finsight/internal/classify"
	"github.com/finsight-io/finsight/internal/config"
	"github.com/finsight-io/finsight/internal/engine"
	"github.com/finsight-io/finsight/internal/lexicon"
	"github.com/finsight-io/finsight/internal/storage"
)

// databasePath resolves the sqlite file location from config, falling back
// to the XDG data directory.
func databasePath() (string, error) {
	if path := viper.GetString("database.path"); path != "" {
		return config.ExpandPath(path), nil
	}
	return config.DefaultDatabasePath()
}

// newStorage opens the configured database.
func newStorage() (*storage.SQLiteStorage, error) {
	dbPath, err := databasePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return store, nil
}

// loadLexicon returns the built-in rules, optionally extended by a user
// rule file.
func loadLexicon() (*lexicon.Lexicon, error) {
	path := config.ExpandPath(viper.GetString("lexicon.path"))
	if path == "" {
		return lexicon.Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lexicon file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return lexicon.Load(f)
}

// newEngine wires the full analysis engine over the given storage.
func newEngine(store *storage.SQLiteStorage) (*engine.Engine, error) {
	lex, err := loadLexicon()
	if err != nil {
		return nil, err
	}
	return engine.New(store, classify.New(lex)), nil
}
