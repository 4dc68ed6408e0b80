package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/copyforge/copyforge/internal/config"
	"github.com/copyforge/copyforge/internal/genai"
	"github.com/copyforge/copyforge/internal/rules"
	"github.com/copyforge/copyforge/internal/store"
	"github.com/copyforge/copyforge/internal/textkit"
	"github.com/copyforge/copyforge/internal/validate"
)

func loadConfig(workDir string) (config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		path = filepath.Join(".copyforge", "config.json")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	var settings map[string]any
	if err := json.Unmarshal(raw, &settings); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := config.ValidateSettings(settings); err != nil {
		return config.Config{}, err
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = os.Getenv("COPYFORGE_API_KEY")
	}
	if cfg.Service.APIKey == "" {
		cfg.Service.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, *sql.DB, func(), error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, nil, func() {}, err
	}
	path := cfg.Store.Path
	if path == "" {
		dir := filepath.Join(workDir, ".copyforge")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, func() {}, err
		}
		path = filepath.Join(dir, "copyforge.db")
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, func() {}, err
	}
	return store.NewStore(db), db, func() { _ = db.Close() }, nil
}

func newClient(cfg config.Config) (genai.Client, error) {
	return genai.New(cfg.Service)
}

// loadCatalog returns the built-in rule catalog, or a merged one when a
// catalog file path was given.
func loadCatalog(path string) (*rules.Catalog, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.Load(path)
}

func newValidator(cat *rules.Catalog) *validate.Validator {
	return validate.New(textkit.NewRegexTokenizer(), cat)
}
