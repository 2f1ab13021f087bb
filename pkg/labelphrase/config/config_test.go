package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/labelphrase/pkg/labelphrase"
	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.N != 4 || cfg.TopK != 10 || cfg.TopN != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Strategy != labelphrase.StrategyScored || cfg.LogFile != "log.txt" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelphrase.yaml")
	content := `n: 3
top_k: 20
strategy: exclusive
stem: true
db: runs.db
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LABELPHRASE_TOP_N", "5")
	t.Setenv("LABELPHRASE_STRATEGY", "scored-exclusive")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.N != 3 || cfg.TopK != 20 || !cfg.Stem || cfg.DB != "runs.db" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.TopN != 5 {
		t.Errorf("env should set top_n, got %d", cfg.TopN)
	}
	if cfg.Strategy != labelphrase.StrategyScoredExclusive {
		t.Errorf("env should override strategy, got %s", cfg.Strategy)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/labelphrase.yaml"); err == nil {
		t.Error("Should error on nonexistent config file")
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := Config{N: 3, TopK: 8, TopN: 2, MaxWords: 2, Workers: 4, Strategy: "exclusive"}

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.N != 3 || opts.TopK != 8 || opts.TopN != 2 || opts.MaxWords != 2 || opts.Workers != 4 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Strategy.Name() != labelphrase.StrategyExclusive {
		t.Errorf("strategy = %s", opts.Strategy.Name())
	}

	if _, err := (Config{}).Options(); err != nil {
		t.Errorf("zero config should fall back to engine defaults: %v", err)
	}

	cfg.Strategy = "nope"
	if _, err := cfg.Options(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for unknown strategy, got %v", err)
	}

	cfg.Strategy = ""
	cfg.TopK = -1
	if _, err := cfg.Options(); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative top_k, got %v", err)
	}
}

func TestLoadStoplist(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "stoplist.yaml")

	content := `terms:
  - regards
  - unsubscribe
  - view
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sl, err := LoadStoplist(path)
	if err != nil {
		t.Fatalf("Failed to load stoplist: %v", err)
	}

	if len(sl.Terms) != 3 {
		t.Errorf("Expected 3 terms, got %d", len(sl.Terms))
	}
}
