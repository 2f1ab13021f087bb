package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cognicore/labelphrase/internal/corpus"
	"github.com/cognicore/labelphrase/internal/logging"
	"github.com/cognicore/labelphrase/pkg/labelphrase"
	"github.com/cognicore/labelphrase/pkg/labelphrase/config"
	"github.com/cognicore/labelphrase/pkg/labelphrase/ingest"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store"
	"github.com/cognicore/labelphrase/pkg/labelphrase/store/sqlite"
)

type rootConfig struct {
	Version string

	// Global flags.
	VersionFlag      bool
	ConfigPath       string
	Input            string
	Dir              string
	Labels           []string
	N                int
	TopK             int
	TopN             int
	MaxWords         int
	GlobalN          int
	Workers          int
	Strategy         string
	Stoplist         string
	Stem             bool
	EnglishStopwords bool
	DB               string
	LogFile          string
	Quiet            bool
	Format           string

	// Derived runtime state.
	cfg       config.Config
	logger    *log.Logger
	logCloser io.Closer
	outFormat outputFormat
}

func newRootCmd(ver string) *cobra.Command {
	rc := &rootConfig{Version: ver}

	root := &cobra.Command{
		Use:           "labelphrase",
		Short:         "Suggest filter queries from the phrases that set each label apart",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(usageErr)

	pf := root.PersistentFlags()
	pf.BoolVar(&rc.VersionFlag, "version", false, "Print version and exit")
	pf.StringVar(&rc.ConfigPath, "config", "", "YAML config file (LABELPHRASE_* env vars override it)")
	pf.StringVar(&rc.Input, "input", "", "JSONL corpus: one {\"label\",\"text\",\"html\"} object per line")
	pf.StringVar(&rc.Dir, "dir", "", "Corpus directory laid out as <dir>/<label>/<file>")
	pf.StringSliceVar(&rc.Labels, "labels", nil, "Labels to analyze, in output order (default: all)")
	pf.IntVar(&rc.N, "n", labelphrase.DefaultN, "N-gram window size")
	pf.IntVar(&rc.TopK, "top-k", labelphrase.DefaultTopK, "Candidate phrases kept per label")
	pf.IntVar(&rc.TopN, "top-n", labelphrase.DefaultTopN, "Phrases per filter query")
	pf.IntVar(&rc.MaxWords, "max-words", 0, "Words per phrase in a filter query (0 = n)")
	pf.IntVar(&rc.GlobalN, "global-n", 0, "Sub-gram window for uniqueness scoring (0 = n)")
	pf.IntVar(&rc.Workers, "workers", 1, "Labels counted concurrently")
	pf.StringVar(&rc.Strategy, "strategy", labelphrase.StrategyScored, "Ranking strategy: scored|exclusive|scored-exclusive")
	pf.StringVar(&rc.Stoplist, "stoplist", "", "YAML stoplist file (terms: [...])")
	pf.BoolVar(&rc.Stem, "stem", false, "Stem tokens (Snowball English)")
	pf.BoolVar(&rc.EnglishStopwords, "english-stopwords", false, "Drop Snowball English stopwords")
	pf.StringVar(&rc.DB, "db", "", "SQLite database recording runs (optional)")
	pf.StringVar(&rc.LogFile, "log-file", "log.txt", "Log file (empty disables)")
	pf.BoolVarP(&rc.Quiet, "quiet", "q", false, "Suppress log output on stderr")
	pf.StringVar(&rc.Format, "format", "auto", "Output format: auto|table|plain|json|yaml")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if rc.VersionFlag {
			fmt.Fprintf(os.Stdout, "labelphrase %s (%s/%s)\n", rc.Version, runtime.GOOS, runtime.GOARCH)
			return errExit0
		}

		cfg, err := config.Load(rc.ConfigPath)
		if err != nil {
			return usageErr(cmd, err)
		}
		rc.cfg = applyFlags(cmd, cfg, rc)

		format, err := resolveFormat(rc.Format, os.Stdout)
		if err != nil {
			return usageErr(cmd, err)
		}
		rc.outFormat = format

		rc.logger, rc.logCloser = logging.New(logging.Options{
			File:  rc.cfg.LogFile,
			Quiet: rc.Quiet,
		})
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if rc.logCloser != nil {
			return rc.logCloser.Close()
		}
		return nil
	}

	root.AddCommand(newRankCmd(rc))
	root.AddCommand(newFiltersCmd(rc))
	root.AddCommand(newHistoryCmd(rc))

	return root
}

// applyFlags overlays explicitly set flags on the file/env configuration.
func applyFlags(cmd *cobra.Command, cfg config.Config, rc *rootConfig) config.Config {
	set := cmd.Flags().Changed
	if set("n") {
		cfg.N = rc.N
	}
	if set("top-k") {
		cfg.TopK = rc.TopK
	}
	if set("top-n") {
		cfg.TopN = rc.TopN
	}
	if set("max-words") {
		cfg.MaxWords = rc.MaxWords
	}
	if set("global-n") {
		cfg.GlobalN = rc.GlobalN
	}
	if set("workers") {
		cfg.Workers = rc.Workers
	}
	if set("strategy") {
		cfg.Strategy = rc.Strategy
	}
	if set("stoplist") {
		cfg.Stoplist = rc.Stoplist
	}
	if set("stem") {
		cfg.Stem = rc.Stem
	}
	if set("english-stopwords") {
		cfg.EnglishStopwords = rc.EnglishStopwords
	}
	if set("db") {
		cfg.DB = rc.DB
	}
	if set("log-file") {
		cfg.LogFile = rc.LogFile
	}
	return cfg
}

// buildEngine wires the tokenizer and engine from the effective configuration.
func (rc *rootConfig) buildEngine() (*labelphrase.Engine, error) {
	loader := config.NewLoader(rc.cfg)
	components, err := loader.Load()
	if err != nil {
		return nil, err
	}

	opts, err := rc.cfg.Options()
	if err != nil {
		return nil, err
	}
	opts.Tokenizer = components.Tokenizer
	opts.Logger = rc.logger

	return labelphrase.New(opts)
}

// loadCorpora reads documents from --input or --dir and groups them by label.
func (rc *rootConfig) loadCorpora(cmd *cobra.Command) ([]labelphrase.Corpus, error) {
	var (
		docs []ingest.Doc
		err  error
	)
	switch {
	case rc.Input != "" && rc.Dir != "":
		return nil, usageErr(cmd, errors.New("flags are mutually exclusive: --input, --dir"))
	case rc.Input != "":
		docs, err = corpus.LoadFromJSONL(rc.Input, rc.logger)
	case rc.Dir != "":
		docs, err = corpus.LoadFromDir(rc.Dir)
	default:
		return nil, usageErr(cmd, errors.New("one of --input or --dir is required"))
	}
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(rc.Labels))
	for _, l := range rc.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}

	corpora, err := corpus.Group(docs, labels, rc.logger)
	if err != nil {
		return nil, err
	}
	rc.logger.Printf("- %d identified label name(s) to run analysis on.", len(corpora))
	return corpora, nil
}

// openStore opens the run database, or returns nil when none is configured.
func (rc *rootConfig) openStore(ctx context.Context) (store.Store, error) {
	if rc.cfg.DB == "" {
		return nil, nil
	}
	st, err := sqlite.OpenSQLite(ctx, rc.cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", rc.cfg.DB, err)
	}
	return st, nil
}
