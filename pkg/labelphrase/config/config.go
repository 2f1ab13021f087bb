package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/labelphrase/pkg/labelphrase"
)

// Config is the run configuration, read from YAML and overridden by
// LABELPHRASE_* environment variables.
type Config struct {
	N        int    `yaml:"n" env:"LABELPHRASE_N" env-default:"4"`
	TopK     int    `yaml:"top_k" env:"LABELPHRASE_TOP_K" env-default:"10"`
	TopN     int    `yaml:"top_n" env:"LABELPHRASE_TOP_N" env-default:"3"`
	MaxWords int    `yaml:"max_words" env:"LABELPHRASE_MAX_WORDS" env-default:"0"`
	GlobalN  int    `yaml:"global_n" env:"LABELPHRASE_GLOBAL_N" env-default:"0"`
	Workers  int    `yaml:"workers" env:"LABELPHRASE_WORKERS" env-default:"1"`
	Strategy string `yaml:"strategy" env:"LABELPHRASE_STRATEGY" env-default:"scored"`

	Stoplist         string `yaml:"stoplist" env:"LABELPHRASE_STOPLIST"`
	Stem             bool   `yaml:"stem" env:"LABELPHRASE_STEM" env-default:"false"`
	EnglishStopwords bool   `yaml:"english_stopwords" env:"LABELPHRASE_ENGLISH_STOPWORDS" env-default:"false"`

	LogFile string `yaml:"log_file" env:"LABELPHRASE_LOG_FILE" env-default:"log.txt"`
	DB      string `yaml:"db" env:"LABELPHRASE_DB"`
}

// Load reads the YAML file at path and applies environment overrides.
// An empty path reads the environment (and defaults) only.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return cfg, nil
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Options converts the engine parameters. Tokenizer and Logger are left for
// the caller to set.
func (c Config) Options() (labelphrase.Options, error) {
	strategy, err := labelphrase.StrategyByName(c.Strategy)
	if err != nil {
		return labelphrase.Options{}, err
	}
	opts := labelphrase.Options{
		N:        c.N,
		TopK:     c.TopK,
		TopN:     c.TopN,
		MaxWords: c.MaxWords,
		GlobalN:  c.GlobalN,
		Workers:  c.Workers,
		Strategy: strategy,
	}
	if err := opts.WithDefaults().Validate(); err != nil {
		return labelphrase.Options{}, err
	}
	return opts, nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
