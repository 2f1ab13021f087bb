package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Store persists the results of ranking runs for later review
type Store interface {
	Close() error

	SaveRun(ctx context.Context, r Run) error
	// GetRun returns internalerr.ErrNotFound when no run has the given ID.
	GetRun(ctx context.Context, id string) (Run, error)
	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

// Run is one invocation of the engine over a set of labels
type Run struct {
	ID        string
	CreatedAt time.Time
	Strategy  string
	Params    Params
	Labels    []LabelResult // in the order labels were given
}

// Params records the engine parameters a run used
type Params struct {
	N        int
	TopK     int
	TopN     int
	MaxWords int
	GlobalN  int
}

// LabelResult holds one label's filter query and ranked phrases
type LabelResult struct {
	Label   string
	Filter  string
	Phrases []Phrase
}

// Phrase is a ranked phrase with its words joined by single spaces
type Phrase struct {
	Text  string
	Count int
	Score float64
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a new lexically sortable run identifier.
func NewRunID(now time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(now), idEntropy).String()
}
