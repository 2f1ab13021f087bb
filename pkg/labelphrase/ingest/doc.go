package ingest

import (
	"errors"
	"strings"
)

// Doc is one labeled document as handed over by a document source.
type Doc struct {
	Label string
	ID    string // source-specific identifier, used in log lines only
	Body  string
	HTML  bool // Body is markup and must go through StripHTML
}

// Validate checks if the document has required fields
func (d *Doc) Validate() error {
	if strings.TrimSpace(d.Label) == "" {
		return errors.New("doc label is required")
	}
	return nil
}

// Text returns the plain text of the document, stripping markup when needed.
func (d *Doc) Text() (string, error) {
	if !d.HTML {
		return d.Body, nil
	}
	return StripHTML(d.Body)
}
