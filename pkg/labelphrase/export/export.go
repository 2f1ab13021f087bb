// Package export renders filter queries in a form mail providers can import.
package export

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/cognicore/labelphrase/pkg/labelphrase/query"
)

// Writer persists rendered filters to a destination (file, API, etc.).
type Writer interface {
	WriteFilters(ctx context.Context, content []byte) error
}

// FileWriter writes the rendered document to Path.
type FileWriter struct {
	Path string
}

func (w FileWriter) WriteFilters(ctx context.Context, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(w.Path, content, 0o644)
}

// GmailExporter renders filters as a Gmail mailFilters.xml Atom feed: one
// entry per label whose query becomes the "has the words" criterion and
// whose label is applied on match.
type GmailExporter struct {
	Writer Writer
	Now    func() time.Time // defaults to time.Now
}

type feed struct {
	XMLName   xml.Name `xml:"feed"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsApps string   `xml:"xmlns:apps,attr"`
	Title     string   `xml:"title"`
	Updated   string   `xml:"updated"`
	Entries   []entry  `xml:"entry"`
}

type entry struct {
	Category   category   `xml:"category"`
	Title      string     `xml:"title"`
	Updated    string     `xml:"updated"`
	Content    string     `xml:"content"`
	Properties []property `xml:"apps:property"`
}

type category struct {
	Term string `xml:"term,attr"`
}

type property struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// Export renders filters and hands the document to the writer. Filters with
// no phrases are skipped.
func (e *GmailExporter) Export(ctx context.Context, filters []query.Filter) error {
	if e.Writer == nil {
		return fmt.Errorf("gmail exporter: nil writer")
	}
	content, err := e.Render(filters)
	if err != nil {
		return err
	}
	return e.Writer.WriteFilters(ctx, content)
}

// Render returns the mailFilters.xml document for filters.
func (e *GmailExporter) Render(filters []query.Filter) ([]byte, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().UTC().Format(time.RFC3339)

	doc := feed{
		Xmlns:     "http://www.w3.org/2005/Atom",
		XmlnsApps: "http://schemas.google.com/apps/2006",
		Title:     "Mail Filters",
		Updated:   stamp,
	}
	for _, f := range filters {
		if f.Empty() {
			continue
		}
		doc.Entries = append(doc.Entries, entry{
			Category: category{Term: "filter"},
			Title:    "Mail Filter",
			Updated:  stamp,
			Properties: []property{
				{Name: "hasTheWord", Value: f.Query},
				{Name: "label", Value: f.Label},
				{Name: "sizeOperator", Value: "s_sl"},
				{Name: "sizeUnit", Value: "s_smb"},
			},
		})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode filters: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
