package corpus

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cognicore/labelphrase/pkg/labelphrase"
	"github.com/cognicore/labelphrase/pkg/labelphrase/ingest"
	"github.com/cognicore/labelphrase/pkg/labelphrase/internalerr"
)

// Item is one line of a labeled JSONL corpus
type Item struct {
	Label string `json:"label"`
	ID    string `json:"id"`
	Text  string `json:"text"`
	HTML  bool   `json:"html"`
}

// LoadFromJSONL loads labeled documents from a JSONL file. Malformed lines
// and lines without a label are skipped with a warning.
func LoadFromJSONL(path string, logger *log.Logger) ([]ingest.Doc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var docs []ingest.Doc
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			warnf(logger, "skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}
		doc := ingest.Doc{Label: item.Label, ID: item.ID, Body: item.Text, HTML: item.HTML}
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("%s:%d", filepath.Base(path), i+1)
		}
		if err := doc.Validate(); err != nil {
			warnf(logger, "skipping line %d in %s: %v", i+1, path, err)
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s: %w", path, internalerr.ErrEmptyCorpus)
	}

	return docs, nil
}

// LoadFromDir loads documents laid out as <root>/<label>/<file>. Files ending
// in .html or .htm are treated as markup. Labels and files are read in
// lexical order; hidden entries are ignored.
func LoadFromDir(root string) ([]ingest.Doc, error) {
	labelDirs, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", root, err)
	}

	var docs []ingest.Doc
	for _, ld := range labelDirs {
		if !ld.IsDir() || strings.HasPrefix(ld.Name(), ".") {
			continue
		}
		dir := filepath.Join(root, ld.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			path := filepath.Join(dir, f.Name())
			body, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read file %s: %w", path, err)
			}
			ext := strings.ToLower(filepath.Ext(f.Name()))
			docs = append(docs, ingest.Doc{
				Label: ld.Name(),
				ID:    path,
				Body:  string(body),
				HTML:  ext == ".html" || ext == ".htm",
			})
		}
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found under %s: %w", root, internalerr.ErrEmptyCorpus)
	}
	return docs, nil
}

// Group converts documents into per-label corpora. Label order is the order
// of first appearance, or the order of want when it is non-empty; a wanted
// label without documents is an error. Documents whose markup cannot be
// parsed are skipped with a warning.
func Group(docs []ingest.Doc, want []string, logger *log.Logger) ([]labelphrase.Corpus, error) {
	byLabel := make(map[string]*labelphrase.Corpus)
	var order []string

	for _, d := range docs {
		text, err := d.Text()
		if err != nil {
			warnf(logger, "   |- Error decoding message %s: %v", d.ID, err)
			continue
		}
		c, ok := byLabel[d.Label]
		if !ok {
			c = &labelphrase.Corpus{Label: d.Label}
			byLabel[d.Label] = c
			order = append(order, d.Label)
		}
		c.Texts = append(c.Texts, text)
	}

	if len(want) > 0 {
		order = order[:0]
		for _, w := range want {
			label, ok := resolveLabel(byLabel, w)
			if !ok {
				return nil, fmt.Errorf("label %q not found: %w", w, internalerr.ErrNotFound)
			}
			order = append(order, label)
		}
	}

	out := make([]labelphrase.Corpus, 0, len(order))
	for _, label := range order {
		out = append(out, *byLabel[label])
	}
	return out, nil
}

// resolveLabel matches a requested label name case-insensitively, preferring
// an exact match.
func resolveLabel(byLabel map[string]*labelphrase.Corpus, want string) (string, bool) {
	if _, ok := byLabel[want]; ok {
		return want, true
	}
	var names []string
	for name := range byLabel {
		if strings.EqualFold(name, want) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

func warnf(logger *log.Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Printf("[warn] "+format, args...)
}
