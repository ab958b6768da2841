// Package content loads the site's content document: one content tree per
// language code, consumed verbatim by the page templates.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/folio/internal/logging"
)

var (
	// ErrLoad wraps every failure to load a content document.
	ErrLoad = errors.New("content load failure")
	// ErrParse marks a content file that exists but cannot be decoded.
	ErrParse = errors.New("malformed content")
)

// Tree is the nested content for a single language.
type Tree = any

// Document maps language codes to content trees. It is never modified after
// Load returns.
type Document struct {
	path  string
	trees map[string]Tree
}

// New builds a document from already decoded trees. The map is copied.
func New(trees map[string]Tree) *Document {
	d := &Document{trees: make(map[string]Tree, len(trees))}
	for lang, tree := range trees {
		d.trees[lang] = tree
	}
	return d
}

// Load reads the content document at path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON.
func Load(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrLoad, path, err)
	}

	var trees map[string]Tree
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w: %s: %v", ErrLoad, ErrParse, path, err)
		}
		if doc == nil {
			return nil, fmt.Errorf("%w: %w: %s: top level must be a mapping keyed by language", ErrLoad, ErrParse, path)
		}
		trees = make(map[string]Tree, len(doc))
		for lang, tree := range doc {
			trees[lang] = normalize(tree)
		}
	default:
		if err := json.Unmarshal(raw, &trees); err != nil {
			return nil, fmt.Errorf("%w: %w: %s: %v", ErrLoad, ErrParse, path, err)
		}
	}
	if trees == nil {
		return nil, fmt.Errorf("%w: %w: %s: top level must be an object keyed by language", ErrLoad, ErrParse, path)
	}

	d := New(trees)
	d.path = path
	for _, lang := range d.Languages() {
		if _, err := language.Parse(lang); err != nil {
			logger.Warn("content key is not a language tag", "lang", lang, "path", path)
		}
	}
	return d, nil
}

// Path is the file the document was loaded from, empty when built with New.
func (d *Document) Path() string {
	return d.path
}

// Lookup returns the tree for lang. A missing, null or empty tree reports
// false.
func (d *Document) Lookup(lang string) (Tree, bool) {
	tree, ok := d.trees[lang]
	if !ok || isEmpty(tree) {
		return nil, false
	}
	return tree, true
}

// Has reports whether lang is a key of the document, whatever its value.
func (d *Document) Has(lang string) bool {
	_, ok := d.trees[lang]
	return ok
}

// Tree returns the tree stored under lang as-is, or nil.
func (d *Document) Tree(lang string) Tree {
	return d.trees[lang]
}

// Languages returns the document's language codes in sorted order.
func (d *Document) Languages() []string {
	langs := make([]string, 0, len(d.trees))
	for lang := range d.trees {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

func isEmpty(tree Tree) bool {
	switch v := tree.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case string:
		return v == ""
	}
	return false
}

// normalize converts yaml.v2's map[interface{}]interface{} nodes into
// map[string]any so templates see the same shapes as with JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = normalize(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = normalize(val)
		}
		return s
	}
	return v
}
