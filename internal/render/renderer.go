// Package render parses the site's page templates and executes them with a
// caller-supplied Router for link resolution.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"

	"github.com/Bitlatte/folio/internal/model"
)

const (
	layoutFile  = "base.html"
	partialsDir = "partials"
)

// ErrMissingTemplate is returned when rendering a page whose template file
// was not found in the templates directory.
var ErrMissingTemplate = errors.New("missing template")

type pageSet struct {
	tmpl   *template.Template
	entry  string
	params map[string]any
}

// Renderer holds one parsed template set per page. Parsed sets are never
// executed directly, only clones of them, so a Renderer is safe for
// concurrent use.
type Renderer struct {
	dir     string
	md      goldmark.Markdown
	pages   map[string]*pageSet
	missing []string
}

// New parses every page template found in dir, together with the optional
// base.html layout and partials/*.html. Pages without a template file are
// recorded as missing.
func New(dir string) (*Renderer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates directory %s is not a directory", dir)
	}

	r := &Renderer{
		dir:   dir,
		md:    newMarkdown(),
		pages: make(map[string]*pageSet, len(model.Pages)),
	}

	shared, err := filepath.Glob(filepath.Join(dir, partialsDir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing partials: %w", err)
	}
	layout := filepath.Join(dir, layoutFile)
	hasLayout := fileExists(layout)
	if hasLayout {
		shared = append([]string{layout}, shared...)
	}

	for _, page := range model.Pages {
		pagePath := filepath.Join(dir, page.Template)
		if !fileExists(pagePath) {
			r.missing = append(r.missing, page.Name)
			continue
		}

		set := &pageSet{entry: page.Template}
		if hasLayout {
			set.entry = layoutFile
		}
		root := template.New(set.entry).Funcs(r.baseFuncs())
		for _, file := range shared {
			if _, err := parseFile(root, file); err != nil {
				return nil, err
			}
		}
		if set.params, err = parseFile(root, pagePath); err != nil {
			return nil, err
		}
		set.tmpl = root
		r.pages[page.Name] = set
	}
	return r, nil
}

// parseFile adds file to root under its base name, stripping and returning any
// front matter.
func parseFile(root *template.Template, file string) (map[string]any, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", file, err)
	}
	params := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(raw), &params)
	if err != nil {
		return nil, fmt.Errorf("front matter in %s: %w", file, err)
	}

	name := filepath.Base(file)
	t := root
	if name != root.Name() {
		t = root.New(name)
	}
	if _, err := t.Parse(string(body)); err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", file, err)
	}
	return params, nil
}

// Has reports whether page has a parsed template.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Missing lists the pages whose template file is absent, in table order.
func (r *Renderer) Missing() []string {
	return append([]string(nil), r.missing...)
}

// Dir is the templates directory the renderer was built from.
func (r *Renderer) Dir() string {
	return r.dir
}

// Render executes page against data, resolving links through router.
// Title and Params are filled from the page's front matter when unset.
func (r *Renderer) Render(w io.Writer, router Router, page string, data model.PageData) error {
	set, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("%w: page %q", ErrMissingTemplate, page)
	}

	tmpl, err := set.tmpl.Clone()
	if err != nil {
		return fmt.Errorf("cloning %s: %w", page, err)
	}
	tmpl.Funcs(routerFuncs(router))

	if data.Params == nil {
		data.Params = set.params
	}
	if data.Title == "" {
		if title, ok := set.params["title"].(string); ok && title != "" {
			data.Title = title
		} else {
			data.Title = titleCase(page)
		}
	}

	// Buffer so a failing template never leaves a partial page behind.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, set.entry, data); err != nil {
		return fmt.Errorf("executing %s for %s: %w", set.entry, page, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
