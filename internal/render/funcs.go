package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Bitlatte/folio/internal/model"
)

// nowhere is bound at parse time; Render replaces it with the caller's Router.
type nowhere struct{}

func (nowhere) PageURL(string, string) string { return "#" }
func (nowhere) AssetURL(string) string        { return "#" }

func routerFuncs(router Router) template.FuncMap {
	return template.FuncMap{
		"url":    router.PageURL,
		"static": router.AssetURL,
	}
}

func (r *Renderer) baseFuncs() template.FuncMap {
	funcs := template.FuncMap{
		"toggle":   model.Toggle,
		"langName": langName,
		"markdown": r.markdown,
		"title":    titleCase,
	}
	for name, fn := range routerFuncs(nowhere{}) {
		funcs[name] = fn
	}
	return funcs
}

// langName returns a language's name in that language, e.g. "français".
func langName(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return lang
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

func (r *Renderer) markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.GFM))
}
