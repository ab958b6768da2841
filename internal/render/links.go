package render

import (
	"path"

	"github.com/Bitlatte/folio/internal/model"
)

// Router resolves links from inside a rendered page. Each rendering mode
// supplies its own.
type Router interface {
	// PageURL links to page in lang, or returns "#" if either is unknown.
	PageURL(page, lang string) string
	// AssetURL links to a file under the static directory.
	AssetURL(name string) string
}

// ServerRouter resolves links against the dynamic routes.
type ServerRouter struct{}

func (ServerRouter) PageURL(page, lang string) string {
	p, ok := model.LookupPage(page)
	if !ok || lang == "" {
		return "#"
	}
	return "/" + lang + p.Route
}

func (ServerRouter) AssetURL(name string) string {
	return "/static/" + name
}

// StaticRouter resolves links between generated files. Every page lives at
// <out>/<lang>/<file>, so links climb one level and descend again, which
// works from a plain file server or straight off disk.
type StaticRouter struct{}

func (StaticRouter) PageURL(page, lang string) string {
	p, ok := model.LookupPage(page)
	if !ok || lang == "" {
		return "#"
	}
	return path.Join("..", lang, p.Output)
}

func (StaticRouter) AssetURL(name string) string {
	return "../static/" + name
}
