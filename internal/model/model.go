package model

// Language codes the site is published in.
const (
	English = "en"
	French  = "fr"

	DefaultLanguage = English
)

// Languages is the fixed language pair, in generation order.
var Languages = []string{English, French}

// Page is a named template/output pair. The association is fixed and never
// derived from content.
type Page struct {
	Name     string // endpoint name used by templates, e.g. "home"
	Template string // file under the templates directory
	Output   string // file name under <out>/<lang>/ in static mode
	Route    string // path suffix after /<lang> in dynamic mode
}

// Pages is the page table, in generation order.
var Pages = []Page{
	{Name: "home", Template: "home.html", Output: "index.html", Route: ""},
	{Name: "projects", Template: "projects.html", Output: "projects.html", Route: "/projects"},
}

// LookupPage returns the page registered under name.
func LookupPage(name string) (Page, bool) {
	for _, p := range Pages {
		if p.Name == name {
			return p, true
		}
	}
	return Page{}, false
}

// Toggle returns the other language of the pair. Anything that is not
// French maps to French.
func Toggle(lang string) string {
	if lang == French {
		return English
	}
	return French
}
