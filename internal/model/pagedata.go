package model

// PageData is the value every page template executes against.
type PageData struct {
	Lang            string
	Content         any
	Page            string
	Title           string
	Params          map[string]any
	Languages       []string
	DefaultLanguage string
}

// NewPageData builds the template data for page in lang.
func NewPageData(page Page, lang string, content any) PageData {
	return PageData{
		Lang:            lang,
		Content:         content,
		Page:            page.Name,
		Languages:       Languages,
		DefaultLanguage: DefaultLanguage,
	}
}
