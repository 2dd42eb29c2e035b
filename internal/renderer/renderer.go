package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/damacus/iron-browser/internal/utils"
)

//go:embed views
var views embed.FS

// TemplateRenderer implements echo.Renderer
type TemplateRenderer struct {
	Templates map[string]*template.Template
}

// New creates a new TemplateRenderer with the embedded templates pre-parsed
func New() *TemplateRenderer {
	r := &TemplateRenderer{
		Templates: make(map[string]*template.Template),
	}
	r.parseTemplates()
	return r
}

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatBytes": utils.FormatFileSize,
		"formatTime":  utils.FormatTime,
		"link":        Link,
	}
}

func (t *TemplateRenderer) parseTemplates() {
	parse := func(name string, files ...string) {
		t.Templates[name] = template.Must(template.New(name).Funcs(Funcs()).ParseFS(views, files...))
	}

	// Pages render through the base layout
	parse("browser",
		"views/layouts/base.html",
		"views/partials/listing.html",
		"views/pages/browser.html",
	)

	// Partials swapped in by htmx
	parse("listing", "views/partials/listing.html")
}

// selfExecutingTemplates lists templates that execute their own named block instead of "base"
var selfExecutingTemplates = map[string]bool{
	"listing": true,
}

// Render renders a template document
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Template not found: "+name)
	}

	if selfExecutingTemplates[name] {
		return tmpl.ExecuteTemplate(w, name, data)
	}
	return tmpl.ExecuteTemplate(w, "base", data)
}

// Link builds a relative URL from path and alternating query keys and
// values. Empty and false values are omitted.
func Link(path string, pairs ...any) template.URL {
	query := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key := fmt.Sprint(pairs[i])
		var value string
		switch v := pairs[i+1].(type) {
		case nil:
			continue
		case bool:
			if !v {
				continue
			}
			value = "true"
		default:
			value = fmt.Sprint(v)
		}
		if value == "" {
			continue
		}
		query.Set(key, value)
	}

	if len(query) == 0 {
		return template.URL(path)
	}
	return template.URL(path + "?" + query.Encode())
}
