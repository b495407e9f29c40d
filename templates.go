package main

import (
	"embed"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templatesFS embed.FS

// contentPolicy allows the formatting an admin would type into a post body
// and strips scripts, styles and event handlers.
var contentPolicy = bluemonday.UGCPolicy()

// markup sanitizes a post body and turns blank-line separated blocks into
// paragraphs. Single newlines become <br>.
func markup(s string) template.HTML {
	s = contentPolicy.Sanitize(strings.ReplaceAll(s, "\r\n", "\n"))

	paragraphs := strings.Split(s, "\n\n")
	var result []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			p = strings.ReplaceAll(p, "\n", "<br>")
			result = append(result, "<p>"+p+"</p>")
		}
	}

	return template.HTML(strings.Join(result, "\n"))
}

func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	pages := []string{"login.html", "admin.html", "section.html"}

	funcs := template.FuncMap{
		"markup": markup,
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFS(templatesFS,
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}
