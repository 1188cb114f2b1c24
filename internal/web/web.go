// Package web holds the embedded landing page.
package web

import (
	"embed"
	"html/template"

	"rebateforge-site/internal/subscribeform"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const PageTemplate = "index.html.tmpl"

type Page struct {
	Product  string
	Tagline  string
	Footer   string
	Endpoint string
	Form     subscribeform.View
}

func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// NewPage returns the page with the form in its initial state.
func NewPage(endpoint string) Page {
	return Page{
		Product:  "RebateForge",
		Tagline:  "An open source rebate management platform for managing rebates between manufacturers, distributors, and retailers.",
		Footer:   "RebateForge the open source alternative to Enable.",
		Endpoint: endpoint,
		Form:     subscribeform.Snapshot{}.View(),
	}
}
