// Package web holds the HTML pages served next to the JSON API.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Templates parses every embedded page. Pages are referenced by file name.
func Templates() *template.Template {
	return template.Must(template.ParseFS(files, "templates/*.html"))
}
