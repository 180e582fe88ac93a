// Package web holds the server-rendered admin pages.
package web

import (
	"embed"
	"html/template"
	"strings"

	"github.com/bassista/room_desk/internal/form"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available to the page templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"val": func(v form.Values, name string) string {
			return v.String(name)
		},
		"checked": func(v form.Values, name string) bool {
			b, err := v.Bool(name)
			return err == nil && b
		},
		"selected": func(v form.Values, name string, id int) bool {
			n, err := v.Int(name)
			return err == nil && n == id
		},
		"day":   day,
		"clock": clock,
	}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

// day is the date part of a wall-clock instant.
func day(instant string) string {
	d, _, _ := strings.Cut(instant, "T")
	return d
}

// clock renders a time or an instant as HH:MM.
func clock(s string) string {
	if _, t, ok := strings.Cut(s, "T"); ok {
		s = t
	}
	if len(s) >= 5 {
		return s[:5]
	}
	return s
}
