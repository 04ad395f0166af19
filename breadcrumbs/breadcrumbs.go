// Package breadcrumbs derives the admin navigation trail from a URL path.
package breadcrumbs

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

type Crumb struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type Labels map[string]string

var DefaultLabels = Labels{
	"properties":   "Propiedades",
	"clients":      "Clientes",
	"advisors":     "Asesores",
	"appointments": "Citas",
	"analytics":    "Análisis",
	"reports":      "Reportes",
	"settings":     "Configuración",
}

var Home = Crumb{Label: "Dashboard", Path: "/admin/dashboard"}

// Build always starts the trail at the dashboard. The "admin" and
// "dashboard" segments add no crumb of their own but still extend the path.
func Build(path string, labels Labels) []Crumb {
	if labels == nil {
		labels = DefaultLabels
	}
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	trail := []Crumb{Home}
	current := ""
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		current += "/" + seg
		if seg == "admin" || seg == "dashboard" {
			continue
		}
		label, ok := labels[seg]
		if !ok {
			label = capitalize(seg)
		}
		trail = append(trail, Crumb{Label: label, Path: current})
	}
	return trail
}

// Visible is false on the dashboard itself.
func Visible(trail []Crumb) bool {
	return len(trail) > 1
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// LoadLabels reads a YAML mapping of segment -> label layered over DefaultLabels.
func LoadLabels(r io.Reader) (Labels, error) {
	var extra map[string]string
	if err := yaml.NewDecoder(r).Decode(&extra); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	out := make(Labels, len(DefaultLabels)+len(extra))
	for k, v := range DefaultLabels {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out, nil
}
