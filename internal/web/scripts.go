package web

import (
	"fmt"
	"html/template"
)

// Scripts tracks the external scripts already emitted into one HTML document.
// A fresh Scripts is created for every rendered page.
type Scripts struct {
	loaded map[string]bool
}

// NewScripts returns an empty per-document script set
func NewScripts() *Scripts {
	return &Scripts{loaded: make(map[string]bool)}
}

// EnsureLoaded returns the script tag for url the first time it is asked for
// and nothing on later calls within the same document.
func (s *Scripts) EnsureLoaded(url string) template.HTML {
	if url == "" || s.loaded[url] {
		return ""
	}
	s.loaded[url] = true
	//nolint:gosec // G203: url is escaped and comes from configuration
	return template.HTML(fmt.Sprintf(`<script src="%s" async></script>`, template.HTMLEscapeString(url)))
}

// Loaded reports whether url was already emitted
func (s *Scripts) Loaded(url string) bool {
	return s.loaded[url]
}
