// Package escape implements the engine's HTML escaping and its exact
// inverse, used by the evaluator's auto-escape path and the rawHtml
// built-in respectively.
package escape

import "strings"

// Escape replaces, in this fixed order, '&' -> "&amp;", '>' -> "&gt;",
// '<' -> "&lt;", '"' -> "&quot;". The '&' substitution must run first so
// the ampersands it introduces for the other three are not re-escaped.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// Unescape undoes Escape's four substitutions, in reverse order, so
// that Unescape(Escape(s)) == s for any s containing only the four
// substitution subjects.
func Unescape(s string) string {
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
