// Package routes is the single source of truth for how console paths are
// classified. Both the edge filter and the route guard consume the same
// Table so the two layers cannot drift apart.
package routes

import "strings"

// Class is the authentication classification of a request path.
type Class int

const (
	// Unclassified paths neither require nor forbid authentication.
	Unclassified Class = iota
	// Public paths must be reachable without a session (login and friends).
	Public
	// Protected paths require an authenticated session.
	Protected
)

func (c Class) String() string {
	switch c {
	case Public:
		return "public"
	case Protected:
		return "protected"
	default:
		return "unclassified"
	}
}

// Table holds the ordered route tables plus the well-known navigation
// targets. Public entries win over Protected ones when both match.
type Table struct {
	Public    []string
	Protected []string

	LoginPath     string
	DashboardPath string

	// SkipPrefixes are never filtered or redirected: static assets, API
	// routes, health and metrics endpoints. API authorization is enforced
	// separately (401, never a redirect).
	SkipPrefixes []string
}

// Default returns the console's route table.
func Default() *Table {
	return &Table{
		Public: []string{"/login", "/api/session"},
		Protected: []string{
			"/dashboard",
			"/patients",
			"/dentists",
			"/appointments",
			"/waitlist",
			"/treatment-plans",
			"/users",
			"/profile",
		},
		LoginPath:     "/login",
		DashboardPath: "/dashboard",
		SkipPrefixes: []string{
			"/assets/",
			"/static/",
			"/favicon.ico",
			"/metrics",
			"/livez",
			"/readyz",
		},
	}
}

// Classify maps a path to exactly one class. A path matches a table entry if
// it equals the entry or starts with entry + "/".
func (t *Table) Classify(path string) Class {
	if matchAny(t.Public, path) {
		return Public
	}
	if matchAny(t.Protected, path) {
		return Protected
	}
	return Unclassified
}

// IsPublic reports whether path is on the public allow-list.
func (t *Table) IsPublic(path string) bool {
	return matchAny(t.Public, path)
}

// Skip reports whether the path is excluded from gate filtering entirely.
func (t *Table) Skip(path string) bool {
	for _, p := range t.SkipPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// IsAPI reports whether the path belongs to the JSON API surface. API
// requests are gated but answered with 401 instead of a redirect.
func (t *Table) IsAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func matchAny(entries []string, path string) bool {
	for _, e := range entries {
		if path == e || strings.HasPrefix(path, e+"/") {
			return true
		}
	}
	return false
}
