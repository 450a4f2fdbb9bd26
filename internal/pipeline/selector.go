package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/parser"
)

// MatchesSelector reports whether sym is addressed by a normalized selector.
// A selector may name a file (or a prefix or suffix of its path), a qualified
// or bare symbol name, "file:name", "file:line" or "file:line:name".
func MatchesSelector(sym parser.Symbol, selector string) bool {
	if selector == "" {
		return true
	}
	file := NormalizeSelector(sym.File)
	qualified := strings.ToLower(sym.QualifiedName)
	name := strings.ToLower(strings.TrimSpace(sym.Name))
	line := strconv.Itoa(sym.Line)

	candidates := []string{
		file,
		qualified,
		name,
		file + ":" + name,
		file + ":" + line,
		file + ":" + line + ":" + name,
	}
	for _, candidate := range candidates {
		if selector == candidate {
			return true
		}
	}

	if strings.HasPrefix(file, selector) || strings.HasSuffix(file, selector) {
		return true
	}
	return strings.HasPrefix(qualified, selector+".")
}

// NormalizeSelector lowercases value and turns it into a slash-separated
// path without a leading "./".
func NormalizeSelector(value string) string {
	normalized := strings.TrimSpace(value)
	if normalized == "" {
		return ""
	}
	normalized = filepath.ToSlash(normalized)
	normalized = strings.TrimPrefix(normalized, "./")
	return strings.ToLower(normalized)
}
