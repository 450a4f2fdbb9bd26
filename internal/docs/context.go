package docs

import (
	"fmt"
	"sort"
)

// DefaultContextLimit caps how many dependency texts feed one generation.
const DefaultContextLimit = 2

// Lookup reads stored documentation by qualified name.
type Lookup interface {
	Get(name string) (string, bool)
}

// Dependencies exposes the direct dependencies of a graph node.
type Dependencies interface {
	Predecessors(name string) []string
}

// ContextEntry is one dependency documentation text handed to generation.
type ContextEntry struct {
	Name string `json:"name" yaml:"name"`
	Text string `json:"text" yaml:"text"`
}

// Assemble gathers the stored documentation of name's direct dependencies,
// sorted by qualified name and truncated to limit entries. Dependencies
// without stored text are skipped. A limit <= 0 uses DefaultContextLimit.
func Assemble(name string, deps Dependencies, lookup Lookup, limit int) []ContextEntry {
	if limit <= 0 {
		limit = DefaultContextLimit
	}

	preds := append([]string(nil), deps.Predecessors(name)...)
	sort.Strings(preds)

	out := make([]ContextEntry, 0, limit)
	for _, pred := range preds {
		if len(out) == limit {
			break
		}
		text, ok := lookup.Get(pred)
		if !ok {
			continue
		}
		out = append(out, ContextEntry{Name: pred, Text: text})
	}
	return out
}

// Render formats context entries the way they are handed to a generator.
func Render(entries []ContextEntry) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, fmt.Sprintf("Function `%s`:\n%s", entry.Name, entry.Text))
	}
	return out
}
