package fileutil

import "golang.org/x/exp/slices"

// SortedUnique returns the distinct values of items in ascending order
// without modifying items.
func SortedUnique(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := slices.Clone(items)
	slices.Sort(out)
	return slices.Compact(out)
}

// SortedKeys returns the keys of values in ascending order.
func SortedKeys[V any](values map[string]V) []string {
	out := make([]string, 0, len(values))
	for key := range values {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}
