package parser

import (
	"path"
	"path/filepath"
	"strings"
)

// ModuleName derives the dotted module path for a root-relative file path.
// Format: dir/sub/file.py -> dir.sub.file.
func ModuleName(relPath string) string {
	relPath = filepath.ToSlash(strings.TrimSpace(relPath))
	relPath = strings.TrimPrefix(relPath, "./")
	relPath = strings.TrimSuffix(relPath, path.Ext(relPath))
	return strings.ReplaceAll(relPath, "/", ".")
}

// QualifiedName joins a module path and a declared name.
func QualifiedName(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}

// ShortName returns the declared name of a qualified name.
func ShortName(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx != -1 {
		return qualified[idx+1:]
	}
	return qualified
}
