package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
)

// Generated report content lives between these markers; anything written
// outside them by hand survives reruns.
const (
	GeneratedStart = "<!-- adaptivedoc:generated:start -->"
	GeneratedEnd   = "<!-- adaptivedoc:generated:end -->"
)

// WriteGenerated stores body inside the generated block of the Markdown file
// at path and reports whether the file changed. Parent directories are
// created as needed.
func WriteGenerated(path, body string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	existing, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated := SpliceGenerated(string(existing), body)
	return fileutil.WriteIfChanged(path, []byte(updated))
}

// SpliceGenerated replaces the generated block of existing with body. When
// existing has no well-formed block the new block is appended.
func SpliceGenerated(existing, body string) string {
	block := GeneratedStart + "\n" + strings.TrimSpace(body) + "\n" + GeneratedEnd
	if strings.TrimSpace(existing) == "" {
		return block + "\n"
	}

	start := strings.Index(existing, GeneratedStart)
	end := strings.Index(existing, GeneratedEnd)
	if start >= 0 && end > start {
		end += len(GeneratedEnd)
		return fileutil.EnsureTrailingNewline(existing[:start] + block + existing[end:])
	}
	return fileutil.EnsureTrailingNewline(existing) + "\n" + block + "\n"
}

// HasGeneratedBlock reports whether data contains a generated block.
func HasGeneratedBlock(data string) bool {
	start := strings.Index(data, GeneratedStart)
	return start >= 0 && strings.Index(data, GeneratedEnd) > start
}
