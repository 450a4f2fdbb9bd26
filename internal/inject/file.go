package inject

import (
	"fmt"
	"os"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
)

// ForModule narrows qualified-name docs to the bare names declared directly
// in module. Keys of other modules never leak into the result.
func ForModule(module string, docs map[string]string) map[string]string {
	prefix := module + "."
	out := make(map[string]string)
	for qualified, text := range docs {
		if !strings.HasPrefix(qualified, prefix) {
			continue
		}
		name := strings.TrimPrefix(qualified, prefix)
		if name == "" || strings.Contains(name, ".") {
			continue
		}
		out[name] = text
	}
	return out
}

// File injects docs into the file at path and rewrites it when the content
// changed. The file is left untouched on failure.
func File(path string, docs map[string]string) (Result, bool, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Result{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	res, err := Apply(src, docs)
	if err != nil {
		return res, false, fmt.Errorf("%s: %w", path, err)
	}
	if !res.Changed() {
		return res, false, nil
	}

	written, err := fileutil.WriteIfChanged(path, res.Source)
	if err != nil {
		return res, false, fmt.Errorf("write %s: %w", path, err)
	}
	return res, written, nil
}
