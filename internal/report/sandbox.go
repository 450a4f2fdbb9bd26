package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
	"github.com/morozRed/adaptivedoc/internal/inject"
	"github.com/morozRed/adaptivedoc/internal/parser"
	"github.com/morozRed/adaptivedoc/internal/pipeline"
)

// SandboxSource concatenates the code of every scheduled symbol in execution
// order, each block headed by "# From <module>", and returns it together with
// the bare-name documentation mapping used to inject it. Later names win.
func SandboxSource(res *pipeline.Result) (string, map[string]string) {
	var b strings.Builder
	docs := make(map[string]string)
	for _, entry := range res.Entries {
		sym := entry.Symbol
		b.WriteString("# From " + sym.Module + "\n")
		b.WriteString(sym.Code + "\n\n")

		if !sym.Kind.FunctionLike() {
			continue
		}
		if text, ok := res.Store.Get(sym.QualifiedName); ok {
			docs[parser.ShortName(sym.QualifiedName)] = text
		}
	}
	return b.String(), docs
}

// Sandbox builds the sandbox module and injects the run's documentation into
// it. When injection fails the uninjected source is returned with the error.
func Sandbox(res *pipeline.Result) (inject.Result, error) {
	src, docs := SandboxSource(res)
	return inject.Apply([]byte(src), docs)
}

// WriteSandbox writes the injected sandbox module to path. An injection
// failure still writes the plain concatenation and returns the error so the
// caller can report it.
func WriteSandbox(path string, res *pipeline.Result) (inject.Result, error) {
	out, injectErr := Sandbox(res)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return out, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if _, err := fileutil.WriteIfChanged(path, out.Source); err != nil {
		return out, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out, injectErr
}
