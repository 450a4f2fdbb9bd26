package inject

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morozRed/adaptivedoc/internal/languages"
)

const numpyDoc = "Compute the root mean square.\n\nParameters\n----------\nvalues : list of float\n    Input values.\n\nReturns\n-------\nfloat\n    The RMS of values."

const statsSource = `from utils.helpers import mean
from services.math_service import square


def variance(values):
    """Old summary."""
    avg = mean(values)
    return sum((v - avg) ** 2 for v in values) / len(values)


def rms(values):
    return mean([square(v) for v in values]) ** 0.5


def untouched(x):
    # keep me exactly
    return x  # trailing comment
`

func parseDocs(t *testing.T, src []byte) map[string]string {
	t.Helper()
	p := languages.NewPythonParser()
	defer p.Close()
	file, err := p.Parse("out.py", src)
	if err != nil {
		t.Fatalf("rewritten source does not parse: %v\n%s", err, src)
	}
	out := make(map[string]string, len(file.Symbols))
	for _, sym := range file.Symbols {
		out[sym.Name] = sym.Doc
	}
	return out
}

func TestApplyInsertsDocstringAsFirstStatement(t *testing.T) {
	res, err := Apply([]byte(statsSource), map[string]string{"rms": numpyDoc})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Inserted != 1 || res.Replaced != 0 {
		t.Fatalf("expected one insertion, got %+v", res)
	}

	want := "def rms(values):\n    \"\"\"\n" + numpyDoc + "\n\"\"\"\n    return mean([square(v) for v in values]) ** 0.5\n"
	if !strings.Contains(string(res.Source), want) {
		t.Fatalf("unexpected rewrite:\n%s", res.Source)
	}
	if !strings.Contains(string(res.Source), "Parameters\n----------") {
		t.Fatalf("expected NumPy section verbatim in output")
	}
}

func TestApplyReplacesExistingDocstringOnly(t *testing.T) {
	res, err := Apply([]byte(statsSource), map[string]string{"variance": "New summary."})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Replaced != 1 || res.Inserted != 0 {
		t.Fatalf("expected one replacement, got %+v", res)
	}

	want := strings.Replace(statsSource, `"""Old summary."""`, "\"\"\"\nNew summary.\n\"\"\"", 1)
	if string(res.Source) != want {
		t.Fatalf("unexpected rewrite:\n got:\n%s\nwant:\n%s", res.Source, want)
	}
}

func TestApplyLeavesUntouchedRegionsByteIdentical(t *testing.T) {
	src := []byte(statsSource)
	res, err := Apply(src, map[string]string{"rms": numpyDoc, "variance": "New summary."})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	out := string(res.Source)

	header := "from utils.helpers import mean\nfrom services.math_service import square\n\n\ndef variance(values):\n    "
	if !strings.HasPrefix(out, header) {
		t.Fatalf("expected module header untouched, got:\n%s", out)
	}
	tail := statsSource[strings.Index(statsSource, "\n\ndef untouched"):]
	if !strings.HasSuffix(out, tail) {
		t.Fatalf("expected untouched declaration byte-identical, got:\n%s", out)
	}
	if !strings.Contains(out, "    avg = mean(values)\n    return sum((v - avg) ** 2 for v in values) / len(values)\n") {
		t.Fatalf("expected variance body untouched")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	sources := map[string]string{
		"stats": statsSource,
		"methods": `class Stats:
    def rms(self, values):
        def inner():
            return 1
        return inner()

    @staticmethod
    def variance(values):
        "short"
        return 0
`,
		"one_line":  "def rms(values): return values\n",
		"comment":   "def rms(values):\n    # explain\n    return values\n",
		"tabs":      "def rms(values):\n\treturn values\n",
		"crlf":      "def rms(values):\r\n    return values\r\n",
		"async":     "async def rms(values):\n    return await values\n",
		"no_eol":    "def rms(values):\n    return values",
		"nested_if": "if True:\n    def rms(values):\n        return values\n",
	}
	docs := map[string]string{
		"rms":      numpyDoc,
		"variance": "Variance with \"\"\" quotes and a \\ backslash.",
		"inner":    "Inner helper.",
	}

	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			once, err := Source([]byte(src), docs)
			if err != nil {
				t.Fatalf("first Apply failed: %v", err)
			}
			twice, err := Source(once, docs)
			if err != nil {
				t.Fatalf("second Apply failed: %v", err)
			}
			if string(once) != string(twice) {
				t.Fatalf("not idempotent:\nonce:\n%s\ntwice:\n%s", once, twice)
			}

			got := parseDocs(t, once)
			for fn, want := range docs {
				doc, ok := got[fn]
				if !ok {
					continue
				}
				if doc != want {
					t.Fatalf("%s: expected docstring %q, got %q", fn, want, doc)
				}
			}
		})
	}
}

func TestApplyRoundTripsText(t *testing.T) {
	texts := []string{
		numpyDoc,
		"Single line.",
		`Mentions C:\path and "quotes".`,
		"Ends with a quote \"",
	}
	for _, text := range texts {
		out, err := Source([]byte("def f(x):\n    return x\n"), map[string]string{"f": text})
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if got := parseDocs(t, out)["f"]; got != text {
			t.Fatalf("round trip mismatch:\n got %q\nwant %q\nsource:\n%s", got, text, out)
		}
	}
}

func TestApplyRewritesEverySameNamedDeclaration(t *testing.T) {
	src := "class A:\n    def run(self):\n        return 1\n\nclass B:\n    def run(self):\n        return 2\n"
	res, err := Apply([]byte(src), map[string]string{"run": "Run it."})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("expected both run methods rewritten, got %+v", res)
	}
	if strings.Count(string(res.Source), "Run it.") != 2 {
		t.Fatalf("expected text twice, got:\n%s", res.Source)
	}
}

func TestApplyIgnoresClassesAndUnknownNames(t *testing.T) {
	src := "class rms:\n    pass\n\ndef other():\n    pass\n"
	res, err := Apply([]byte(src), map[string]string{"rms": "Doc."})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if res.Changed() || string(res.Source) != src {
		t.Fatalf("expected no change, got:\n%s", res.Source)
	}
}

func TestApplyReturnsOriginalOnParseFailure(t *testing.T) {
	src := []byte("def rms(values:\n    return values\n")
	out, err := Source(src, map[string]string{"rms": "Doc."})
	if !errors.Is(err, ErrInjection) {
		t.Fatalf("expected ErrInjection, got %v", err)
	}
	if string(out) != string(src) {
		t.Fatalf("expected original source back, got:\n%s", out)
	}
}

func TestForModuleScopesByQualifiedName(t *testing.T) {
	docs := map[string]string{
		"utils.helpers.mean":              "Helpers mean.",
		"utils.helpers.normalize":         "Normalize.",
		"stats.mean":                      "Stats mean.",
		"utils.helpers_extra.mean":        "Other module.",
		"services.stats_service.variance": "Variance.",
	}
	got := ForModule("utils.helpers", docs)
	if len(got) != 2 || got["mean"] != "Helpers mean." || got["normalize"] != "Normalize." {
		t.Fatalf("unexpected module docs %#v", got)
	}
}

func TestFileRewritesOnlyWhenChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.py")
	if err := os.WriteFile(path, []byte("def f():\n    return 1\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, written, err := File(path, map[string]string{"f": "Return one."})
	if err != nil || !written {
		t.Fatalf("expected first injection to write, written=%v err=%v", written, err)
	}
	_, written, err = File(path, map[string]string{"f": "Return one."})
	if err != nil {
		t.Fatalf("second injection failed: %v", err)
	}
	if written {
		t.Fatalf("expected idempotent second injection to leave the file alone")
	}

	broken := filepath.Join(t.TempDir(), "broken.py")
	if err := os.WriteFile(broken, []byte("def f(:\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := File(broken, map[string]string{"f": "x"}); !errors.Is(err, ErrInjection) {
		t.Fatalf("expected ErrInjection for broken file, got %v", err)
	}
	data, _ := os.ReadFile(broken)
	if string(data) != "def f(:\n" {
		t.Fatalf("broken file must stay untouched, got %q", data)
	}
}
