package parser

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/morozRed/adaptivedoc/internal/ignore"
)

// mockParser declares one symbol per non-empty line. "class X" declares a
// class, anything else a function; content starting with "!" fails to parse.
type mockParser struct {
	lang string
	exts []string
}

func (m mockParser) Language() string {
	return m.lang
}

func (m mockParser) Extensions() []string {
	return m.exts
}

func (m mockParser) Parse(filename string, content []byte) (*FileSymbols, error) {
	text := string(content)
	if strings.HasPrefix(text, "!") {
		return nil, errors.New("unexpected token")
	}
	result := &FileSymbols{Path: filename, Language: m.lang}
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sym := Symbol{Name: line, Kind: SymbolFunction, Signature: "def " + line + "()", Line: i + 1}
		if strings.HasPrefix(line, "class ") {
			sym.Name = strings.TrimPrefix(line, "class ")
			sym.Kind = SymbolClass
			sym.Signature = line
		}
		result.Symbols = append(result.Symbols, sym)
	}
	return result, nil
}

func newMockRegistry() *Registry {
	r := NewRegistry()
	r.Register(mockParser{lang: "mock", exts: []string{".mock"}})
	return r
}

func TestRegistryGetParserForFile(t *testing.T) {
	r := newMockRegistry()

	p, ok := r.GetParserForFile("demo.MOCK")
	if !ok {
		t.Fatalf("expected parser for .MOCK extension")
	}
	if p.Language() != "mock" {
		t.Fatalf("expected language mock, got %s", p.Language())
	}
}

func TestParseDirectoryRespectsIgnoreRules(t *testing.T) {
	root := t.TempDir()
	r := newMockRegistry()

	mustWriteFile(t, filepath.Join(root, "keep.mock"), "ok")
	mustWriteFile(t, filepath.Join(root, "skip", "ignored.mock"), "x")
	mustWriteFile(t, filepath.Join(root, "skip", "include.mock"), "y")
	mustWriteFile(t, filepath.Join(root, ".adaptivedoc", "hidden.mock"), "z")

	result, err := r.ParseDirectory(root, ignore.NewMatcher([]string{
		"skip/*",
		"!skip/include.mock",
	}))
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}

	got := make([]string, 0, len(result.Files))
	for _, file := range result.Files {
		got = append(got, file.Path)
	}
	sort.Strings(got)

	want := []string{"keep.mock", "skip/include.mock"}
	if len(got) != len(want) {
		t.Fatalf("expected %d parsed files, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseDirectoryAssignsQualifiedNamesInDiscoveryOrder(t *testing.T) {
	root := t.TempDir()
	r := newMockRegistry()

	mustWriteFile(t, filepath.Join(root, "utils", "helpers.mock"), "normalize\nmean")
	mustWriteFile(t, filepath.Join(root, "main.mock"), "analyze")
	mustWriteFile(t, filepath.Join(root, "services", "stats_service.mock"), "class Stats\nvariance")

	result, err := r.ParseDirectory(root, nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}

	var got []string
	for _, sym := range result.Symbols() {
		got = append(got, sym.QualifiedName)
	}
	want := "main.analyze,services.stats_service.Stats,services.stats_service.variance,utils.helpers.normalize,utils.helpers.mean"
	if strings.Join(got, ",") != want {
		t.Fatalf("unexpected discovery order:\n got %s\nwant %s", strings.Join(got, ","), want)
	}

	sym := result.Symbols()[2]
	if sym.Module != "services.stats_service" || sym.File != "services/stats_service.mock" {
		t.Fatalf("unexpected location fields: module=%q file=%q", sym.Module, sym.File)
	}

	if _, ok := result.Index.Lookup("Stats"); ok {
		t.Fatalf("classes must not be indexed by short name")
	}
	if qn, ok := result.Index.Lookup("mean"); !ok || qn != "utils.helpers.mean" {
		t.Fatalf("expected mean -> utils.helpers.mean, got %q (%v)", qn, ok)
	}
}

func TestParseDirectorySkipsFilesThatFailToParse(t *testing.T) {
	root := t.TempDir()
	r := newMockRegistry()

	mustWriteFile(t, filepath.Join(root, "good.mock"), "mean")
	mustWriteFile(t, filepath.Join(root, "bad.mock"), "!variance")

	result, err := r.ParseDirectory(root, nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	if len(result.Files) != 1 || result.Files[0].Path != "good.mock" {
		t.Fatalf("expected only good.mock to be parsed, got %#v", result.Files)
	}
	if _, ok := result.Index.Lookup("variance"); ok {
		t.Fatalf("symbols of a failed file must not be indexed")
	}
	if len(result.Issues) != 1 {
		t.Fatalf("expected one issue, got %#v", result.Issues)
	}
	issue := result.Issues[0]
	if issue.Kind != IssueParseFailure || issue.File != "bad.mock" || issue.Language != "mock" {
		t.Fatalf("unexpected issue %#v", issue)
	}
}

func TestParseDirectoryReportsShortNameCollisions(t *testing.T) {
	root := t.TempDir()
	r := newMockRegistry()

	mustWriteFile(t, filepath.Join(root, "a.mock"), "mean")
	mustWriteFile(t, filepath.Join(root, "b.mock"), "mean")

	result, err := r.ParseDirectory(root, nil)
	if err != nil {
		t.Fatalf("ParseDirectory failed: %v", err)
	}
	if qn, _ := result.Index.Lookup("mean"); qn != "b.mean" {
		t.Fatalf("expected last discovered symbol to win, got %q", qn)
	}
	var collisions []Issue
	for _, issue := range result.Issues {
		if issue.Kind == IssueNameCollision {
			collisions = append(collisions, issue)
		}
	}
	if len(collisions) != 1 || !strings.Contains(collisions[0].Message, "a.mean") {
		t.Fatalf("expected one collision naming a.mean, got %#v", collisions)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
