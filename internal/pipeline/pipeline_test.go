package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/morozRed/adaptivedoc/internal/docs"
	"github.com/morozRed/adaptivedoc/internal/llm"
	"github.com/morozRed/adaptivedoc/internal/parser"
)

var fixtureRoot = filepath.Join("..", "..", "fixtures", "python")

// recorder is a deterministic generator that remembers the context each
// function was generated with.
type recorder struct {
	mu   sync.Mutex
	seen map[string][]string
	fail map[string]bool
}

func newRecorder(fail ...string) *recorder {
	r := &recorder{seen: make(map[string][]string), fail: make(map[string]bool)}
	for _, name := range fail {
		r.fail[name] = true
	}
	return r
}

func (r *recorder) Generate(ctx context.Context, code string, deps []string) (string, error) {
	name := funcName(code)
	r.mu.Lock()
	r.seen[name] = append([]string(nil), deps...)
	r.mu.Unlock()
	if r.fail[name] {
		return "", fmt.Errorf("model refused %s", name)
	}
	heads := make([]string, 0, len(deps))
	for _, dep := range deps {
		heads = append(heads, strings.SplitN(dep, "\n", 2)[0])
	}
	return fmt.Sprintf("Doc for %s.\n\nUses: %s", name, strings.Join(heads, "; ")), nil
}

func funcName(code string) string {
	header := strings.SplitN(code, "(", 2)[0]
	fields := strings.Fields(header)
	return fields[len(fields)-1]
}

func runFixture(t *testing.T, opts Options) *Result {
	t.Helper()
	if opts.Root == "" {
		opts.Root = fixtureRoot
	}
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return res
}

func TestRunWalksExecutionOrder(t *testing.T) {
	res := runFixture(t, Options{Generator: newRecorder()})

	want := []string{
		"services.math_service.square",
		"utils.helpers.normalize",
		"services.math_service.preprocess",
		"utils.helpers.mean",
		"services.stats_service.variance",
		"services.stats_service.rms",
		"main.analyze",
	}
	if got := strings.Join(res.Order.Names, ","); got != strings.Join(want, ",") {
		t.Fatalf("unexpected order:\n got %s\nwant %s", got, strings.Join(want, ","))
	}
	if len(res.Entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(res.Entries))
	}
	for i, entry := range res.Entries {
		if entry.Symbol.QualifiedName != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i], entry.Symbol.QualifiedName)
		}
	}
	if res.Count(StatusExisting) != 1 || res.Count(StatusGenerated) != 6 {
		t.Fatalf("expected 1 existing and 6 generated, got %d/%d", res.Count(StatusExisting), res.Count(StatusGenerated))
	}
	if res.Store.Len() != 7 {
		t.Fatalf("expected every symbol stored, got %d", res.Store.Len())
	}
}

func TestRunReusesExistingDocumentation(t *testing.T) {
	gen := newRecorder()
	res := runFixture(t, Options{Generator: gen})

	entry, ok := res.Store.Entry("utils.helpers.normalize")
	if !ok || entry.Source != docs.SourceExisting {
		t.Fatalf("expected normalize to be recorded as existing, got %+v", entry)
	}
	if entry.Text != "Normalize a list of numeric values to [0, 1]." {
		t.Fatalf("existing doc must be stored verbatim, got %q", entry.Text)
	}
	if _, called := gen.seen["normalize"]; called {
		t.Fatalf("generator must not be called for documented symbols")
	}
}

func TestRunFeedsDependencyDocsAsContext(t *testing.T) {
	gen := newRecorder()
	runFixture(t, Options{Generator: gen})

	variance := gen.seen["variance"]
	if len(variance) != 1 || !strings.HasPrefix(variance[0], "Function `utils.helpers.mean`:\nDoc for mean.") {
		t.Fatalf("expected variance context to carry mean's doc, got %q", variance)
	}

	preprocess := gen.seen["preprocess"]
	if len(preprocess) != 1 || !strings.Contains(preprocess[0], "Normalize a list of numeric values") {
		t.Fatalf("expected preprocess context to carry the existing normalize doc, got %q", preprocess)
	}

	rms := gen.seen["rms"]
	if len(rms) != 2 ||
		!strings.HasPrefix(rms[0], "Function `services.math_service.square`") ||
		!strings.HasPrefix(rms[1], "Function `utils.helpers.mean`") {
		t.Fatalf("expected rms context sorted by name, got %q", rms)
	}

	if got := gen.seen["square"]; len(got) != 0 {
		t.Fatalf("leaf symbols get no context, got %q", got)
	}
}

func TestRunHonorsContextLimit(t *testing.T) {
	gen := newRecorder()
	runFixture(t, Options{Generator: gen, ContextLimit: 1})
	if rms := gen.seen["rms"]; len(rms) != 1 || !strings.Contains(rms[0], "square") {
		t.Fatalf("expected context truncated to the first dependency, got %q", rms)
	}
}

func TestRunRecordsGenerationFailures(t *testing.T) {
	gen := newRecorder("rms")
	res := runFixture(t, Options{Generator: gen})

	if res.Store.Has("services.stats_service.rms") {
		t.Fatalf("failed symbol must not be stored")
	}
	var found *parser.Issue
	for i := range res.Issues {
		if res.Issues[i].Kind == parser.IssueGenerationFailure {
			found = &res.Issues[i]
		}
	}
	if found == nil || found.Symbol != "services.stats_service.rms" || found.File != "services/stats_service.py" {
		t.Fatalf("expected a GenerationFailure issue for rms, got %+v", res.Issues)
	}

	analyze := gen.seen["analyze"]
	if len(analyze) != 1 || !strings.Contains(analyze[0], "services.stats_service.variance") {
		t.Fatalf("expected analyze to continue with the surviving dependency, got %q", analyze)
	}
	if !res.Store.Has("main.analyze") {
		t.Fatalf("run must continue after a failure")
	}
}

func TestRunRejectsInvalidOutput(t *testing.T) {
	gen := llm.GeneratorFunc(func(ctx context.Context, code string, deps []string) (string, error) {
		return "```\n```", nil
	})
	res := runFixture(t, Options{Generator: gen})
	if res.Count(StatusFailed) != 6 {
		t.Fatalf("expected every generation to fail, got %d", res.Count(StatusFailed))
	}
	for _, entry := range res.Entries {
		if entry.Status == StatusFailed && !errors.Is(entry.Err, llm.ErrEmptyOutput) {
			t.Fatalf("expected ErrEmptyOutput, got %v", entry.Err)
		}
	}
}

func TestRunWorkersMatchSequentialPass(t *testing.T) {
	sequential := runFixture(t, Options{Generator: newRecorder(), Workers: 1})
	for i := 0; i < 5; i++ {
		parallel := runFixture(t, Options{Generator: newRecorder(), Workers: 4})
		want := sequential.Store.Snapshot()
		got := parallel.Store.Snapshot()
		if len(got) != len(want) {
			t.Fatalf("store size mismatch: %d vs %d", len(got), len(want))
		}
		for name, text := range want {
			if got[name] != text {
				t.Fatalf("%s differs between sequential and parallel runs:\n%q\n%q", name, text, got[name])
			}
		}
	}
}

func TestRunSelectorLimitsGeneration(t *testing.T) {
	gen := newRecorder()
	res := runFixture(t, Options{Generator: gen, Selector: "./utils/helpers.py"})

	if len(gen.seen) != 1 {
		t.Fatalf("expected only mean to be generated, got %v", gen.seen)
	}
	if _, ok := gen.seen["mean"]; !ok {
		t.Fatalf("expected mean to be generated, got %v", gen.seen)
	}
	if res.Count(StatusSkipped) != 5 || res.Count(StatusExisting) != 1 {
		t.Fatalf("unexpected counts skipped=%d existing=%d", res.Count(StatusSkipped), res.Count(StatusExisting))
	}
}

func TestRunReportsProgress(t *testing.T) {
	var calls []int
	runFixture(t, Options{Generator: newRecorder(), Progress: func(done, total int, name string) {
		if total != 7 {
			t.Errorf("unexpected total %d", total)
		}
		calls = append(calls, done)
	}})
	if len(calls) != 7 || calls[6] != 7 {
		t.Fatalf("expected 7 progress calls, got %v", calls)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, Options{Root: fixtureRoot, Generator: newRecorder()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res == nil || res.Count(StatusFailed) != 6 || res.Store.Len() != 1 {
		t.Fatalf("expected pending symbols to fail and only existing docs to be stored")
	}
}

func TestRunRequiresGenerator(t *testing.T) {
	if _, err := Run(context.Background(), Options{Root: fixtureRoot}); err == nil {
		t.Fatalf("expected missing generator error")
	}
}

func TestAnalyzeReportsCycles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "loop.py"), "def ping(n):\n    return pong(n)\n\n\ndef pong(n):\n    return ping(n)\n")

	analysis, err := Analyze(Options{Root: root})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !analysis.Order.Cycle {
		t.Fatalf("expected a cycle")
	}
	if got := strings.Join(analysis.Order.Names, ","); got != "loop.ping,loop.pong" {
		t.Fatalf("expected discovery order fallback, got %s", got)
	}
	found := false
	for _, issue := range analysis.Issues {
		if issue.Kind == parser.IssueGraphCycle {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a GraphCycleDetected issue, got %+v", analysis.Issues)
	}
}

func TestAnalyzeSkipsBrokenFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "ok.py"), "def fine():\n    return 1\n")
	mustWriteFile(t, filepath.Join(root, "bad.py"), "def broken(:\n    return\n")

	analysis, err := Analyze(Options{Root: root})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got := strings.Join(analysis.Order.Names, ","); got != "ok.fine" {
		t.Fatalf("expected only ok.fine, got %s", got)
	}
	if len(analysis.Issues) != 1 || analysis.Issues[0].Kind != parser.IssueParseFailure || analysis.Issues[0].File != "bad.py" {
		t.Fatalf("expected one ParseFailure for bad.py, got %+v", analysis.Issues)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}
