// Package pipeline drives one documentation run: discovery, graph
// construction, scheduling and the generation loop over the execution order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/morozRed/adaptivedoc/internal/docs"
	"github.com/morozRed/adaptivedoc/internal/graph"
	"github.com/morozRed/adaptivedoc/internal/ignore"
	"github.com/morozRed/adaptivedoc/internal/languages"
	"github.com/morozRed/adaptivedoc/internal/llm"
	"github.com/morozRed/adaptivedoc/internal/logging"
	"github.com/morozRed/adaptivedoc/internal/parser"
	"golang.org/x/sync/errgroup"
)

// Status is the outcome of one scheduled symbol.
type Status string

const (
	StatusExisting  Status = "existing"
	StatusGenerated Status = "generated"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Options configures a run.
type Options struct {
	Root     string
	Matcher  *ignore.Matcher
	Registry *parser.Registry // nil uses the Python registry
	Deny     *graph.DenyList  // nil uses the builtin deny list

	Generator    llm.Generator
	ContextLimit int
	Workers      int
	RequireNumPy bool
	// Selector restricts generation to matching symbols. Existing docs are
	// always reused.
	Selector string

	Logger *log.Logger
	// Progress is called after every finished symbol.
	Progress func(done, total int, name string)
}

// Analysis is everything known before generation starts.
type Analysis struct {
	Root    string
	Parse   *parser.ParseResult
	Symbols []parser.Symbol
	Graph   *graph.Graph
	Stats   graph.Stats
	Order   graph.Order
	Issues  []parser.Issue
}

// Entry is the outcome for one name of the execution order.
type Entry struct {
	Symbol  parser.Symbol
	Status  Status
	Doc     string
	Context []docs.ContextEntry
	Err     error
}

// Result is a finished run. Entries follow the execution order.
type Result struct {
	*Analysis
	Store    *docs.Store
	Entries  []Entry
	Duration time.Duration
}

// Count returns the number of entries with status.
func (r *Result) Count(status Status) int {
	n := 0
	for _, entry := range r.Entries {
		if entry.Status == status {
			n++
		}
	}
	return n
}

// Analyze discovers symbols under opts.Root, builds the dependency graph and
// computes the execution order. Unparseable files, name collisions and
// cycles become issues; only an unreadable root is an error.
func Analyze(opts Options) (*Analysis, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	registry := opts.Registry
	if registry == nil {
		registry = languages.NewDefaultRegistry()
	}

	parsed, err := registry.ParseDirectory(opts.Root, opts.Matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source files: %w", err)
	}
	symbols := parsed.Symbols()
	logger.Info("discovered symbols", "files", len(parsed.Files), "symbols", len(symbols), "indexed", parsed.Index.Len())

	g, stats := graph.Build(symbols, parsed.Index, graph.Options{Deny: opts.Deny})
	logger.Debug("built dependency graph", "nodes", len(g.Order()), "edges", stats.Edges, "denied", stats.Denied, "unresolved", stats.Unresolved)

	order := graph.Schedule(g, symbols)
	issues := append([]parser.Issue(nil), parsed.Issues...)
	if order.Cycle {
		issues = append(issues, parser.Issue{
			Kind:     parser.IssueGraphCycle,
			Severity: "warning",
			Message:  fmt.Sprintf("dependency cycle among %s; falling back to discovery order", strings.Join(order.Cyclic, ", ")),
		})
	}
	for _, issue := range issues {
		logger.Warn(issue.Message, "kind", issue.Kind, "file", issue.File)
	}

	return &Analysis{
		Root:    opts.Root,
		Parse:   parsed,
		Symbols: symbols,
		Graph:   g,
		Stats:   stats,
		Order:   order,
		Issues:  issues,
	}, nil
}

// Run analyzes the tree and walks the execution order. Symbols that already
// carry documentation have it recorded verbatim; every other symbol gets the
// stored docs of its direct dependencies as context and is handed to the
// generator. A failed generation becomes a GenerationFailure issue and the
// symbol is omitted from the store.
//
// With more than one worker, a symbol starts only after every dependency
// scheduled before it has finished, so the store ends up as in a sequential
// pass. A cancelled ctx fails pending symbols and is returned as error
// alongside the partial result.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Generator == nil {
		return nil, errors.New("pipeline: no generator configured")
	}
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
		opts.Logger = logger
	}

	analysis, err := Analyze(opts)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Analysis: analysis,
		Store:    docs.NewStore(),
		Entries:  make([]Entry, len(analysis.Order.Names)),
	}

	// last declaration wins for redefined qualified names
	byName := make(map[string]parser.Symbol, len(analysis.Symbols))
	for _, sym := range analysis.Symbols {
		byName[sym.QualifiedName] = sym
	}

	position := make(map[string]int, len(analysis.Order.Names))
	done := make(map[string]chan struct{}, len(analysis.Order.Names))
	for i, name := range analysis.Order.Names {
		position[name] = i
		done[name] = make(chan struct{})
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	selector := NormalizeSelector(opts.Selector)

	var (
		progressMu sync.Mutex
		finished   int
	)
	report := func(name string) {
		if opts.Progress == nil {
			return
		}
		progressMu.Lock()
		finished++
		n := finished
		opts.Progress(n, len(res.Entries), name)
		progressMu.Unlock()
	}

	group := new(errgroup.Group)
	group.SetLimit(workers)
	for i, name := range analysis.Order.Names {
		i, name := i, name
		sym := byName[name]
		waitFor := make([]chan struct{}, 0)
		for _, pred := range analysis.Graph.Predecessors(name) {
			if pos, ok := position[pred]; ok && pos < i {
				waitFor = append(waitFor, done[pred])
			}
		}

		group.Go(func() error {
			defer close(done[name])
			defer report(name)
			for _, ch := range waitFor {
				<-ch
			}
			res.Entries[i] = process(ctx, opts, selector, sym, analysis.Graph, res.Store)
			return nil
		})
	}
	_ = group.Wait()

	for _, entry := range res.Entries {
		if entry.Status != StatusFailed {
			continue
		}
		res.Issues = append(res.Issues, parser.Issue{
			Kind:     parser.IssueGenerationFailure,
			File:     entry.Symbol.File,
			Symbol:   entry.Symbol.QualifiedName,
			Severity: "warning",
			Message:  entry.Err.Error(),
		})
	}
	res.Duration = time.Since(start)

	logger.Info("documentation run complete",
		"existing", res.Count(StatusExisting),
		"generated", res.Count(StatusGenerated),
		"failed", res.Count(StatusFailed),
		"skipped", res.Count(StatusSkipped),
		"duration", res.Duration.Round(time.Millisecond),
	)
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("documentation run interrupted: %w", err)
	}
	return res, nil
}

func process(ctx context.Context, opts Options, selector string, sym parser.Symbol, g *graph.Graph, store *docs.Store) Entry {
	entry := Entry{Symbol: sym}
	name := sym.QualifiedName

	if sym.HasDoc() {
		if err := store.Record(name, sym.Doc, docs.SourceExisting); err != nil {
			entry.Status = StatusFailed
			entry.Err = err
			return entry
		}
		entry.Status = StatusExisting
		entry.Doc = sym.Doc
		return entry
	}

	if !MatchesSelector(sym, selector) {
		entry.Status = StatusSkipped
		return entry
	}

	entry.Context = docs.Assemble(name, g, store, opts.ContextLimit)
	if err := ctx.Err(); err != nil {
		entry.Status = StatusFailed
		entry.Err = fmt.Errorf("generate %s: %w", name, err)
		return entry
	}

	text, err := opts.Generator.Generate(ctx, sym.Code, docs.Render(entry.Context))
	if err == nil {
		text = llm.CleanOutput(text)
		err = llm.ValidateDoc(text, opts.RequireNumPy)
	}
	if err == nil {
		err = store.Record(name, text, docs.SourceGenerated)
	}
	if err != nil {
		entry.Status = StatusFailed
		entry.Err = fmt.Errorf("generate %s: %w", name, err)
		opts.Logger.Warn("generation failed", "symbol", name, "error", err)
		return entry
	}

	entry.Status = StatusGenerated
	entry.Doc = text
	opts.Logger.Debug("generated docstring", "symbol", name, "context", len(entry.Context))
	return entry
}
