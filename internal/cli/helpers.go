package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/morozRed/adaptivedoc/internal/config"
	"github.com/morozRed/adaptivedoc/internal/docs"
	"github.com/morozRed/adaptivedoc/internal/graph"
	"github.com/morozRed/adaptivedoc/internal/inject"
	"github.com/morozRed/adaptivedoc/internal/llm"
	"github.com/morozRed/adaptivedoc/internal/logging"
	"github.com/morozRed/adaptivedoc/internal/parser"
	"github.com/morozRed/adaptivedoc/internal/pipeline"
	"github.com/morozRed/adaptivedoc/internal/storage"
	"github.com/spf13/cobra"
)

// loadSettings resolves configuration and the logger for a command run on root.
func loadSettings(cmd *cobra.Command, root string) (*config.Config, string, *log.Logger, error) {
	configFile, err := OptionalStringFlag(cmd, "config")
	if err != nil {
		return nil, "", nil, err
	}
	cfg, cfgPath, err := config.Load(config.LoadOptions{
		Root:       root,
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, "", nil, err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, "", nil, err
	}
	if cfgPath != "" {
		logger.Debug("loaded config", "file", cfgPath)
	}
	return cfg, cfgPath, logger, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func buildGenerator(cfg *config.Config) (llm.Generator, error) {
	kind, err := llm.ParseKind(cfg.Generator)
	if err != nil {
		return nil, err
	}
	return llm.New(kind, cfg.ClientConfig())
}

func denyList(cfg *config.Config) *graph.DenyList {
	return graph.DefaultDenyListWith(cfg.DenyListExtra...)
}

// functionDocs returns the stored documentation of function-like symbols by
// qualified name.
func functionDocs(res *pipeline.Result) map[string]string {
	out := make(map[string]string)
	for _, entry := range res.Entries {
		if !entry.Symbol.Kind.FunctionLike() {
			continue
		}
		if text, ok := res.Store.Get(entry.Symbol.QualifiedName); ok {
			out[entry.Symbol.QualifiedName] = text
		}
	}
	return out
}

// injectFiles rewrites every discovered file whose module has stored function
// docs. Failures leave the file untouched and become InjectionFailure issues.
func injectFiles(root string, res *pipeline.Result, logger *log.Logger) ([]string, []parser.Issue) {
	qualified := functionDocs(res)
	rewritten := make([]string, 0)
	issues := make([]parser.Issue, 0)

	for _, file := range res.Parse.Files {
		moduleDocs := inject.ForModule(file.Module, qualified)
		if len(moduleDocs) == 0 {
			continue
		}
		out, written, err := inject.File(filepath.Join(root, filepath.FromSlash(file.Path)), moduleDocs)
		if err != nil {
			logger.Warn("injection failed", "file", file.Path, "error", err)
			issues = append(issues, parser.Issue{
				Kind:     parser.IssueInjectionFailure,
				File:     file.Path,
				Language: file.Language,
				Severity: "warning",
				Message:  err.Error(),
			})
			continue
		}
		if written {
			logger.Debug("rewrote file", "file", file.Path, "inserted", out.Inserted, "replaced", out.Replaced)
			rewritten = append(rewritten, file.Path)
		}
	}
	sort.Strings(rewritten)
	return rewritten, issues
}

func exportDatabase(ctx context.Context, path string, analysis *pipeline.Analysis, store *docs.Store) error {
	db, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if err := db.Export(ctx, analysis, store); err != nil {
		db.Close()
		return fmt.Errorf("failed to export to %s: %w", path, err)
	}
	return db.Close()
}

func injectionIssue(path string, err error) (parser.Issue, bool) {
	if !errors.Is(err, inject.ErrInjection) {
		return parser.Issue{}, false
	}
	return parser.Issue{
		Kind:     parser.IssueInjectionFailure,
		File:     path,
		Severity: "warning",
		Message:  err.Error(),
	}, true
}
