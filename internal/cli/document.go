package cli

import (
	"fmt"
	"time"

	"github.com/morozRed/adaptivedoc/internal/pipeline"
	"github.com/morozRed/adaptivedoc/internal/report"
	"github.com/spf13/cobra"
)

func RunDocument(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	cfg, cfgPath, logger, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}

	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	write, err := OptionalBoolFlag(cmd, "write")
	if err != nil {
		return err
	}
	noSandbox, err := OptionalBoolFlag(cmd, "no-sandbox")
	if err != nil {
		return err
	}
	failOnError, err := OptionalBoolFlag(cmd, "fail-on-error")
	if err != nil {
		return err
	}
	selector, err := OptionalStringFlag(cmd, "select")
	if err != nil {
		return err
	}
	dbPath, err := OptionalStringFlag(cmd, "db")
	if err != nil {
		return err
	}

	matcher, err := NewMatcher(rootPath)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}

	progress := newProgressReporter("documenting", asJSON)
	ctx := commandContext(cmd)
	res, err := pipeline.Run(ctx, pipeline.Options{
		Root:         rootPath,
		Matcher:      matcher,
		Deny:         denyList(cfg),
		Generator:    generator,
		ContextLimit: cfg.ContextLimit,
		Workers:      cfg.Workers,
		RequireNumPy: cfg.RequireNumPy,
		Selector:     selector,
		Logger:       logger,
		Progress:     progress.Update,
	})
	if err != nil {
		return err
	}
	progress.Done(len(res.Entries))

	summary := RunSummary{
		Mode:       "document",
		Generator:  cfg.Generator,
		RootPath:   rootPath,
		ConfigFile: cfgPath,
	}

	reportPath, err := resolveArtifact(cfg.ReportPath)
	if err != nil {
		return err
	}
	if _, err := report.WriteMarkdown(reportPath, res, cfg.Generator); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	summary.ReportFile = reportPath

	if !noSandbox && cfg.SandboxPath != "" {
		sandboxPath, err := resolveArtifact(cfg.SandboxPath)
		if err != nil {
			return err
		}
		if _, err := report.WriteSandbox(sandboxPath, res); err != nil {
			issue, ok := injectionIssue(sandboxPath, err)
			if !ok {
				return err
			}
			logger.Warn("sandbox injection failed", "file", sandboxPath, "error", err)
			res.Issues = append(res.Issues, issue)
		}
		summary.SandboxFile = sandboxPath
	}

	if write {
		rewritten, issues := injectFiles(rootPath, res, logger)
		res.Issues = append(res.Issues, issues...)
		summary.Rewritten = len(rewritten)
		summary.RewrittenFiles = rewritten
	}

	if dbPath != "" {
		if err := exportDatabase(ctx, dbPath, res.Analysis, res.Store); err != nil {
			return err
		}
		summary.Database = dbPath
	}

	summary.Files = len(res.Parse.Files)
	summary.Symbols = len(res.Entries)
	summary.Existing = res.Count(pipeline.StatusExisting)
	summary.Generated = res.Count(pipeline.StatusGenerated)
	summary.Failed = res.Count(pipeline.StatusFailed)
	summary.Skipped = res.Count(pipeline.StatusSkipped)
	summary.Cycle = res.Order.Cycle
	summary.Graph = res.Stats
	summary.Issues = res.Issues
	summary.DurationMS = time.Since(start).Milliseconds()

	if err := PrintRunSummary(summary, asJSON); err != nil {
		return err
	}
	if failOnError && len(res.Issues) > 0 {
		return fmt.Errorf("%d issue(s) recorded", len(res.Issues))
	}
	return nil
}
