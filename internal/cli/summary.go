package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
	"github.com/morozRed/adaptivedoc/internal/graph"
	"github.com/morozRed/adaptivedoc/internal/parser"
)

type RunSummary struct {
	Mode           string         `json:"mode"`
	Generator      string         `json:"generator,omitempty"`
	RootPath       string         `json:"root_path"`
	ConfigFile     string         `json:"config_file,omitempty"`
	ReportFile     string         `json:"report_file,omitempty"`
	SandboxFile    string         `json:"sandbox_file,omitempty"`
	Database       string         `json:"database,omitempty"`
	Files          int            `json:"files"`
	Symbols        int            `json:"symbols"`
	Existing       int            `json:"existing"`
	Generated      int            `json:"generated"`
	Failed         int            `json:"failed"`
	Skipped        int            `json:"skipped"`
	Rewritten      int            `json:"rewritten"`
	Cycle          bool           `json:"cycle"`
	Graph          graph.Stats    `json:"graph"`
	DurationMS     int64          `json:"duration_ms"`
	RewrittenFiles []string       `json:"rewritten_files,omitempty"`
	Issues         []parser.Issue `json:"issues,omitempty"`
}

func PrintRunSummary(summary RunSummary, asJSON bool) error {
	if asJSON {
		return fileutil.PrintJSON(summary)
	}

	fmt.Printf("%s complete in %dms\n", summary.Mode, summary.DurationMS)
	if summary.ReportFile != "" {
		fmt.Printf("report: %s\n", summary.ReportFile)
	}
	if summary.SandboxFile != "" {
		fmt.Printf("sandbox: %s\n", summary.SandboxFile)
	}
	if summary.Database != "" {
		fmt.Printf("database: %s\n", summary.Database)
	}
	fmt.Printf("files=%d symbols=%d edges=%d cycle=%t\n", summary.Files, summary.Symbols, summary.Graph.Edges, summary.Cycle)
	fmt.Printf("docs: existing=%d generated=%d failed=%d skipped=%d rewritten=%d\n",
		summary.Existing, summary.Generated, summary.Failed, summary.Skipped, summary.Rewritten)
	if len(summary.RewrittenFiles) > 0 {
		fmt.Printf("rewritten files (%d): %s\n", len(summary.RewrittenFiles), SummarizePaths(summary.RewrittenFiles, 8))
	}
	if len(summary.Issues) > 0 {
		fmt.Printf("issues (%d): %s\n", len(summary.Issues), summarizeIssues(summary.Issues))
	}
	return nil
}

func summarizeIssues(issues []parser.Issue) string {
	counts := make(map[parser.IssueKind]int)
	order := make([]string, 0)
	for _, issue := range issues {
		if counts[issue.Kind] == 0 {
			order = append(order, string(issue.Kind))
		}
		counts[issue.Kind]++
	}
	parts := make([]string, 0, len(order))
	for _, kind := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[parser.IssueKind(kind)]))
	}
	return strings.Join(parts, " ")
}

func SummarizePaths(paths []string, max int) string {
	if len(paths) <= max {
		return strings.Join(paths, ", ")
	}
	return fmt.Sprintf("%s ... (+%d more)", strings.Join(paths[:max], ", "), len(paths)-max)
}
