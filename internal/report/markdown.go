// Package report renders the artifacts of a documentation run: the Markdown
// report and the injected sandbox module.
package report

import (
	"fmt"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/graph"
	"github.com/morozRed/adaptivedoc/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// Summary is the machine-readable footer of the Markdown report.
type Summary struct {
	Generator string        `yaml:"generator" json:"generator"`
	Files     int           `yaml:"files" json:"files"`
	Symbols   int           `yaml:"symbols" json:"symbols"`
	Existing  int           `yaml:"existing" json:"existing"`
	Generated int           `yaml:"generated" json:"generated"`
	Failed    int           `yaml:"failed" json:"failed"`
	Skipped   int           `yaml:"skipped" json:"skipped"`
	Cycle     bool          `yaml:"cycle" json:"cycle"`
	Graph     graph.Stats   `yaml:"graph" json:"graph"`
	Issues    []IssueRecord `yaml:"issues,omitempty" json:"issues,omitempty"`
}

// IssueRecord is one issue as listed in the report.
type IssueRecord struct {
	Kind     string `yaml:"kind" json:"kind"`
	File     string `yaml:"file,omitempty" json:"file,omitempty"`
	Symbol   string `yaml:"symbol,omitempty" json:"symbol,omitempty"`
	Severity string `yaml:"severity" json:"severity"`
	Message  string `yaml:"message" json:"message"`
}

// NewSummary condenses res.
func NewSummary(res *pipeline.Result, generator string) Summary {
	summary := Summary{
		Generator: generator,
		Files:     len(res.Parse.Files),
		Symbols:   len(res.Entries),
		Existing:  res.Count(pipeline.StatusExisting),
		Generated: res.Count(pipeline.StatusGenerated),
		Failed:    res.Count(pipeline.StatusFailed),
		Skipped:   res.Count(pipeline.StatusSkipped),
		Cycle:     res.Order.Cycle,
		Graph:     res.Stats,
	}
	for _, issue := range res.Issues {
		summary.Issues = append(summary.Issues, IssueRecord{
			Kind:     string(issue.Kind),
			File:     issue.File,
			Symbol:   issue.Symbol,
			Severity: issue.Severity,
			Message:  issue.Message,
		})
	}
	return summary
}

// Markdown renders every generated docstring in execution order followed by
// a YAML run summary.
func Markdown(res *pipeline.Result, generator string) (string, error) {
	var b strings.Builder
	b.WriteString("# Generated Documentation\n")

	for _, entry := range res.Entries {
		if entry.Status != pipeline.StatusGenerated {
			continue
		}
		b.WriteString("\n## " + entry.Symbol.QualifiedName + "\n\n")
		b.WriteString("```python\n")
		b.WriteString(entry.Symbol.Signature + ":\n")
		b.WriteString("\"\"\"\n")
		b.WriteString(entry.Doc + "\n")
		b.WriteString("\"\"\"\n")
		b.WriteString("```\n")
	}

	summary, err := yaml.Marshal(NewSummary(res, generator))
	if err != nil {
		return "", fmt.Errorf("failed to encode run summary: %w", err)
	}
	b.WriteString("\n## Run summary\n\n```yaml\n")
	b.Write(summary)
	b.WriteString("```\n")
	return b.String(), nil
}

// WriteMarkdown renders the report into the generated block at path.
func WriteMarkdown(path string, res *pipeline.Result, generator string) (bool, error) {
	body, err := Markdown(res, generator)
	if err != nil {
		return false, err
	}
	return WriteGenerated(path, body)
}
