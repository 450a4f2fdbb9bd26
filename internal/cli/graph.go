package cli

import (
	"fmt"
	"os"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
	"github.com/morozRed/adaptivedoc/internal/pipeline"
	"github.com/spf13/cobra"
)

// SymbolRecord is one line of the JSONL graph output.
type SymbolRecord struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Position     int      `json:"position"`
	HasDoc       bool     `json:"has_doc"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// EdgeRecord is one dependency -> dependent edge of the JSONL graph output.
type EdgeRecord struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

func RunGraph(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	cfg, _, logger, err := loadSettings(cmd, rootPath)
	if err != nil {
		return err
	}
	format, err := ParseOutputFormat(cmd)
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

	analysis, err := pipeline.Analyze(pipeline.Options{
		Root:    rootPath,
		Matcher: matcher,
		Deny:    denyList(cfg),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	switch format {
	case FormatJSONL:
		data, err := EncodeGraphJSONL(analysis)
		if err != nil {
			return fmt.Errorf("failed to encode graph: %w", err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			return err
		}
	default:
		PrintGraphText(analysis)
	}

	if dbPath != "" {
		return exportDatabase(commandContext(cmd), dbPath, analysis, nil)
	}
	return nil
}

// EncodeGraphJSONL emits symbols in execution order followed by edges.
func EncodeGraphJSONL(analysis *pipeline.Analysis) ([]byte, error) {
	bySymbol := make(map[string]int, len(analysis.Symbols))
	for i, sym := range analysis.Symbols {
		bySymbol[sym.QualifiedName] = i
	}

	records := make([]any, 0, len(analysis.Order.Names)+analysis.Graph.EdgeCount())
	for position, name := range analysis.Order.Names {
		sym := analysis.Symbols[bySymbol[name]]
		records = append(records, SymbolRecord{
			Type:         "symbol",
			Name:         name,
			Kind:         sym.Kind.String(),
			File:         sym.File,
			Line:         sym.Line,
			Position:     position,
			HasDoc:       sym.HasDoc(),
			Dependencies: analysis.Graph.Predecessors(name),
		})
	}
	for _, edge := range analysis.Graph.Edges() {
		records = append(records, EdgeRecord{Type: "edge", From: edge.From, To: edge.To})
	}
	return fileutil.EncodeJSONL(records)
}

func PrintGraphText(analysis *pipeline.Analysis) {
	fmt.Printf("# execution order (%d symbols, %d edges", len(analysis.Order.Names), analysis.Graph.EdgeCount())
	if analysis.Order.Cycle {
		fmt.Print(", cycle detected")
	}
	fmt.Println(")")
	for i, name := range analysis.Order.Names {
		fmt.Printf("%d. %s\n", i+1, name)
	}
	if analysis.Graph.EdgeCount() == 0 {
		return
	}
	fmt.Println()
	fmt.Println("# edges (dependency -> dependent)")
	for _, edge := range analysis.Graph.Edges() {
		fmt.Printf("%s -> %s\n", edge.From, edge.To)
	}
}
