package cli

import (
	"fmt"

	"github.com/morozRed/adaptivedoc/internal/logging"
	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "adaptivedoc",
		Short: "Generate dependency-aware docstrings for Python code",
		Long: `adaptivedoc discovers the functions and classes of a Python tree, orders
them so that every callee is documented before its callers, and asks a
language model for a NumPy-style docstring per symbol, feeding it the
docstrings of the symbol's direct dependencies.

Results are written to a Markdown report and a sandbox module; with --write
the docstrings are injected into the source files in place.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <root>/.adaptivedoc.yaml)")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "Log level: debug|info|warn|error")

	documentCmd := &cobra.Command{
		Use:   "document <root>",
		Short: "Generate docstrings for every undocumented symbol under root",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDocument,
	}
	addGraphFlags(documentCmd)
	documentCmd.Flags().String("generator", "openai", "Generator: openai|skeleton")
	documentCmd.Flags().String("endpoint", "", "OpenAI-compatible API base URL")
	documentCmd.Flags().String("model", "", "Model name")
	documentCmd.Flags().Float64("temperature", 0.2, "Sampling temperature")
	documentCmd.Flags().Int("max-tokens", 512, "Maximum tokens per docstring")
	documentCmd.Flags().Duration("timeout", 0, "Per-request timeout (e.g. 90s)")
	documentCmd.Flags().Int("retries", 3, "Retries for transient generator failures")
	documentCmd.Flags().Int("context-limit", 2, "Dependency docstrings passed to each generation")
	documentCmd.Flags().Int("workers", 1, "Concurrent generations")
	documentCmd.Flags().Bool("require-numpy", false, "Reject docstrings without a Parameters or Returns section")
	documentCmd.Flags().String("report", "", "Markdown report path")
	documentCmd.Flags().String("sandbox", "", "Sandbox module path")
	documentCmd.Flags().Bool("no-sandbox", false, "Skip the sandbox module")
	documentCmd.Flags().String("select", "", "Only generate for symbols matching a file, name or file:line selector")
	documentCmd.Flags().Bool("write", false, "Inject docstrings into the source files in place")
	documentCmd.Flags().Bool("json", false, "Print machine-readable run summary")
	documentCmd.Flags().Bool("fail-on-error", false, "Exit non-zero when any issue was recorded")

	graphCmd := &cobra.Command{
		Use:   "graph <root>",
		Short: "Print the dependency graph and execution order without generating",
		Args:  cobra.ExactArgs(1),
		RunE:  RunGraph,
	}
	addGraphFlags(graphCmd)
	graphCmd.Flags().String("format", string(FormatText), "Output format: text|jsonl")

	injectCmd := &cobra.Command{
		Use:   "inject <file>",
		Short: "Inject docstrings from a YAML name -> text file into one Python file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunInject,
	}
	injectCmd.Flags().String("docs", "", "YAML file mapping bare function names to docstrings")
	injectCmd.Flags().Bool("write", false, "Rewrite the file in place instead of printing it")
	_ = injectCmd.MarkFlagRequired("docs")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("adaptivedoc %s\n", version)
		},
	}

	rootCmd.AddCommand(
		documentCmd,
		graphCmd,
		injectCmd,
		versionCmd,
	)

	return rootCmd
}

// addGraphFlags registers the flags shared by commands that build the graph.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("deny", nil, "Extra call names to ignore when building the graph")
	cmd.Flags().String("db", "", "Export symbols, edges and docs to this SQLite database")
}
