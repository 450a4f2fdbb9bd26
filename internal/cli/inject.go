package cli

import (
	"fmt"
	"os"

	"github.com/morozRed/adaptivedoc/internal/inject"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func RunInject(cmd *cobra.Command, args []string) error {
	path := args[0]
	docsPath, err := OptionalStringFlag(cmd, "docs")
	if err != nil {
		return err
	}
	write, err := OptionalBoolFlag(cmd, "write")
	if err != nil {
		return err
	}

	docs, err := LoadDocsFile(docsPath)
	if err != nil {
		return err
	}

	if write {
		res, written, err := inject.File(path, docs)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "inject: %s inserted=%d replaced=%d written=%t\n", path, res.Inserted, res.Replaced, written)
		return nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	out, err := inject.Source(src, docs)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// LoadDocsFile reads a YAML mapping of bare function names to docstrings.
func LoadDocsFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, fmt.Errorf("--docs is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	docs := make(map[string]string)
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return docs, nil
}
