// Package llm produces docstring bodies for Python symbols.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultModel is the chat model requested when none is configured.
const DefaultModel = "Qwen/Qwen2.5-Coder-7B-Instruct"

// DefaultEndpoint is an OpenAI-compatible server on the local machine.
const DefaultEndpoint = "http://localhost:8000/v1"

// ErrEmptyOutput is returned when a generator produced no usable text.
var ErrEmptyOutput = errors.New("generator returned empty documentation")

// Generator turns a symbol's source code plus rendered dependency
// documentation into a docstring body. Implementations must be safe for
// concurrent use.
type Generator interface {
	Generate(ctx context.Context, code string, deps []string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, code string, deps []string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, code string, deps []string) (string, error) {
	return f(ctx, code, deps)
}

// Kind names a generator backend.
type Kind string

const (
	KindOpenAI   Kind = "openai"
	KindSkeleton Kind = "skeleton"
)

// ParseKind validates a generator name.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case "", KindOpenAI:
		return KindOpenAI, nil
	case KindSkeleton:
		return KindSkeleton, nil
	default:
		return "", fmt.Errorf("unsupported generator %q (supported: openai, skeleton)", raw)
	}
}

// New builds the generator selected by kind.
func New(kind Kind, cfg ClientConfig) (Generator, error) {
	switch kind {
	case KindOpenAI, "":
		return NewClient(cfg)
	case KindSkeleton:
		return NewSkeleton(), nil
	default:
		return nil, fmt.Errorf("unsupported generator %q", kind)
	}
}
