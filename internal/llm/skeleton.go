package llm

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

var dependencyNamePattern = regexp.MustCompile("^Function `([^`]+)`")

// Skeleton writes NumPy-style docstring templates from the function header
// alone. It needs no model and is deterministic, which makes it useful for
// offline runs and tests.
type Skeleton struct{}

// NewSkeleton creates a skeleton generator
func NewSkeleton() *Skeleton {
	return &Skeleton{}
}

type param struct {
	name string
	typ  string
}

// Generate renders the summary, Parameters, Returns and See Also sections.
func (s *Skeleton) Generate(ctx context.Context, code string, deps []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, params, returns, ok := parseHeader(code)
	if !ok {
		return "", ErrEmptyOutput
	}

	var b strings.Builder
	b.WriteString(summarize(name))
	b.WriteString("\n")

	if len(params) > 0 {
		b.WriteString("\nParameters\n----------\n")
		for _, p := range params {
			typ := p.typ
			if typ == "" {
				typ = "object"
			}
			b.WriteString(p.name + " : " + typ + "\n")
			b.WriteString("    Description of `" + strings.TrimLeft(p.name, "*") + "`.\n")
		}
	}

	if returns == "" {
		returns = "object"
	}
	b.WriteString("\nReturns\n-------\n")
	b.WriteString(returns + "\n")
	b.WriteString("    Result of `" + name + "`.\n")

	seeAlso := make([]string, 0, len(deps))
	for _, dep := range deps {
		if m := dependencyNamePattern.FindStringSubmatch(dep); m != nil {
			seeAlso = append(seeAlso, m[1])
		}
	}
	if len(seeAlso) > 0 {
		b.WriteString("\nSee Also\n--------\n")
		for _, dep := range seeAlso {
			b.WriteString(dep + "\n")
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// parseHeader extracts the name, parameters and return annotation of the
// first function definition in code.
func parseHeader(code string) (name string, params []param, returns string, ok bool) {
	content := []byte(code)
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return "", nil, "", false
	}
	defer tree.Close()

	fn := findFunction(tree.RootNode())
	if fn == nil {
		return "", nil, "", false
	}
	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return "", nil, "", false
	}
	name = nameNode.Content(content)
	if ret := fn.ChildByFieldName("return_type"); ret != nil {
		returns = strings.Join(strings.Fields(ret.Content(content)), " ")
	}

	paramsNode := fn.ChildByFieldName("parameters")
	if paramsNode == nil {
		return name, nil, returns, true
	}
	for i := 0; i < int(paramsNode.NamedChildCount()); i++ {
		if prm, keep := paramFromNode(paramsNode.NamedChild(i), content); keep {
			params = append(params, prm)
		}
	}
	if len(params) > 0 && (params[0].name == "self" || params[0].name == "cls") {
		params = params[1:]
	}
	return name, params, returns, true
}

func findFunction(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "function_definition" {
		return node
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if fn := findFunction(node.NamedChild(i)); fn != nil {
			return fn
		}
	}
	return nil
}

func paramFromNode(node *sitter.Node, content []byte) (param, bool) {
	switch node.Type() {
	case "identifier":
		return param{name: node.Content(content)}, true
	case "typed_parameter":
		typ := ""
		if t := node.ChildByFieldName("type"); t != nil {
			typ = t.Content(content)
		}
		inner := node.NamedChild(0)
		if inner == nil {
			return param{}, false
		}
		prm, ok := paramFromNode(inner, content)
		prm.typ = typ
		return prm, ok
	case "default_parameter", "typed_default_parameter":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return param{}, false
		}
		typ := ""
		if t := node.ChildByFieldName("type"); t != nil {
			typ = t.Content(content)
		}
		if typ == "" {
			typ = "object"
		}
		return param{name: nameNode.Content(content), typ: typ + ", optional"}, true
	case "list_splat_pattern":
		if inner := node.NamedChild(0); inner != nil {
			return param{name: "*" + inner.Content(content)}, true
		}
	case "dictionary_splat_pattern":
		if inner := node.NamedChild(0); inner != nil {
			return param{name: "**" + inner.Content(content)}, true
		}
	}
	// keyword_separator, positional_separator, comments
	return param{}, false
}

// summarize turns a snake_case name into a one-line summary.
func summarize(name string) string {
	words := strings.Fields(strings.ReplaceAll(strings.Trim(name, "_"), "_", " "))
	if len(words) == 0 {
		return "Undocumented callable."
	}
	first := words[0]
	words[0] = strings.ToUpper(first[:1]) + first[1:]
	return strings.Join(words, " ") + "."
}
