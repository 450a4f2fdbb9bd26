package languages

import (
	"context"
	"fmt"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonParser implements parsing for Python source files.
// A PythonParser is not safe for concurrent use.
type PythonParser struct {
	parser *sitter.Parser
}

// NewPythonParser creates a new Python parser
func NewPythonParser() *PythonParser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonParser{parser: p}
}

func (p *PythonParser) Language() string {
	return "python"
}

func (p *PythonParser) Extensions() []string {
	return []string{".py", ".pyw"}
}

// Close releases the underlying tree-sitter parser.
func (p *PythonParser) Close() {
	p.parser.Close()
}

// Parse extracts every function, method and class declaration, including
// nested ones. Files with syntax errors are rejected as a whole.
func (p *PythonParser) Parse(filename string, content []byte) (*parser.FileSymbols, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := FirstSyntaxError(root); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	result := &parser.FileSymbols{
		Path:     filename,
		Language: "python",
		Symbols:  make([]parser.Symbol, 0),
	}
	p.walk(root, content, result, -1, "")

	return result, nil
}

// walk visits node with scope set to the index of the innermost enclosing
// function-like symbol in result.Symbols (-1 at module or class level when no
// function encloses it). className is non-empty directly inside a class body.
func (p *PythonParser) walk(node *sitter.Node, content []byte, result *parser.FileSymbols, scope int, className string) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		inner := scope
		if sym := p.extractFunction(node, content, className); sym != nil {
			result.Symbols = append(result.Symbols, *sym)
			inner = len(result.Symbols) - 1
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			p.walk(node.Child(i), content, result, inner, "")
		}
		return

	case "class_definition":
		sym := p.extractClass(node, content)
		if sym == nil {
			break
		}
		result.Symbols = append(result.Symbols, *sym)
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if node.FieldNameForChild(i) == "body" {
				for j := 0; j < int(child.ChildCount()); j++ {
					p.walk(child.Child(j), content, result, scope, sym.Name)
				}
				continue
			}
			p.walk(child, content, result, scope, className)
		}
		return

	case "call":
		if scope >= 0 {
			if callSite := p.extractCallSite(node, content); callSite.Name != "" {
				result.Symbols[scope].Calls = append(result.Symbols[scope].Calls, callSite)
			}
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), content, result, scope, className)
	}
}

func (p *PythonParser) extractFunction(node *sitter.Node, content []byte, className string) *parser.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	kind := parser.SymbolFunction
	if className != "" {
		kind = parser.SymbolMethod
	}

	return &parser.Symbol{
		Name:      nameNode.Content(content),
		Kind:      kind,
		Signature: p.buildFunctionSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Code:      node.Content(content),
		Doc:       p.extractDoc(node, content),
	}
}

func (p *PythonParser) extractClass(node *sitter.Node, content []byte) *parser.Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}

	return &parser.Symbol{
		Name:      nameNode.Content(content),
		Kind:      parser.SymbolClass,
		Signature: p.buildClassSignature(node, content),
		Line:      int(node.StartPoint().Row) + 1,
		EndLine:   int(node.EndPoint().Row) + 1,
		StartByte: int(node.StartByte()),
		EndByte:   int(node.EndByte()),
		Code:      node.Content(content),
		Doc:       p.extractDoc(node, content),
	}
}

// extractDoc returns the cleaned leading docstring of a definition body.
func (p *PythonParser) extractDoc(node *sitter.Node, content []byte) string {
	stmt := FirstBodyStatement(node.ChildByFieldName("body"))
	str, ok := DocstringNode(stmt, content)
	if !ok {
		return ""
	}
	text, _ := DecodeStringLiteral(str.Content(content))
	return CleanDoc(text)
}

func (p *PythonParser) buildFunctionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")

	sig := "def"
	if first := node.Child(0); first != nil && first.Type() == "async" {
		sig = "async def"
	}
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += collapseParams(paramsNode.Content(content))
	}
	if returnNode != nil {
		sig += " -> " + collapseWhitespace(returnNode.Content(content))
	}

	return sig
}

func (p *PythonParser) buildClassSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	superclassNode := node.ChildByFieldName("superclasses")

	sig := "class"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if superclassNode != nil {
		sig += collapseParams(superclassNode.Content(content))
	}

	return sig
}

func (p *PythonParser) extractCallSite(callNode *sitter.Node, content []byte) parser.CallSite {
	fnNode := callNode.ChildByFieldName("function")
	name, qualifier := p.extractCallName(fnNode, content)
	callSite := parser.CallSite{
		Name:      name,
		Qualifier: qualifier,
		Line:      int(callNode.StartPoint().Row) + 1,
	}
	if fnNode != nil {
		callSite.Raw = strings.TrimSpace(fnNode.Content(content))
	}
	return callSite
}

// extractCallName resolves the callee candidate of a call: the identifier for
// direct calls, the attribute name for attribute calls. Anything else (calls
// on subscripts, call results, lambdas) yields no candidate.
func (p *PythonParser) extractCallName(node *sitter.Node, content []byte) (name, qualifier string) {
	if node == nil {
		return "", ""
	}

	switch node.Type() {
	case "identifier":
		return node.Content(content), ""
	case "attribute":
		attr := node.ChildByFieldName("attribute")
		if attr == nil {
			return "", ""
		}
		if object := node.ChildByFieldName("object"); object != nil {
			qualifier = collapseWhitespace(object.Content(content))
		}
		return attr.Content(content), qualifier
	}
	return "", ""
}

// collapseParams joins a multi-line parameter list onto one line.
func collapseParams(s string) string {
	s = collapseWhitespace(s)
	s = strings.ReplaceAll(s, "( ", "(")
	s = strings.ReplaceAll(s, " )", ")")
	s = strings.ReplaceAll(s, ",)", ")")
	return s
}
