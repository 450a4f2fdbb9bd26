package languages

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// FirstSyntaxError returns a descriptive error for the first ERROR or MISSING
// node below root, or nil when the tree is clean.
func FirstSyntaxError(root *sitter.Node) error {
	if root == nil || !root.HasError() {
		return nil
	}
	if bad := findErrorNode(root); bad != nil {
		point := bad.StartPoint()
		if bad.IsMissing() {
			return fmt.Errorf("syntax error at line %d, column %d: missing %s", point.Row+1, point.Column+1, bad.Type())
		}
		return fmt.Errorf("syntax error at line %d, column %d", point.Row+1, point.Column+1)
	}
	return fmt.Errorf("syntax error")
}

func findErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if bad := findErrorNode(node.Child(i)); bad != nil {
			return bad
		}
	}
	return nil
}

// FirstBodyStatement returns the first non-comment statement of a block.
func FirstBodyStatement(block *sitter.Node) *sitter.Node {
	if block == nil {
		return nil
	}
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		return child
	}
	return nil
}

// DocstringNode returns the string node of stmt when stmt is a bare string
// literal expression usable as documentation (no f/b prefix, no implicit
// concatenation).
func DocstringNode(stmt *sitter.Node, content []byte) (*sitter.Node, bool) {
	if stmt == nil || stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil, false
	}
	expr := stmt.NamedChild(0)
	if expr == nil || expr.Type() != "string" {
		return nil, false
	}
	if _, ok := DecodeStringLiteral(expr.Content(content)); !ok {
		return nil, false
	}
	return expr, true
}

// LineIndent returns the leading whitespace of the line containing offset.
func LineIndent(content []byte, offset int) string {
	start := LineStart(content, offset)
	end := start
	for end < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	return string(content[start:end])
}

// LineStart returns the offset of the first byte of the line containing offset.
func LineStart(content []byte, offset int) int {
	if offset > len(content) {
		offset = len(content)
	}
	for offset > 0 && content[offset-1] != '\n' {
		offset--
	}
	return offset
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
