// Package inject rewrites Python source so that selected functions carry a
// given docstring. Only the docstring slot of each target changes; every
// other byte of the input is reproduced as is.
package inject

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/morozRed/adaptivedoc/internal/languages"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// ErrInjection marks a file-scoped injection failure. The accompanying
// source is always the unmodified input.
var ErrInjection = errors.New("injection failed")

// Result describes one injection pass.
type Result struct {
	Source   []byte
	Inserted int
	Replaced int
}

// Changed reports whether any docstring slot was written.
func (r Result) Changed() bool {
	return r.Inserted+r.Replaced > 0
}

type edit struct {
	start int
	end   int
	text  string
}

// Source is Apply returning only the rewritten bytes.
func Source(src []byte, docs map[string]string) ([]byte, error) {
	res, err := Apply(src, docs)
	return res.Source, err
}

// Apply writes docs[name] into the docstring slot of every function or method
// whose bare name is a key of docs. An existing leading string statement is
// replaced in place; otherwise a new one is inserted as the first body
// statement. Same-named declarations all receive the same text.
//
// On any parse failure Apply returns src unchanged together with an error
// wrapping ErrInjection. Applying the same docs twice yields the same bytes
// as applying them once.
func Apply(src []byte, docs map[string]string) (Result, error) {
	res := Result{Source: src}
	if len(docs) == 0 {
		return res, nil
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrInjection, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if err := languages.FirstSyntaxError(root); err != nil {
		return res, fmt.Errorf("%w: %v", ErrInjection, err)
	}

	edits := make([]edit, 0)
	inserted, replaced := 0, 0
	walk(root, func(fn *sitter.Node) {
		nameNode := fn.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		text, ok := docs[nameNode.Content(src)]
		if !ok {
			return
		}
		e, isReplace, ok := planEdit(fn, src, text)
		if !ok {
			return
		}
		edits = append(edits, e)
		if isReplace {
			replaced++
		} else {
			inserted++
		}
	})
	if len(edits) == 0 {
		return res, nil
	}

	out := applyEdits(src, edits)

	check, err := p.ParseCtx(context.Background(), nil, out)
	if err != nil {
		return res, fmt.Errorf("%w: reparse: %v", ErrInjection, err)
	}
	defer check.Close()
	if err := languages.FirstSyntaxError(check.RootNode()); err != nil {
		return res, fmt.Errorf("%w: rewritten source does not parse: %v", ErrInjection, err)
	}

	return Result{Source: out, Inserted: inserted, Replaced: replaced}, nil
}

// walk calls visit for every function_definition, outermost first.
func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	if node.Type() == "function_definition" {
		visit(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

// planEdit computes the edit for one function. isReplace is true when an
// existing docstring is rewritten.
func planEdit(fn *sitter.Node, src []byte, text string) (e edit, isReplace bool, ok bool) {
	body := fn.ChildByFieldName("body")
	first := languages.FirstBodyStatement(body)
	if first == nil {
		return edit{}, false, false
	}
	defIndent := languages.LineIndent(src, int(fn.StartByte()))

	if str, isDoc := languages.DocstringNode(first, src); isDoc {
		start := int(str.StartByte())
		nl := newlineAt(src, start)
		return edit{start: start, end: int(str.EndByte()), text: Literal(text, nl)}, true, true
	}

	colon := headerColon(fn, first)
	if colon == nil {
		return edit{}, false, false
	}
	colonEnd := int(colon.EndByte())
	nl := newlineAt(src, colonEnd)

	if first.StartPoint().Row == colon.EndPoint().Row {
		// one-line suite: "def f(): return 1"
		indent := defIndent + indentUnit(defIndent)
		return edit{
			start: colonEnd,
			end:   int(first.StartByte()),
			text:  nl + indent + Literal(text, nl) + nl + indent,
		}, false, true
	}

	lineEnd := bytes.IndexByte(src[colonEnd:], '\n')
	if lineEnd < 0 {
		return edit{}, false, false
	}
	pos := colonEnd + lineEnd + 1
	indent := languages.LineIndent(src, int(first.StartByte()))
	return edit{start: pos, end: pos, text: indent + Literal(text, nl) + nl}, false, true
}

// headerColon returns the ":" token that ends the def header.
func headerColon(fn, first *sitter.Node) *sitter.Node {
	var colon *sitter.Node
	for i := 0; i < int(fn.ChildCount()); i++ {
		child := fn.Child(i)
		if child.Type() == ":" && child.EndByte() <= first.StartByte() {
			colon = child
		}
	}
	return colon
}

// Literal renders text as a triple-quoted string literal. The text starts on
// the line after the opening quotes and the closing quotes sit on their own
// line at column zero, so text is reproduced verbatim inside the source.
func Literal(text, nl string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, `"""`, `\"\"\"`)
	if nl != "\n" {
		text = strings.ReplaceAll(text, "\n", nl)
	}
	return `"""` + nl + text + nl + `"""`
}

func applyEdits(src []byte, edits []edit) []byte {
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := append([]byte(nil), src...)
	for _, e := range edits {
		var b bytes.Buffer
		b.Grow(len(out) - (e.end - e.start) + len(e.text))
		b.Write(out[:e.start])
		b.WriteString(e.text)
		b.Write(out[e.end:])
		out = b.Bytes()
	}
	return out
}

// newlineAt returns the line terminator used by the line containing offset.
func newlineAt(src []byte, offset int) string {
	idx := bytes.IndexByte(src[offset:], '\n')
	if idx > 0 && src[offset+idx-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

func indentUnit(defIndent string) string {
	if strings.HasPrefix(defIndent, "\t") {
		return "\t"
	}
	return "    "
}
