package graph

import (
	"strings"

	"github.com/morozRed/adaptivedoc/internal/fileutil"
)

// pythonBuiltins lists names from Python's builtins module. Calls to these
// never produce edges even when a user symbol shares the name.
var pythonBuiltins = []string{
	"abs", "aiter", "all", "anext", "any", "ascii", "bin", "bool", "breakpoint",
	"bytearray", "bytes", "callable", "chr", "classmethod", "compile", "complex",
	"copyright", "credits", "delattr", "dict", "dir", "divmod", "enumerate",
	"eval", "exec", "exit", "filter", "float", "format", "frozenset", "getattr",
	"globals", "hasattr", "hash", "help", "hex", "id", "input", "int",
	"isinstance", "issubclass", "iter", "len", "license", "list", "locals",
	"map", "max", "memoryview", "min", "next", "object", "oct", "open", "ord",
	"pow", "print", "property", "quit", "range", "repr", "reversed", "round",
	"set", "setattr", "slice", "sorted", "staticmethod", "str", "sum", "super",
	"tuple", "type", "vars", "zip", "__import__", "__build_class__",
	"ArithmeticError", "AssertionError", "AttributeError", "BaseException",
	"BaseExceptionGroup", "BlockingIOError", "BrokenPipeError", "BufferError",
	"ChildProcessError", "ConnectionAbortedError", "ConnectionError",
	"ConnectionRefusedError", "ConnectionResetError", "EOFError",
	"EnvironmentError", "Exception", "ExceptionGroup", "FileExistsError",
	"FileNotFoundError", "FloatingPointError", "GeneratorExit", "IOError",
	"ImportError", "IndentationError", "IndexError", "InterruptedError",
	"IsADirectoryError", "KeyError", "KeyboardInterrupt", "LookupError",
	"MemoryError", "ModuleNotFoundError", "NameError", "NotADirectoryError",
	"NotImplementedError", "OSError", "OverflowError", "PermissionError",
	"ProcessLookupError", "RecursionError", "ReferenceError", "RuntimeError",
	"StopAsyncIteration", "StopIteration", "SyntaxError", "SystemError",
	"SystemExit", "TabError", "TimeoutError", "TypeError", "UnboundLocalError",
	"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeError",
	"UnicodeTranslateError", "ValueError", "ZeroDivisionError",
}

// DenyList holds callee names that never resolve to graph edges.
type DenyList struct {
	names map[string]struct{}
}

// NewDenyList builds a deny-list from names exactly as given.
func NewDenyList(names ...string) *DenyList {
	d := &DenyList{names: make(map[string]struct{}, len(names))}
	d.Add(names...)
	return d
}

// DefaultDenyList returns the Python builtins deny-list.
func DefaultDenyList() *DenyList {
	return NewDenyList(pythonBuiltins...)
}

// DefaultDenyListWith returns the builtins plus extra names.
func DefaultDenyListWith(extra ...string) *DenyList {
	d := DefaultDenyList()
	d.Add(extra...)
	return d
}

// Add inserts names, ignoring blanks.
func (d *DenyList) Add(names ...string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d.names[name] = struct{}{}
	}
}

// Contains reports whether name is denied.
func (d *DenyList) Contains(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.names[name]
	return ok
}

// Names returns the denied names, sorted.
func (d *DenyList) Names() []string {
	return fileutil.SortedKeys(d.names)
}

// Len returns the number of denied names.
func (d *DenyList) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
