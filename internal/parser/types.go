package parser

// SymbolKind represents the type of code symbol
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolClass
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolMethod:
		return "method"
	case SymbolClass:
		return "class"
	default:
		return "unknown"
	}
}

// FunctionLike reports whether the symbol has a callable body (functions and methods).
func (k SymbolKind) FunctionLike() bool {
	return k == SymbolFunction || k == SymbolMethod
}

// CallSite captures a function/method invocation discovered inside a symbol body.
type CallSite struct {
	Name      string `json:"name"`
	Qualifier string `json:"qualifier,omitempty"`
	Line      int    `json:"line,omitempty"`
	Raw       string `json:"raw,omitempty"`
}

// Symbol represents a documentable declaration (function, method or class).
// Symbols are immutable once the registry has filled in their location fields.
type Symbol struct {
	QualifiedName string     `json:"qualified_name"`
	Name          string     `json:"name"`
	Kind          SymbolKind `json:"kind"`
	Module        string     `json:"module"`
	Signature     string     `json:"signature"`
	File          string     `json:"file"` // root-relative, slash separated
	Line          int        `json:"line"`
	EndLine       int        `json:"end_line"`
	StartByte     int        `json:"start_byte"`
	EndByte       int        `json:"end_byte"`
	Code          string     `json:"-"`
	Doc           string     `json:"doc,omitempty"` // existing docstring, cleaned
	Calls         []CallSite `json:"calls,omitempty"`
}

// HasDoc reports whether the symbol already carried documentation when discovered.
func (s Symbol) HasDoc() bool {
	return s.Doc != ""
}

// FileSymbols holds all symbols extracted from a single file
type FileSymbols struct {
	Path     string
	Module   string
	Language string
	Symbols  []Symbol
	Hash     string // file content hash
}

// IssueKind classifies recoverable failures. None of them abort a run.
type IssueKind string

const (
	IssueParseFailure      IssueKind = "ParseFailure"
	IssueGraphCycle        IssueKind = "GraphCycleDetected"
	IssueGenerationFailure IssueKind = "GenerationFailure"
	IssueInjectionFailure  IssueKind = "InjectionFailure"
	IssueNameCollision     IssueKind = "NameCollision"
)

// Issue captures a non-fatal warning/error encountered during a run.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	File     string    `json:"file,omitempty"`
	Symbol   string    `json:"symbol,omitempty"`
	Language string    `json:"language,omitempty"`
	Severity string    `json:"severity"` // warning | error
	Message  string    `json:"message"`
}

// ParseResult holds the complete discovery result for a source tree
type ParseResult struct {
	Files    []FileSymbols
	RootPath string
	Index    *ShortNameIndex
	Issues   []Issue
}

// Symbols returns every discovered symbol in discovery order: files sorted by
// path, symbols in source order within a file.
func (r *ParseResult) Symbols() []Symbol {
	total := 0
	for _, file := range r.Files {
		total += len(file.Symbols)
	}
	out := make([]Symbol, 0, total)
	for _, file := range r.Files {
		out = append(out, file.Symbols...)
	}
	return out
}
