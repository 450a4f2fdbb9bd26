package parser

// Collision records a bare name that was claimed by more than one qualified name.
type Collision struct {
	Name     string `json:"name"`
	Replaced string `json:"replaced"`
	Winner   string `json:"winner"`
}

// ShortNameIndex maps a bare declared name to one qualified name.
// On collision the most recently added qualified name wins; every overwrite
// is kept in Collisions so callers can report it.
type ShortNameIndex struct {
	names      []string
	byName     map[string]string
	collisions []Collision
}

// NewShortNameIndex creates an empty index
func NewShortNameIndex() *ShortNameIndex {
	return &ShortNameIndex{byName: make(map[string]string)}
}

// Add maps name to qualified, replacing any previous mapping.
func (x *ShortNameIndex) Add(name, qualified string) {
	previous, exists := x.byName[name]
	if !exists {
		x.names = append(x.names, name)
	} else if previous != qualified {
		x.collisions = append(x.collisions, Collision{Name: name, Replaced: previous, Winner: qualified})
	}
	x.byName[name] = qualified
}

// Lookup returns the qualified name currently indexed for a bare name.
func (x *ShortNameIndex) Lookup(name string) (string, bool) {
	if x == nil {
		return "", false
	}
	qualified, ok := x.byName[name]
	return qualified, ok
}

// Names returns indexed bare names in first-discovery order.
func (x *ShortNameIndex) Names() []string {
	return append([]string(nil), x.names...)
}

// Qualified returns the distinct indexed qualified names, ordered by the
// first discovery of their bare name.
func (x *ShortNameIndex) Qualified() []string {
	if x == nil {
		return nil
	}
	seen := make(map[string]bool, len(x.names))
	out := make([]string, 0, len(x.names))
	for _, name := range x.names {
		qualified := x.byName[name]
		if seen[qualified] {
			continue
		}
		seen[qualified] = true
		out = append(out, qualified)
	}
	return out
}

// Contains reports whether qualified is a value of the index.
func (x *ShortNameIndex) Contains(qualified string) bool {
	if x == nil {
		return false
	}
	name := ShortName(qualified)
	return x.byName[name] == qualified
}

// Collisions returns every overwrite in the order it happened.
func (x *ShortNameIndex) Collisions() []Collision {
	return append([]Collision(nil), x.collisions...)
}

// Len returns the number of indexed bare names.
func (x *ShortNameIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byName)
}

// BuildShortNameIndex indexes every function-like symbol by its bare name,
// visiting symbols in discovery order.
func BuildShortNameIndex(symbols []Symbol) *ShortNameIndex {
	index := NewShortNameIndex()
	for _, sym := range symbols {
		if !sym.Kind.FunctionLike() {
			continue
		}
		index.Add(sym.Name, sym.QualifiedName)
	}
	return index
}
