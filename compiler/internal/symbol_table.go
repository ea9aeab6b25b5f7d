package internal

// SymbolKind is the storage classification of a declared name. It decides the segment the name lives in.
type SymbolKind int

const (
	StaticKind SymbolKind = iota
	FieldKind
	ArgumentKind
	LocalKind
)

func (kind SymbolKind) String() string {
	switch kind {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return ""
}

// Segment maps a kind to its fixed storage segment: static -> static, field -> this,
// argument -> argument, local -> local.
func (kind SymbolKind) Segment() Segment {
	switch kind {
	case StaticKind:
		return StaticSegment
	case FieldKind:
		return ThisSegment
	case ArgumentKind:
		return ArgumentSegment
	case LocalKind:
		return LocalSegment
	}
	return ""
}

type Symbol struct {
	Name         string
	DeclaredType string
	Kind         SymbolKind
	Index        int
}

// Scope is an ordered collection of symbols. Index of a symbol is the number of symbols of the same kind
// defined before it, so every kind is addressed as a contiguous segment[0..n).
type Scope struct {
	name    string
	symbols []*Symbol
	byName  map[string]*Symbol
	counts  map[SymbolKind]int
}

func NewScope(name string) *Scope {
	return &Scope{
		name:   name,
		byName: map[string]*Symbol{},
		counts: map[SymbolKind]int{},
	}
}

// Define appends name to the scope. A name can only be defined once per scope.
func (scope *Scope) Define(name, declaredType string, kind SymbolKind) (*Symbol, error) {
	if _, ok := scope.byName[name]; ok {
		return nil, &DuplicateDeclarationError{Name: name, Scope: scope.name}
	}
	symbol := &Symbol{
		Name:         name,
		DeclaredType: declaredType,
		Kind:         kind,
		Index:        scope.counts[kind],
	}
	scope.counts[kind]++
	scope.symbols = append(scope.symbols, symbol)
	scope.byName[name] = symbol
	return symbol, nil
}

func (scope *Scope) CountByKind(kind SymbolKind) int {
	return scope.counts[kind]
}

func (scope *Scope) Lookup(name string) (*Symbol, bool) {
	symbol, ok := scope.byName[name]
	return symbol, ok
}

// Symbols returns the symbols in definition order.
func (scope *Scope) Symbols() []*Symbol {
	return scope.symbols
}

// SymbolTable holds the two scopes alive at any time: the class being compiled and its current subroutine.
type SymbolTable struct {
	class      *Scope
	subroutine *Scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		class:      NewScope("class"),
		subroutine: NewScope("subroutine"),
	}
}

// StartClass drops both scopes.
func (table *SymbolTable) StartClass() {
	table.class = NewScope("class")
	table.subroutine = NewScope("subroutine")
}

// StartSubroutine drops the subroutine scope and keeps the class scope.
func (table *SymbolTable) StartSubroutine() {
	table.subroutine = NewScope("subroutine")
}

func (table *SymbolTable) ClassScope() *Scope {
	return table.class
}

func (table *SymbolTable) SubroutineScope() *Scope {
	return table.subroutine
}

// Define puts static and field names into the class scope and arguments and locals into the subroutine scope.
func (table *SymbolTable) Define(name, declaredType string, kind SymbolKind) (*Symbol, error) {
	switch kind {
	case StaticKind, FieldKind:
		return table.class.Define(name, declaredType, kind)
	default:
		return table.subroutine.Define(name, declaredType, kind)
	}
}

// Lookup resolves name in the subroutine scope first, so locals and arguments shadow class members.
func (table *SymbolTable) Lookup(name string) (*Symbol, bool) {
	if symbol, ok := table.subroutine.Lookup(name); ok {
		return symbol, true
	}
	return table.class.Lookup(name)
}

func (table *SymbolTable) KindOf(name string) (SymbolKind, bool) {
	symbol, ok := table.Lookup(name)
	if !ok {
		return 0, false
	}
	return symbol.Kind, true
}

func (table *SymbolTable) TypeOf(name string) (string, bool) {
	symbol, ok := table.Lookup(name)
	if !ok {
		return "", false
	}
	return symbol.DeclaredType, true
}

func (table *SymbolTable) IndexOf(name string) (int, bool) {
	symbol, ok := table.Lookup(name)
	if !ok {
		return 0, false
	}
	return symbol.Index, true
}
