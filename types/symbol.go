package types

import "fmt"

// SymbolValue is an interned identifier drawn from [A-Za-z_][A-Za-z0-9_]*,
// used for map keys and lightweight tags where string equality/allocation
// overhead isn't wanted.
type SymbolValue struct {
	name string
}

// NewSymbol interns (conceptually; comparison is by string value) a symbol.
func NewSymbol(name string) SymbolValue {
	return SymbolValue{name: name}
}

func (s SymbolValue) Type() TypeCode {
	return TYPE_SYMBOL
}

func (s SymbolValue) String() string {
	return fmt.Sprintf("'%s", s.name)
}

func (s SymbolValue) Equal(other Value) bool {
	if o, ok := other.(SymbolValue); ok {
		return s.name == o.name
	}
	return false
}

func (s SymbolValue) Truthy() bool {
	return s.name != ""
}

// Name returns the symbol's underlying identifier text.
func (s SymbolValue) Name() string {
	return s.name
}
