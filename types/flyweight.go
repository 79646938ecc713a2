package types

import (
	"fmt"
	"sort"
	"strings"
)

// FlyweightValue is the immutable triple <delegate, slots, contents> described
// in the value model: a delegate object reference, a map of symbol->value
// slots, and an ordered list of contained values. Verb calls on a flyweight
// dispatch to its delegate with the flyweight bound as "this".
type FlyweightValue struct {
	delegate ObjID
	owner    ObjID // programmer that created the flyweight; used for slot-set permission checks
	slots    map[string]Value
	order    []string // insertion order of slots, for deterministic iteration/printing
	contents []Value
}

// NewFlyweight creates a flyweight with no slots and no contents.
func NewFlyweight(delegate ObjID, owner ObjID) FlyweightValue {
	return FlyweightValue{
		delegate: delegate,
		owner:    owner,
		slots:    make(map[string]Value),
	}
}

// NewFlyweightWith creates a flyweight with the given slots and contents already populated.
func NewFlyweightWith(delegate ObjID, owner ObjID, slots map[string]Value, order []string, contents []Value) FlyweightValue {
	cp := make(map[string]Value, len(slots))
	for k, v := range slots {
		cp[k] = v
	}
	ord := append([]string(nil), order...)
	cnt := append([]Value(nil), contents...)
	return FlyweightValue{delegate: delegate, owner: owner, slots: cp, order: ord, contents: cnt}
}

// Type returns TYPE_FLYWEIGHT
func (w FlyweightValue) Type() TypeCode {
	return TYPE_FLYWEIGHT
}

// String returns the canonical literal form, e.g. <#5, [x -> 1], {1, 2}>
func (w FlyweightValue) String() string {
	var b strings.Builder
	b.WriteString("<#")
	fmt.Fprintf(&b, "%d", w.delegate)
	if len(w.order) > 0 {
		b.WriteString(", [")
		for i, name := range w.order {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s -> %s", name, w.slots[name].String())
		}
		b.WriteString("]")
	}
	if len(w.contents) > 0 {
		b.WriteString(", {")
		for i, v := range w.contents {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.String())
		}
		b.WriteString("}")
	}
	b.WriteString(">")
	return b.String()
}

// Equal compares flyweights structurally (delegate, slots, and contents), not by identity.
func (w FlyweightValue) Equal(other Value) bool {
	o, ok := other.(FlyweightValue)
	if !ok {
		return false
	}
	if w.delegate != o.delegate || len(w.contents) != len(o.contents) {
		return false
	}
	for i := range w.contents {
		if !w.contents[i].Equal(o.contents[i]) {
			return false
		}
	}
	return equalMaps(w.slots, o.slots)
}

// Truthy: flyweights are never truthy, matching object semantics.
func (w FlyweightValue) Truthy() bool {
	return false
}

// Class returns the delegate object (kept for call sites that still speak of "class").
func (w FlyweightValue) Class() ObjID {
	return w.delegate
}

// Delegate returns the delegate object reference.
func (w FlyweightValue) Delegate() ObjID {
	return w.delegate
}

// Owner returns the programmer that created the flyweight.
func (w FlyweightValue) Owner() ObjID {
	return w.owner
}

// Contents returns the flyweight's contents list.
func (w FlyweightValue) Contents() []Value {
	return w.contents
}

// GetProperty returns a slot value by name ("property" is kept as the public
// name because that's how MOO code reads it via dot-access).
func (w FlyweightValue) GetProperty(name string) (Value, bool) {
	val, ok := w.slots[name]
	return val, ok
}

// SetProperty returns a new flyweight with the named slot set (copy-on-write;
// flyweights are immutable values, so mutation always produces a new value).
func (w FlyweightValue) SetProperty(name string, value Value) FlyweightValue {
	newSlots := make(map[string]Value, len(w.slots)+1)
	for k, v := range w.slots {
		newSlots[k] = v
	}
	newOrder := w.order
	if _, exists := w.slots[name]; !exists {
		newOrder = append(append([]string(nil), w.order...), name)
	}
	newSlots[name] = value
	return FlyweightValue{
		delegate: w.delegate,
		owner:    w.owner,
		slots:    newSlots,
		order:    newOrder,
		contents: w.contents,
	}
}

// WithContents returns a new flyweight with the contents list replaced.
func (w FlyweightValue) WithContents(contents []Value) FlyweightValue {
	return FlyweightValue{
		delegate: w.delegate,
		owner:    w.owner,
		slots:    w.slots,
		order:    w.order,
		contents: append([]Value(nil), contents...),
	}
}

// PropertyNames returns slot names in a stable (insertion, falling back to
// sorted) order — used by the dump writer to serialize slots deterministically.
func (w FlyweightValue) PropertyNames() []string {
	if len(w.order) == len(w.slots) {
		return append([]string(nil), w.order...)
	}
	names := make([]string, 0, len(w.slots))
	for k := range w.slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// equalMaps checks if two value maps are equal.
func equalMaps(a, b map[string]Value) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valA := range a {
		valB, ok := b[key]
		if !ok || !valA.Equal(valB) {
			return false
		}
	}
	return true
}
