// Package types implements the interned type representation and the
// TypeSystem arena described in spec §3 and §4.1: primitives, type
// variables, function/tuple/record/list types, algebraic data-type
// instances, and the "forall" scheme used by value bindings.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the sum type every representable type belongs to. There is no
// separate Equal method: Prim values compare with == and a TVar by
// identity, while Tuple, Record, and Data hold slices or maps and are not
// comparable with == (Intern keys composite types by Moniker instead).
type Type interface {
	// Moniker is the canonical textual form, used in error messages and as
	// the key composite types are interned under.
	Moniker() string
	// FreeVars returns the free type variables of this type, in the order
	// they're first encountered (stable for scheme printing).
	FreeVars() []*TVar
	// Apply substitutes the bindings in s into this type.
	Apply(s Subst) Type
}

// Prim is a primitive type: int, real, string, char, bool, unit.
type Prim struct{ Name string }

func (p Prim) Moniker() string       { return p.Name }
func (p Prim) FreeVars() []*TVar     { return nil }
func (p Prim) Apply(Subst) Type      { return p }

var (
	Int    = Prim{"int"}
	Real   = Prim{"real"}
	String = Prim{"string"}
	Char   = Prim{"char"}
	Bool   = Prim{"bool"}
	Unit   = Prim{"unit"}
)

// TVar is a type variable with fresh identity. Two TVars are the same
// variable iff they are the same *TVar pointer; the TypeSystem arena is the
// sole allocator so identity is meaningful across a session.
type TVar struct {
	ID   int
	Eq   bool // equality-admitting: may only unify with equality types
	Name string
}

func (v *TVar) Moniker() string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("'t%d", v.ID)
}
func (v *TVar) FreeVars() []*TVar { return []*TVar{v} }
func (v *TVar) Apply(s Subst) Type {
	if t, ok := s[v.ID]; ok {
		if t == v {
			return v
		}
		return t.Apply(s)
	}
	return v
}

// Fun is a function type T1 -> T2.
type Fun struct {
	From, To Type
}

func (f Fun) Moniker() string {
	from := f.From.Moniker()
	if _, ok := f.From.(Fun); ok {
		from = "(" + from + ")"
	}
	return from + " -> " + f.To.Moniker()
}
func (f Fun) FreeVars() []*TVar  { return dedupVars(f.From.FreeVars(), f.To.FreeVars()) }
func (f Fun) Apply(s Subst) Type { return Fun{f.From.Apply(s), f.To.Apply(s)} }

// Tuple is a tuple type T1 x ... x Tn, n >= 2.
type Tuple struct {
	Elems []Type
}

func (t Tuple) Moniker() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Moniker()
	}
	return strings.Join(parts, " * ")
}
func (t Tuple) FreeVars() []*TVar {
	var all []*TVar
	for _, e := range t.Elems {
		all = dedupVars(all, e.FreeVars())
	}
	return all
}
func (t Tuple) Apply(s Subst) Type {
	out := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		out[i] = e.Apply(s)
	}
	return Tuple{out}
}

// Record is a record type: field label -> type, labels unique. Moniker
// ordering is alphabetical regardless of declaration order (spec §3).
type Record struct {
	Fields map[string]Type
}

func (r Record) sortedLabels() []string {
	labels := make([]string, 0, len(r.Fields))
	for l := range r.Fields {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (r Record) Moniker() string {
	labels := r.sortedLabels()
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l + ": " + r.Fields[l].Moniker()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (r Record) FreeVars() []*TVar {
	var all []*TVar
	for _, l := range r.sortedLabels() {
		all = dedupVars(all, r.Fields[l].FreeVars())
	}
	return all
}
func (r Record) Apply(s Subst) Type {
	out := make(map[string]Type, len(r.Fields))
	for k, v := range r.Fields {
		out[k] = v.Apply(s)
	}
	return Record{out}
}

// List is a list type T list.
type List struct{ Elem Type }

func (l List) Moniker() string { return computeMoniker("list", []Type{l.Elem}) }
func (l List) FreeVars() []*TVar  { return l.Elem.FreeVars() }
func (l List) Apply(s Subst) Type { return List{l.Elem.Apply(s)} }

// Data is an algebraic/"data" type instance: (T1, ..., Tk) name.
type Data struct {
	Name string
	Args []Type
}

func (d Data) Moniker() string { return computeMoniker(d.Name, d.Args) }

// computeMoniker follows the original Morel ParameterizedType algorithm
// exactly: no args -> bare name; one arg -> "<arg> name" (parenthesized only
// if the arg is itself a tuple); several args -> "(<a1>,<a2>,...) name".
func computeMoniker(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	var b strings.Builder
	if len(args) > 1 {
		b.WriteByte('(')
	}
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		if _, ok := a.(Tuple); ok {
			b.WriteByte('(')
			b.WriteString(a.Moniker())
			b.WriteByte(')')
		} else {
			b.WriteString(a.Moniker())
		}
	}
	if len(args) > 1 {
		b.WriteByte(')')
	}
	b.WriteByte(' ')
	b.WriteString(name)
	return b.String()
}
func (d Data) FreeVars() []*TVar {
	var all []*TVar
	for _, a := range d.Args {
		all = dedupVars(all, a.FreeVars())
	}
	return all
}
func (d Data) Apply(s Subst) Type {
	out := make([]Type, len(d.Args))
	for i, a := range d.Args {
		out[i] = a.Apply(s)
	}
	return Data{d.Name, out}
}

func dedupVars(lists ...[]*TVar) []*TVar {
	seen := map[int]bool{}
	var out []*TVar
	for _, l := range lists {
		for _, v := range l {
			if !seen[v.ID] {
				seen[v.ID] = true
				out = append(out, v)
			}
		}
	}
	return out
}
