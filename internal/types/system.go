package types

import "fmt"

// Ctor describes one constructor of a user- or builtin-declared data type.
type Ctor struct {
	Name string
	Arg  Type // nil for a nullary constructor
}

// DataDecl is a named data-type declaration: its type parameters and its
// constructors. Params holds the exact *TVar identities the declaration's
// constructor argument types were built from, so a use site can
// instantiate the whole declaration consistently (every occurrence of the
// same parameter substituted by the same fresh variable).
type DataDecl struct {
	Name   string
	Params []*TVar
	Ctors  []Ctor
	IsExn  bool // true for the shared, non-parametric `exn` declaration every `exception` constructor is added to
}

// Arity is the number of type parameters this declaration takes.
func (d *DataDecl) Arity() int { return len(d.Params) }

// TypeSystem is the mutable, session-scoped arena described in spec §4.1:
// it allocates fresh type variables, interns composite types, and holds
// the catalog of data-type declarations (including exception constructors,
// which are lowered through the same mechanism as data constructors).
//
// Rationale (spec §4.1): a mutable per-session store avoids rebuilding
// substitutions on every unification step, and fresh-variable identity is
// cheap (just an incrementing counter).
type TypeSystem struct {
	nextVar int
	datas   map[string]*DataDecl
	ctors   map[string]*DataDecl // constructor name -> owning data type
	interned map[string]Type
}

// New creates an empty TypeSystem: no data type is declared up front (the
// builtin list type is structural, not a DataDecl).
func New() *TypeSystem {
	ts := &TypeSystem{
		datas:    map[string]*DataDecl{},
		ctors:    map[string]*DataDecl{},
		interned: map[string]Type{},
	}
	return ts
}

// FreshVar allocates a new type variable with fresh identity. eq flags it
// as equality-admitting (spec §4.1): it may only be bound to equality types.
func (ts *TypeSystem) FreshVar(eq bool) *TVar {
	ts.nextVar++
	return &TVar{ID: ts.nextVar, Eq: eq}
}

// Intern returns a canonical pointer-identity-stable Type for composite
// types, so that reference equality implies structural equality in callers
// that cache by Type identity (spec §3's invariant). Variables are never
// interned: their identity already carries meaning.
func (ts *TypeSystem) Intern(t Type) Type {
	switch t.(type) {
	case *TVar:
		return t
	}
	key := t.Moniker()
	if cached, ok := ts.interned[key]; ok {
		return cached
	}
	ts.interned[key] = t
	return t
}

// Apply threads a substitution through a type via the type's own Apply.
func (ts *TypeSystem) Apply(s Subst, t Type) Type { return t.Apply(s) }

// DeclareData registers a data-type declaration and its constructors.
func (ts *TypeSystem) DeclareData(d *DataDecl) error {
	if _, exists := ts.datas[d.Name]; exists {
		return fmt.Errorf("type %q already declared", d.Name)
	}
	ts.datas[d.Name] = d
	for _, c := range d.Ctors {
		if _, exists := ts.ctors[c.Name]; exists {
			return fmt.Errorf("constructor %q already declared", c.Name)
		}
		ts.ctors[c.Name] = d
	}
	return nil
}

// DeclareException registers a nullary or unary exception constructor as
// one more constructor of the single shared data type named "exn" (spec
// §4.2), creating that declaration on first use.
func (ts *TypeSystem) DeclareException(name string, arg Type) error {
	d, ok := ts.datas["exn"]
	if !ok {
		d = &DataDecl{Name: "exn", IsExn: true}
		ts.datas["exn"] = d
	}
	d.Ctors = append(d.Ctors, Ctor{Name: name, Arg: arg})
	ts.ctors[name] = d
	return nil
}

// LookupData returns the data-type declaration by name.
func (ts *TypeSystem) LookupData(name string) (*DataDecl, bool) {
	d, ok := ts.datas[name]
	return d, ok
}

// LookupCtor returns the data type owning constructor name, and the
// constructor's own declared argument type (unsubstituted).
func (ts *TypeSystem) LookupCtor(name string) (*DataDecl, *Ctor, bool) {
	d, ok := ts.ctors[name]
	if !ok {
		return nil, nil, false
	}
	for i := range d.Ctors {
		if d.Ctors[i].Name == name {
			return d, &d.Ctors[i], true
		}
	}
	return nil, nil, false
}

// Exn is the builtin exception type, `exn`.
var Exn = Data{Name: "exn"}
