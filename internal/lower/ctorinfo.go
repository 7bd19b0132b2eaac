package lower

import "github.com/GavinRay97/morel/internal/types"

// ctorInfo adapts a *types.TypeSystem to internal/match's CtorInfo
// interface: everything match.Compile needs to know about a scrutinee's
// possible shapes to decide exhaustiveness and build SwitchCases, without
// match itself depending on internal/types' representation choices.
type ctorInfo struct {
	ts *types.TypeSystem
}

// Ctors reports the closed constructor set of t, when t has one. Bool and
// list are structural and never go through the TypeSystem's DataDecl
// registry; exceptions are always reported open since `exception` can
// introduce new alternatives in any later declaration.
func (c ctorInfo) Ctors(t types.Type) ([]string, bool) {
	switch ty := t.(type) {
	case types.Prim:
		if ty.Name == "bool" {
			return []string{"false", "true"}, true
		}
		return nil, false
	case types.List:
		return []string{"Nil", "::"}, true
	case types.Data:
		if ty.Name == "exn" {
			return nil, false
		}
		d, ok := c.ts.LookupData(ty.Name)
		if !ok {
			return nil, false
		}
		names := make([]string, len(d.Ctors))
		for i, ct := range d.Ctors {
			names[i] = ct.Name
		}
		return names, true
	}
	return nil, false
}

func (c ctorInfo) Arity(ctor string) int {
	switch ctor {
	case "Nil", "false", "true":
		return 0
	case "::":
		return 1
	}
	if _, ct, ok := c.ts.LookupCtor(ctor); ok && ct.Arg != nil {
		return 1
	}
	return 0
}

// PayloadType returns the type of ctor's payload when applied to a
// scrutinee of type scrutTy, instantiating the owning DataDecl's type
// parameters against scrutTy's actual arguments.
func (c ctorInfo) PayloadType(scrutTy types.Type, ctor string) types.Type {
	switch ctor {
	case "::":
		lt := scrutTy.(types.List)
		return types.Tuple{Elems: []types.Type{lt.Elem, lt}}
	case "Nil", "false", "true":
		return nil
	}
	d, ct, ok := c.ts.LookupCtor(ctor)
	if !ok || ct.Arg == nil {
		return nil
	}
	if len(d.Params) == 0 {
		return ct.Arg
	}
	data, ok := scrutTy.(types.Data)
	if !ok {
		return ct.Arg
	}
	subst := make(types.Subst, len(d.Params))
	for i, p := range d.Params {
		subst[p.ID] = data.Args[i]
	}
	return ct.Arg.Apply(subst)
}
