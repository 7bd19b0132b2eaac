package lower

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/typeresolve"
	"github.com/GavinRay97/morel/internal/types"
)

// identName returns the bare name of a pattern that is just a variable (the
// `val rec f = ...` / `fun f ...` shape), or "" otherwise. Mirrors
// typeresolve's unexported identName.
func identName(pat ast.Pattern) string {
	if v, ok := pat.(*ast.VarPat); ok {
		return v.Name
	}
	return ""
}

// bindingTypes collects every name pat would bind together with the type
// typeresolve recorded for it, mirroring typeresolve's unexported
// bindingNames one-for-one but reading tm at each binding site instead of
// just collecting the name. This is valid because inferPattern calls
// r.record(pat, ty) unconditionally for every pattern node it visits,
// including leaf VarPats, so tm always has an entry by the time lowering
// runs.
func bindingTypes(pat ast.Pattern, tm typeresolve.TypeMap) map[string]types.Type {
	out := map[string]types.Type{}
	collectBindingTypes(pat, tm, out)
	return out
}

func collectBindingTypes(pat ast.Pattern, tm typeresolve.TypeMap, out map[string]types.Type) {
	switch p := pat.(type) {
	case *ast.VarPat:
		out[p.Name] = tm[p]
	case *ast.AsPat:
		out[p.Name] = tm[p]
		collectBindingTypes(p.Inner, tm, out)
	case *ast.LayeredPat:
		out[p.Name] = tm[p]
		collectBindingTypes(p.Inner, tm, out)
	case *ast.AnnotatedPat:
		collectBindingTypes(p.Inner, tm, out)
	case *ast.ConPat:
		if p.Arg != nil {
			collectBindingTypes(p.Arg, tm, out)
		}
	case *ast.TuplePat:
		for _, el := range p.Elems {
			collectBindingTypes(el, tm, out)
		}
	case *ast.RecordPat:
		for _, f := range p.Fields {
			collectBindingTypes(f.Pat, tm, out)
		}
	}
}
