package typeresolve

import (
	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/types"
)

// resolveTypeExpr turns a surface type annotation into an internal/types.Type,
// sharing one tyvar bound to its '-prefixed name across the whole
// annotation (so `'a -> 'a` ties both occurrences to the same variable).
func (r *Resolver) resolveTypeExpr(te ast.TypeExpr, tvars map[string]*types.TVar) types.Type {
	switch t := te.(type) {
	case *ast.VarTypeExpr:
		if v, ok := tvars[t.Name]; ok {
			return v
		}
		v := r.ts.FreshVar(false)
		v.Name = t.Name
		tvars[t.Name] = v
		return v
	case *ast.NamedTypeExpr:
		return r.resolveNamedTypeExpr(t, tvars)
	case *ast.TupleTypeExpr:
		elems := make([]types.Type, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = r.resolveTypeExpr(e, tvars)
		}
		return types.Tuple{Elems: elems}
	case *ast.RecordTypeExpr:
		fields := make(map[string]types.Type, len(t.Fields))
		for _, f := range t.Fields {
			fields[f.Label] = r.resolveTypeExpr(f.Type, tvars)
		}
		return types.Record{Fields: fields}
	case *ast.FunTypeExpr:
		return types.Fun{From: r.resolveTypeExpr(t.From, tvars), To: r.resolveTypeExpr(t.To, tvars)}
	}
	panic("typeresolve: unhandled TypeExpr")
}

func (r *Resolver) resolveNamedTypeExpr(t *ast.NamedTypeExpr, tvars map[string]*types.TVar) types.Type {
	if len(t.Args) == 0 {
		switch t.Name {
		case "int":
			return types.Int
		case "real":
			return types.Real
		case "string":
			return types.String
		case "char":
			return types.Char
		case "bool":
			return types.Bool
		case "unit":
			return types.Unit
		}
	}
	args := make([]types.Type, len(t.Args))
	for i, a := range t.Args {
		args[i] = r.resolveTypeExpr(a, tvars)
	}
	if t.Name == "list" && len(args) == 1 {
		return types.List{Elem: args[0]}
	}
	return types.Data{Name: t.Name, Args: args}
}
