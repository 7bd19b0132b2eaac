package compile

import (
	"fmt"
	"strings"

	"github.com/GavinRay97/morel/internal/core"
)

// describeDecl and describe render a one-time textual plan for a
// compiled declaration: a static, read-only rendering of the Core
// expression tree compilation consumed, independent of any particular
// Run call. Nothing at runtime reads Plan — it exists purely for a REPL's
// `:plan` / `:explain`-style command to show the user what their
// declaration was actually lowered and optimized to (spec §6's External
// Interfaces), the same role the teacher's own value Inspect() methods
// play for runtime values, applied here to the static program shape
// instead.
func describeDecl(d core.Decl) string {
	var b strings.Builder
	kind := "val"
	if d.Rec {
		kind = "fun"
	}
	for i, bind := range d.Bindings {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s =\n", kind, bind.Name.Name)
		b.WriteString(indent(describe(bind.Value), "  "))
	}
	return b.String()
}

func describe(e core.Expr) string {
	switch n := e.(type) {
	case *core.Lit:
		return fmt.Sprintf("%v", n.Value)
	case *core.Var:
		return n.Name.Name
	case *core.TupleExpr:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = describe(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *core.RecordExpr:
		parts := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			parts[i] = f.Label + " = " + describe(f.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *core.ListExpr:
		parts := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			parts[i] = describe(el)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *core.ConApp:
		if n.Arg == nil {
			return n.Ctor
		}
		return n.Ctor + " " + describe(n.Arg)
	case *core.App:
		return describe(n.Fn) + " " + describe(n.Arg)
	case *core.Lam:
		return "fn " + n.Param.Name + " => " + describe(n.Body)
	case *core.Let:
		return "let ... in " + describe(n.Body)
	case *core.If:
		return "if " + describe(n.Cond) + " then " + describe(n.Then) + " else " + describe(n.Else)
	case *core.Match:
		return "case " + describe(n.Scrut) + " of ..."
	case *core.Handle:
		return describe(n.Body) + " handle ..."
	case *core.Raise:
		return "raise " + describe(n.Exn)
	case *core.TupleProj:
		return fmt.Sprintf("%s.#%d", describe(n.Tuple), n.Index)
	case *core.RecordProj:
		return describe(n.Record) + "." + n.Label
	case *core.Scan:
		return "SCAN " + n.RowVar.Name + " IN " + describe(n.Source)
	case *core.Filter:
		return describe(n.Input) + "\nWHERE " + describe(n.Pred)
	case *core.Project:
		return describe(n.Input) + "\nYIELD " + describe(n.Body)
	case *core.Join:
		kind := "JOIN"
		pred := "true"
		if n.Pred != nil {
			pred = describe(n.Pred)
		} else {
			kind = "CROSS JOIN"
		}
		return describe(n.Left) + "\n" + kind + " " + n.RightVar.Name + " IN " + describe(n.Right) + " ON " + pred
	case *core.GroupBy:
		return describe(n.Input) + "\nGROUP BY " + describe(n.Key) + " " + describeAggs(n.Aggs)
	case *core.Union:
		return describe(n.Left) + "\nUNION\n" + describe(n.Right)
	case *core.Aggregate:
		return describe(n.Input) + "\nAGGREGATE " + describeAggs(n.Aggs)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func describeAggs(aggs []core.AggSpec) string {
	parts := make([]string, len(aggs))
	for i, a := range aggs {
		if a.Arg == nil {
			parts[i] = fmt.Sprintf("%s = %s()", a.Label, a.Fn)
		} else {
			parts[i] = fmt.Sprintf("%s = %s(%s)", a.Label, a.Fn, describe(a.Arg))
		}
	}
	return strings.Join(parts, ", ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
