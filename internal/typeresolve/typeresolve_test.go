package typeresolve

import (
	"testing"

	"github.com/GavinRay97/morel/internal/parser"
	"github.com/GavinRay97/morel/internal/types"
)

func resolveSrc(t *testing.T, src string) *Resolved {
	t.Helper()
	prog, err := parser.ParseProgram("test.sml", src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ts := types.New()
	res, err := New(ts).ResolveProgram(prog, NewEnv())
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	return res
}

// lastStatementType returns the resolved type of the final statement's
// expression (or, for a declaration, the type its bound name now carries
// in the returned environment).
func lastExprType(t *testing.T, res *Resolved) types.Type {
	t.Helper()
	prog := res.Program
	last := prog.Statements[len(prog.Statements)-1]
	if last.Expr == nil {
		t.Fatalf("last statement is a declaration, not an expression")
	}
	return res.TypeMap[last.Expr]
}

func TestIntLiteral(t *testing.T) {
	res := resolveSrc(t, `1;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestNegateDefaultsToInt(t *testing.T) {
	res := resolveSrc(t, `~2;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestNegateReal(t *testing.T) {
	res := resolveSrc(t, `~10.25;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "real" {
		t.Fatalf("want real, got %s", ty.Moniker())
	}
}

func TestAdditionDefaultsToInt(t *testing.T) {
	res := resolveSrc(t, `2 + 3;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestLetInBody(t *testing.T) {
	res := resolveSrc(t, `let val x = 1 in x + 2 end;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestNestedLetShadowing(t *testing.T) {
	res := resolveSrc(t, `let val x = 1 in let val x = 2 in x * 3 end + x end;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

// TestProgramItBinding reproduces spec §8's `val x = 5; x; it + 1;` program:
// the bare-expression statements bind `it`, and the whole program resolves
// without error across all three statements.
func TestProgramItBinding(t *testing.T) {
	res := resolveSrc(t, `val x = 5; x; it + 1;`)
	if len(res.Program.Statements) != 3 {
		t.Fatalf("want 3 statements, got %d", len(res.Program.Statements))
	}
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

// TestPrincipalTypeIdentity checks that `fn x => x` is generalised to a
// polymorphic identity, usable at two different instantiations within the
// same let body (spec §8 property 3).
func TestPrincipalTypeIdentity(t *testing.T) {
	res := resolveSrc(t, `let val id = fn x => x in (id 1, id true) end;`)
	ty := lastExprType(t, res)
	tup, ok := ty.(types.Tuple)
	if !ok || len(tup.Elems) != 2 {
		t.Fatalf("want a 2-tuple, got %s", ty.Moniker())
	}
	if tup.Elems[0].Moniker() != "int" {
		t.Fatalf("want int for id 1, got %s", tup.Elems[0].Moniker())
	}
	if tup.Elems[1].Moniker() != "bool" {
		t.Fatalf("want bool for id true, got %s", tup.Elems[1].Moniker())
	}
}

// TestValueRestrictionDeniesGeneralisation checks that a non-syntactic-value
// RHS (a function application) is bound monomorphically: using the
// resulting name at two incompatible types fails to unify (spec §8
// property 4).
func TestValueRestrictionDeniesGeneralisation(t *testing.T) {
	prog, err := parser.ParseProgram("test.sml", `let fun id x = x val p = id id in (p 1, p true) end;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ts := types.New()
	_, err = New(ts).ResolveProgram(prog, NewEnv())
	if err == nil {
		t.Fatalf("expected a unification failure from the non-generalised binding, got none")
	}
}

// TestDatatypeConstructorRoundTrip checks a user datatype's constructors
// type-check at their declared shape and that case-matching over them
// infers a consistent result type.
func TestDatatypeConstructorRoundTrip(t *testing.T) {
	res := resolveSrc(t, `datatype 'a option = NONE | SOME of 'a;
val f = fn o => case o of NONE => 0 | SOME x => x;
f (SOME 5);`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestListConsAndAppend(t *testing.T) {
	res := resolveSrc(t, `1 :: [2, 3] @ [4];`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int list" {
		t.Fatalf("want int list, got %s", ty.Moniker())
	}
}

func TestIfBranchesUnify(t *testing.T) {
	res := resolveSrc(t, `if true then 1 else 2;`)
	ty := lastExprType(t, res)
	if ty.Moniker() != "int" {
		t.Fatalf("want int, got %s", ty.Moniker())
	}
}

func TestUnboundIdentifierFails(t *testing.T) {
	prog, err := parser.ParseProgram("test.sml", `thisNameDoesNotExist;`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ts := types.New()
	_, err = New(ts).ResolveProgram(prog, NewEnv())
	if err == nil {
		t.Fatalf("expected UnboundIdentifier error, got none")
	}
	if _, ok := err.(*UnboundIdentifier); !ok {
		t.Fatalf("want *UnboundIdentifier, got %T", err)
	}
}
