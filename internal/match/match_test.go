package match

import (
	"testing"

	"github.com/GavinRay97/morel/internal/ast"
	"github.com/GavinRay97/morel/internal/core"
	"github.com/GavinRay97/morel/internal/token"
	"github.com/GavinRay97/morel/internal/types"
)

// fakeCtors is a fixed CtorInfo double standing in for what internal/lower's
// real implementation derives from the TypeSystem.
type fakeCtors struct {
	sets    map[string][]string
	arity   map[string]int
	closed  map[string]bool
	payload map[string]types.Type
}

func (f *fakeCtors) Ctors(t types.Type) ([]string, bool) {
	m, ok := t.(types.Data)
	if !ok {
		return nil, false
	}
	set, ok := f.sets[m.Name]
	if !ok {
		return nil, false
	}
	return set, f.closed[m.Name]
}

func (f *fakeCtors) Arity(ctor string) int { return f.arity[ctor] }

func (f *fakeCtors) PayloadType(scrutTy types.Type, ctor string) types.Type {
	return f.payload[ctor]
}

func boolCtors() *fakeCtors {
	return &fakeCtors{
		sets:   map[string][]string{"bool": {"false", "true"}},
		arity:  map[string]int{"false": 0, "true": 0},
		closed: map[string]bool{"bool": true},
	}
}

func optionOf(t types.Type) types.Data { return types.Data{Name: "option", Args: []types.Type{t}} }

func optionCtors(elem types.Type) *fakeCtors {
	return &fakeCtors{
		sets:    map[string][]string{"option": {"NONE", "SOME"}},
		arity:   map[string]int{"NONE": 0, "SOME": 1},
		closed:  map[string]bool{"option": true},
		payload: map[string]types.Type{"SOME": elem},
	}
}

func row(pat ast.Pattern, tag string) Row {
	return Row{Pat: pat, Body: &core.Lit{Typ: types.String, Value: tag}}
}

func TestCompileExhaustiveBoolMatch(t *testing.T) {
	rows := []Row{
		row(&ast.LitPat{Value: &ast.BoolLit{Value: true}}, "t"),
		row(&ast.LitPat{Value: &ast.BoolLit{Value: false}}, "f"),
	}
	res := Compile(core.Ident{Name: "scrut"}, types.Data{Name: "bool"}, rows, boolCtors(), token.Pos{})
	if res.Status != OK {
		t.Fatalf("want OK, got %v", res.Status)
	}
}

func TestCompileNonExhaustiveBoolMatch(t *testing.T) {
	rows := []Row{
		row(&ast.LitPat{Value: &ast.BoolLit{Value: true}}, "t"),
	}
	res := Compile(core.Ident{Name: "scrut"}, types.Data{Name: "bool"}, rows, boolCtors(), token.Pos{})
	if res.Status != NonExhaustive {
		t.Fatalf("want NonExhaustive, got %v", res.Status)
	}
}

func TestCompileRedundantMatch(t *testing.T) {
	rows := []Row{
		row(&ast.WildcardPat{}, "wild"),
		row(&ast.LitPat{Value: &ast.BoolLit{Value: true}}, "t"),
	}
	res := Compile(core.Ident{Name: "scrut"}, types.Data{Name: "bool"}, rows, boolCtors(), token.Pos{})
	if res.Status != Redundant {
		t.Fatalf("want Redundant, got %v", res.Status)
	}
}

func TestCompileWildcardCoversRemaining(t *testing.T) {
	rows := []Row{
		row(&ast.LitPat{Value: &ast.BoolLit{Value: true}}, "t"),
		row(&ast.WildcardPat{}, "rest"),
	}
	res := Compile(core.Ident{Name: "scrut"}, types.Data{Name: "bool"}, rows, boolCtors(), token.Pos{})
	if res.Status != OK {
		t.Fatalf("want OK, got %v", res.Status)
	}
	if res.Tree.Kind != core.TreeSwitch || res.Tree.Default == nil {
		t.Fatalf("expected a switch with a default arm, got %#v", res.Tree)
	}
}

// TestWildcardAfterExhaustiveCasesIsRedundant checks that once every
// constructor already has an explicit arm, a trailing catch-all row is
// flagged redundant rather than folded into an unreachable default arm.
func TestWildcardAfterExhaustiveCasesIsRedundant(t *testing.T) {
	rows := []Row{
		row(&ast.LitPat{Value: &ast.BoolLit{Value: true}}, "t"),
		row(&ast.LitPat{Value: &ast.BoolLit{Value: false}}, "f"),
		{Pat: &ast.WildcardPat{}, Body: &core.Lit{Typ: types.String, Value: "rest"}, Pos: token.Pos{StartLine: 3}},
	}
	res := Compile(core.Ident{Name: "scrut"}, types.Data{Name: "bool"}, rows, boolCtors(), token.Pos{})
	if res.Status != Redundant {
		t.Fatalf("want Redundant, got %v", res.Status)
	}
	if res.RedundantAt.StartLine != 3 {
		t.Fatalf("want the trailing wildcard row flagged, got %+v", res.RedundantAt)
	}
	if res.Tree.Default != nil {
		t.Fatalf("want no default arm once both bool tags are covered, got %+v", res.Tree)
	}
}

// TestOptionSomePayloadBindsFreshIdent checks a SOME arm's payload binds
// through a fresh SwitchCase ident the row's body can reference via Idents.
func TestOptionSomePayloadBindsFreshIdent(t *testing.T) {
	xIdent := core.Ident{Name: "x", ID: 2}
	rows := []Row{
		{Pat: &ast.ConPat{Ctor: "NONE"}, Body: &core.Lit{Typ: types.Int, Value: int64(0)}},
		{
			Pat:    &ast.ConPat{Ctor: "SOME", Arg: &ast.VarPat{Name: "x"}},
			Body:   &core.Var{Typ: types.Int, Name: xIdent},
			Idents: map[string]core.Ident{"x": xIdent},
		},
	}
	res := Compile(core.Ident{Name: "s", ID: 1}, optionOf(types.Int), rows, optionCtors(types.Int), token.Pos{})
	if res.Status != OK {
		t.Fatalf("want OK, got %v", res.Status)
	}
	tree := res.Tree
	if tree.Kind != core.TreeSwitch || len(tree.Cases) != 2 || tree.Default != nil {
		t.Fatalf("want an exhaustive 2-case switch with no default, got %+v", tree)
	}
	for _, c := range tree.Cases {
		if c.Ctor == "SOME" {
			if len(c.Bindings) != 1 {
				t.Fatalf("want SOME to bind its payload, got %+v", c.Bindings)
			}
			if c.Next.Kind != core.TreeLeaf {
				t.Fatalf("want SOME's payload column to resolve to a leaf, got %+v", c.Next)
			}
		}
	}
}

// TestTupleColumnWithRefutableSubPattern exercises the case a single-column
// dispatcher gets wrong: a tuple scrutinee whose first element is itself
// refutable. `(SOME a, 0) => a | (_, _) => 0` must branch on the option tag
// before reaching either leaf rather than mistaking the tuple row for an
// unconditional wildcard.
func TestTupleColumnWithRefutableSubPattern(t *testing.T) {
	aIdent := core.Ident{Name: "a", ID: 2}
	tupTy := types.Tuple{Elems: []types.Type{optionOf(types.Int), types.Int}}
	rows := []Row{
		{
			Pat: &ast.TuplePat{Elems: []ast.Pattern{
				&ast.ConPat{Ctor: "SOME", Arg: &ast.VarPat{Name: "a"}},
				&ast.LitPat{Value: &ast.IntLit{Value: 0}},
			}},
			Body:   &core.Var{Typ: types.Int, Name: aIdent},
			Idents: map[string]core.Ident{"a": aIdent},
		},
		{
			Pat:  &ast.TuplePat{Elems: []ast.Pattern{&ast.WildcardPat{}, &ast.WildcardPat{}}},
			Body: &core.Lit{Typ: types.Int, Value: int64(0)},
		},
	}
	res := Compile(core.Ident{Name: "s", ID: 1}, tupTy, rows, optionCtors(types.Int), token.Pos{})
	tree := res.Tree
	if tree.Kind != core.TreeSwitch {
		t.Fatalf("want the tuple's first (refutable) column to produce a switch, got %+v", tree)
	}
	foundSome := false
	for _, c := range tree.Cases {
		if c.Ctor == "SOME" {
			foundSome = true
		}
	}
	if !foundSome {
		t.Fatalf("want a SOME case over the tuple's first column, got %+v", tree.Cases)
	}
}

// TestRecordColumnOmittedFieldIsWildcard checks that a RecordPat which omits
// a field treats that field as unconstrained, still dispatching correctly on
// the field it does name.
func TestRecordColumnOmittedFieldIsWildcard(t *testing.T) {
	recTy := types.Record{Fields: map[string]types.Type{"tag": optionOf(types.Int), "n": types.Int}}
	rows := []Row{
		{
			Pat: &ast.RecordPat{Fields: []ast.RecordPatField{
				{Label: "tag", Pat: &ast.ConPat{Ctor: "NONE"}},
			}, Ellipsis: true},
			Body: &core.Lit{Typ: types.Int, Value: int64(1)},
		},
		{
			Pat:  &ast.WildcardPat{},
			Body: &core.Lit{Typ: types.Int, Value: int64(2)},
		},
	}
	res := Compile(core.Ident{Name: "s", ID: 1}, recTy, rows, optionCtors(types.Int), token.Pos{})
	if res.Status != OK {
		t.Fatalf("want OK, got %v", res.Status)
	}
	if res.Tree.Kind != core.TreeSwitch {
		t.Fatalf("want the record's named field to dispatch, got %+v", res.Tree)
	}
	if res.Tree.Scrutinee.Steps[0].Label != "tag" {
		t.Fatalf("want the switch to scrutinise the 'tag' field, got %+v", res.Tree.Scrutinee)
	}
}
