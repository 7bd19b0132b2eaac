package core

import "github.com/GavinRay97/morel/internal/types"

// The relational-algebra node family internal/relational rewrites
// `from`/`where`/`yield` comprehensions into (spec §4.5). Each node's
// element type is a Record type; RowVar names the per-row binder visible to
// Pred/Project/Join subexpressions, mirroring the comprehension's pattern.

// Scan is the base relation: a variable bound to a `'a list`-typed source.
type Scan struct {
	Typ    types.Type // element type
	RowVar Ident
	Source Expr
}

// Filter keeps only rows for which Pred evaluates true.
type Filter struct {
	Typ    types.Type
	Input  Expr
	RowVar Ident
	Pred   Expr
}

// Project maps each row through Body, producing a new element type.
type Project struct {
	Typ    types.Type
	Input  Expr
	RowVar Ident
	Body   Expr
}

// Join pairs rows of Left and Right for which Pred holds (nil Pred means a
// cross join), exposing both row variables to Pred and to a consuming
// Project/Filter.
type Join struct {
	Typ              types.Type
	Left, Right      Expr
	LeftVar, RightVar Ident
	Pred             Expr // nil for a cross join
}

// GroupBy partitions Input by Key, reducing each group with Aggs.
type GroupBy struct {
	Typ    types.Type
	Input  Expr
	RowVar Ident
	Key    Expr
	Aggs   []AggSpec
}

// AggSpec is one `label = agg(expr)` entry of a GroupBy.
type AggSpec struct {
	Label string
	Fn    string // "count", "sum", "min", "max", "avg"
	Arg   Expr   // nil for "count"
}

// Union concatenates Left and Right, which must share an element type.
type Union struct {
	Typ         types.Type
	Left, Right Expr
}

// Aggregate reduces Input to a single scalar/record with Aggs, with no
// grouping key (the degenerate GroupBy case called out by spec §4.5).
type Aggregate struct {
	Typ    types.Type
	Input  Expr
	RowVar Ident
	Aggs   []AggSpec
}

func (*Scan) exprNode()      {}
func (*Filter) exprNode()    {}
func (*Project) exprNode()   {}
func (*Join) exprNode()      {}
func (*GroupBy) exprNode()   {}
func (*Union) exprNode()     {}
func (*Aggregate) exprNode() {}

func (e *Scan) Type() types.Type      { return e.Typ }
func (e *Filter) Type() types.Type    { return e.Typ }
func (e *Project) Type() types.Type   { return e.Typ }
func (e *Join) Type() types.Type      { return e.Typ }
func (e *GroupBy) Type() types.Type   { return e.Typ }
func (e *Union) Type() types.Type     { return e.Typ }
func (e *Aggregate) Type() types.Type { return e.Typ }
