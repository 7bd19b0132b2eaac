// Package catalog defines the ExternalCatalog boundary of spec §6: the
// "pluggable foreign data-source subsystem that exposes external
// tables as values of structural types." A session consults an
// ExternalCatalog twice — once from internal/typeresolve, to learn
// each dataset's RecordType so `from row in Employees` type-checks
// before a single row is ever read, and once from internal/eval, to
// actually materialize the rows a compiled query iterates.
//
// Grounded on the teacher's internal/modules.Loader: a single
// interface standing between the language core and a pluggable
// external source, cached once per name so a second reference to the
// same dataset never re-runs whatever side effect produced it the
// first time. internal/catalog/sqlcatalog supplies the concrete,
// SQLite-backed implementation; MemCatalog here is an in-memory
// implementation. A session given no catalog (internal/session's
// NewSession accepts nil) has no datasets at all.
package catalog

import (
	"fmt"

	"github.com/GavinRay97/morel/internal/eval"
	"github.com/GavinRay97/morel/internal/types"
)

// Dataset is one named external table: its row shape, known statically
// without reading a single row, and a thunk that reads every row when
// (and only when) the evaluator actually needs them.
type Dataset struct {
	Schema types.Record
	Rows   func() ([]*eval.Record, error)
}

// ExternalCatalog is spec §6's boundary: "datasets(): Map<name, {schema:
// RecordType, rows: Iterable<Row>}>". Implementations must be safe for
// the read-only, single Datasets call per session phase described
// above; nothing in this package mutates the map it returns.
type ExternalCatalog interface {
	Datasets() (map[string]Dataset, error)
}

// MemCatalog is an ExternalCatalog backed by a fixed, in-process table.
// Rows given to Add are returned as-is, with no further materialization
// step.
type MemCatalog struct {
	datasets map[string]Dataset
}

// NewMemCatalog builds an empty in-memory catalog; datasets are
// registered with Add.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{datasets: map[string]Dataset{}}
}

// Add registers one dataset under name, replacing any previous
// dataset of the same name.
func (m *MemCatalog) Add(name string, schema types.Record, rows []*eval.Record) {
	m.datasets[name] = Dataset{
		Schema: schema,
		Rows:   func() ([]*eval.Record, error) { return rows, nil },
	}
}

func (m *MemCatalog) Datasets() (map[string]Dataset, error) {
	return m.datasets, nil
}

// RowType returns the List(Record) type a dataset's name resolves to
// in the TypeResolver's environment — every catalog-sourced identifier
// names a list of rows, never a bare record (spec §6's "Iterable<Row>").
func RowType(d Dataset) types.Type {
	return types.List{Elem: d.Schema}
}

// RowValue materializes a dataset's rows as the eval.List value the
// same identifier resolves to in the evaluator's Environment.
func RowValue(d Dataset) (*eval.List, error) {
	rows, err := d.Rows()
	if err != nil {
		return nil, fmt.Errorf("catalog: reading rows: %w", err)
	}
	elems := make([]eval.Value, len(rows))
	for i, r := range rows {
		elems[i] = r
	}
	return &eval.List{Elems: elems}, nil
}
