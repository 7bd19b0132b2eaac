// Script/expected-output REPL tests, following original Morel's
// MainTest/Ml.java in shape: each case is a verbatim REPL script
// plus the verbatim wire-surface output it must produce.
package session

import (
	"testing"

	"github.com/GavinRay97/morel/internal/catalog"
	"github.com/GavinRay97/morel/internal/config"
	"github.com/GavinRay97/morel/internal/types"
)

func emptyRecordSchema() types.Record { return types.Record{Fields: map[string]types.Type{}} }

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(config.Default(), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestWireSurfaceThreeLineScript(t *testing.T) {
	s := newTestSession(t)
	res := s.Eval("<repl>", "val x = 5;\nx;\nit + 1;\n")
	if res.State != Evaluated {
		t.Fatalf("state = %v, err = %v", res.State, res.Err)
	}
	want := "val x = 5 : int\nval it = 5 : int\nval it = 6 : int\n"
	if got := res.WireLines(); got != want {
		t.Fatalf("WireLines() = %q, want %q", got, want)
	}
}

func TestEmptyInputProducesEmptyOutput(t *testing.T) {
	s := newTestSession(t)
	res := s.Eval("<repl>", "")
	if res.State != Evaluated {
		t.Fatalf("state = %v, err = %v", res.State, res.Err)
	}
	if got := res.WireLines(); got != "" {
		t.Fatalf("WireLines() = %q, want empty", got)
	}
}

func TestLiteralExpressionExamples(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"1;", "val it = 1 : int\n"},
		{"~2;", "val it = -2 : int\n"},
		{"~10.25;", "val it = -10.25 : real\n"},
		{"2 + 3;", "val it = 5 : int\n"},
		{"let val x = 1 in x + 2 end;", "val it = 3 : int\n"},
		{"let val x = 1 in let val x = 2 in x * 3 end + x end;", "val it = 7 : int\n"},
	}
	for _, c := range cases {
		s := newTestSession(t)
		res := s.Eval("<repl>", c.src)
		if res.State != Evaluated {
			t.Fatalf("%s: state = %v, err = %v", c.src, res.State, res.Err)
		}
		if got := res.WireLines(); got != c.want {
			t.Fatalf("%s: WireLines() = %q, want %q", c.src, got, c.want)
		}
	}
}

func TestFailedStatementPreservesEarlierBindings(t *testing.T) {
	s := newTestSession(t)
	res := s.Eval("<repl>", "val x = 5;\nx + true;\n")
	if res.State != Failed {
		t.Fatalf("want Failed, got %v", res.State)
	}

	// x must still be visible to a later, independent Eval call: the
	// failing second statement never committed, but the first already
	// did.
	res2 := s.Eval("<repl>", "x;")
	if res2.State != Evaluated {
		t.Fatalf("state = %v, err = %v", res2.State, res2.Err)
	}
	if got := res2.WireLines(); got != "val it = 5 : int\n" {
		t.Fatalf("WireLines() = %q", got)
	}
}

func TestCatalogDatasetVisibleAsListOfRecords(t *testing.T) {
	cat := catalog.NewMemCatalog()
	// Schema/rows kept minimal: one field is enough to prove the
	// dataset resolves as a bound name of list-of-record type, not
	// that relational syntax can already query it end to end.
	cat.Add("Empties", emptyRecordSchema(), nil)

	s, err := NewSession(config.Default(), cat)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	res := s.Eval("<repl>", "length Empties;")
	if res.State != Evaluated {
		t.Fatalf("state = %v, err = %v", res.State, res.Err)
	}
	if got := res.WireLines(); got != "val it = 0 : int\n" {
		t.Fatalf("WireLines() = %q", got)
	}
}
