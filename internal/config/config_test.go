package config

import "testing"

func TestSetHybrid(t *testing.T) {
	c := Default()
	if c.Hybrid {
		t.Fatalf("default Hybrid = true, want false")
	}
	if err := c.Set("hybrid", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !c.Hybrid {
		t.Fatalf("Hybrid not set")
	}
}

func TestSetUnknownKeyRejected(t *testing.T) {
	c := Default()
	if err := c.Set("bogus", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}

func TestSetHybridBadValue(t *testing.T) {
	c := Default()
	if err := c.Set("hybrid", "yes"); err == nil {
		t.Fatalf("expected error for non-bool value")
	}
}

func TestParseYAML(t *testing.T) {
	c, err := Parse([]byte("hybrid: true\ncatalog_dsn: test.db\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !c.Hybrid || c.CatalogDSN != "test.db" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseYAMLUnknownField(t *testing.T) {
	_, err := Parse([]byte("hybrd: true\n"))
	if err == nil {
		t.Fatalf("expected error for unknown yaml field")
	}
}
