// Package config holds the session-scoped property table of spec §6
// ("Configuration"): a small set of named properties, settable
// individually or loaded in bulk from YAML, that reject an unknown
// property name at set-time rather than silently ignoring it.
//
// Grounded on the teacher's internal/config (a package of constant
// tables a session consults by name) and internal/ext/config.go (the
// yaml.v3-driven Load/Parse/validate split) — generalised here from a
// build-time dependency manifest to a runtime property table, since
// this module has no ext-binding system for the teacher's package to
// otherwise serve.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is one session's property table. Hybrid mirrors spec §6's
// HYBRID: when true, internal/session runs the relational.Program
// optimization pass before compiling; when false (the default) a
// session's relational comprehensions compile and evaluate exactly as
// lowered, with no relationalizer rewrite.
type Config struct {
	Hybrid bool `yaml:"hybrid"`
	// CatalogDSN names a sqlcatalog data source (e.g. a SQLite file
	// path) a session should open as its ExternalCatalog. Empty means
	// no external catalog: dataset identifiers resolve as ordinary
	// unbound names.
	CatalogDSN string `yaml:"catalog_dsn"`
}

// Default returns a Config with every property at its spec-mandated
// default (HYBRID false, no catalog).
func Default() Config {
	return Config{}
}

// knownKeys lists every property name recognized by Set and by the
// yaml decoder's strict mode — the same list, so a YAML file and a
// single Set call reject exactly the same typos.
var knownKeys = map[string]bool{
	"hybrid":      true,
	"catalog_dsn": true,
}

// Set assigns one property by name, rejecting an unknown key as spec
// §6 requires ("unknown properties are rejected at set-time") rather
// than silently adding it.
func (c *Config) Set(key, value string) error {
	if !knownKeys[key] {
		return fmt.Errorf("config: unknown property %q", key)
	}
	switch key {
	case "hybrid":
		switch value {
		case "true":
			c.Hybrid = true
		case "false":
			c.Hybrid = false
		default:
			return fmt.Errorf("config: hybrid expects true or false, got %q", value)
		}
	case "catalog_dsn":
		c.CatalogDSN = value
	}
	return nil
}

// Load reads a YAML config file from path. Decoding runs in strict
// mode (yaml.v3's KnownFields), so a key absent from Config's own
// field tags is rejected the same as an unknown Set key.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML content into a Config, rejecting any field name
// not present in Config's own struct tags.
func Parse(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	return c, nil
}
