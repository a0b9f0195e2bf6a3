package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ledgerbot/internal/core"
)

func TestLoadDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if c.Len() != len(Default) {
		t.Fatalf("expected %d entries, got %d", len(Default), c.Len())
	}
	if p, ok := c.Lookup("שתל"); !ok || p != 500 {
		t.Fatalf("unexpected price for שתל: %d %v", p, ok)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	good := mustWrite("good.json", `[{"name":"כתר","price":300},{"name":"שתל","price":500}]`)
	c, err := Load(good)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	names := c.Names()
	if len(names) != 2 || names[0] != "כתר" || names[1] != "שתל" {
		t.Fatalf("unexpected names: %v", names)
	}

	dup := mustWrite("dup.json", `[{"name":"a","price":1},{"name":"a","price":2}]`)
	if _, err := Load(dup); !errors.Is(err, core.ErrDuplicateAction) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	for name, content := range map[string]string{
		"empty.json":  `[]`,
		"broken.json": `{"name":`,
		"object.json": `{"a": 1}`,
		"price0.json": `[{"name":"a","price":0}]`,
	} {
		if _, err := Load(mustWrite(name, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRepositoryCatalogFileParses(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "data", "catalog.json"))
	if err != nil {
		t.Fatalf("load data/catalog.json: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("catalog should not be empty")
	}
}
