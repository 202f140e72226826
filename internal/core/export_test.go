package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExportCSV_EmptyStore(t *testing.T) {
	s := newTestService(t)

	_, err := s.ExportCSV(context.Background())
	if !errors.Is(err, ErrNoProducts) {
		t.Errorf("ExportCSV() error = %v, want ErrNoProducts", err)
	}
}

func TestExportCSV_AscendingByID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Zebra", "Apple", "Mango"} {
		if _, err := s.CreateProduct(ctx, testInput(name, 1)); err != nil {
			t.Fatalf("CreateProduct(%s) error = %v", name, err)
		}
	}

	payload, err := s.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(payload), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %d, want header + 3 rows", len(lines))
	}
	if lines[0] != "id,name,unit,category,brand,stock,status,image" {
		t.Errorf("header = %q", lines[0])
	}

	// Insertion order, not alphabetical
	for i, name := range []string{"Zebra", "Apple", "Mango"} {
		if !strings.Contains(lines[i+1], ","+name+",") {
			t.Errorf("row %d = %q, want name %q", i+1, lines[i+1], name)
		}
	}
}

func TestExportCSV_Escaping(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	in := testInput(`Cable, 2m "heavy"`, 3)
	if _, err := s.CreateProduct(ctx, in); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	payload, err := s.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	want := `"Cable, 2m ""heavy"""`
	if !strings.Contains(string(payload), want) {
		t.Errorf("payload = %q, want escaped name %q", payload, want)
	}
}

func TestExportCSV_PlainValuesUnquoted(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	if _, err := s.CreateProduct(ctx, testInput("Mouse", 3)); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}

	payload, err := s.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if bytes.ContainsRune(payload, '"') {
		t.Errorf("payload = %q, plain values should not be quoted", payload)
	}
}

// An export fed back through import reproduces the catalog in a fresh store.
func TestExportImportRoundTrip(t *testing.T) {
	src := newTestService(t)
	ctx := context.Background()

	names := []string{`Cable, 2m`, `Widget "Pro"`, "Mouse"}
	for i, name := range names {
		if _, err := src.CreateProduct(ctx, testInput(name, i+1)); err != nil {
			t.Fatalf("CreateProduct(%s) error = %v", name, err)
		}
	}

	payload, err := src.ExportCSV(ctx)
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	dst := newTestService(t)
	summary, err := dst.Import(ctx, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if summary.Added != len(names) || summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want added=%d skipped=0", summary, len(names))
	}

	got, err := dst.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if len(got) != len(names) {
		t.Fatalf("products = %d, want %d", len(got), len(names))
	}

	byName := make(map[string]Product, len(got))
	for _, p := range got {
		byName[p.Name] = p
	}
	for i, name := range names {
		p, ok := byName[name]
		if !ok {
			t.Errorf("product %q missing after round trip", name)
			continue
		}
		if p.Stock != i+1 {
			t.Errorf("%q stock = %d, want %d", name, p.Stock, i+1)
		}
	}
}

func TestExportFilename(t *testing.T) {
	name := ExportFilename()
	if !strings.HasPrefix(name, "products-") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("ExportFilename() = %q, want products-<ms>.csv", name)
	}
}

func TestEscapeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"has space", "has space"},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{`both, "here"`, `"both, ""here"""`},
	}

	for _, tt := range tests {
		if got := escapeField(tt.in); got != tt.want {
			t.Errorf("escapeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
