package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// exportHeader is the fixed column order of an export payload.
var exportHeader = []string{"id", "name", "unit", "category", "brand", "stock", "status", "image"}

// ExportCSV serializes the full catalog, ordered by ascending id. An empty
// store is a distinct outcome (ErrNoProducts), not an empty payload.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	products := []Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export products: %w", err)
	}

	if len(products) == 0 {
		return nil, ErrNoProducts
	}

	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, ","))
	b.WriteByte('\n')

	for _, p := range products {
		image := ""
		if p.Image != nil {
			image = *p.Image
		}
		fields := []string{
			strconv.FormatInt(p.ID, 10),
			escapeField(p.Name),
			escapeField(p.Unit),
			escapeField(p.Category),
			escapeField(p.Brand),
			strconv.Itoa(p.Stock),
			escapeField(p.Status),
			escapeField(image),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}

	return []byte(b.String()), nil
}

// ExportFilename names a download after the moment of export.
func ExportFilename() string {
	return fmt.Sprintf("products-%d.csv", time.Now().UnixMilli())
}

// escapeField quotes a value only when it contains a comma or a double
// quote, doubling internal quotes. Values without either are emitted
// verbatim, matching what the import side accepts.
func escapeField(v string) string {
	if !strings.ContainsAny(v, `,"`) {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
