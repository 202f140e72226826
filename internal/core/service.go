package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/invtrack/invtrack/internal/database"
	"github.com/jmoiron/sqlx"
)

// productColumns is the stable select list matching the Product struct.
const productColumns = "id, name, unit, category, brand, stock, status, image, created_at, updated_at"

// Service implements the product store, the history ledger and the CSV
// pipelines over the injected store handle.
type Service struct {
	db *database.DB
}

// NewService creates a Service bound to the given store handle.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// ListProducts returns every product, newest id first.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	products := []Product{}
	err := s.db.SelectContext(ctx, &products,
		"SELECT "+productColumns+" FROM products ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// SearchProducts returns products whose name contains query, ordered by name.
// An empty query is rejected rather than returning the full catalog.
func (s *Service) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidArgument)
	}

	products := []Product{}
	err := s.db.SelectContext(ctx, &products,
		s.db.Rebind("SELECT "+productColumns+" FROM products WHERE name LIKE ? ORDER BY name"),
		"%"+query+"%")
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// CreateProduct validates the input, enforces case-insensitive name
// uniqueness and inserts the product. When initial stock is positive the
// opening history entry is written in the same transaction as the row.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	// Friendly pre-check; the unique index on LOWER(name) is the backstop.
	if _, err := s.findIDByName(ctx, in.Name, 0); err == nil {
		return nil, fmt.Errorf("create %q: %w", in.Name, ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create %q: duplicate check: %w", in.Name, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create %q: begin: %w", in.Name, err)
	}
	defer tx.Rollback() // No-op if already committed

	id, err := s.insertProductTx(ctx, tx, in, ActorAdmin, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create %q: %w", in.Name, ErrConflict)
		}
		return nil, fmt.Errorf("create %q: %w", in.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create %q: commit: %w", in.Name, err)
	}

	return s.getProduct(ctx, id)
}

// UpdateProduct overwrites all mutable fields of a product and refreshes
// updated_at. A stock change appends exactly one history entry, written in
// the same transaction as the row update. Supplying no image keeps the
// current one.
func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*Product, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	existing, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.findIDByName(ctx, in.Name, id); err == nil {
		return nil, fmt.Errorf("update %d: %w", id, ErrConflict)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %d: duplicate check: %w", id, err)
	}

	if in.Image == nil {
		in.Image = existing.Image
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update %d: begin: %w", id, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, s.db.Rebind(`
		UPDATE products
		SET name = ?, unit = ?, category = ?, brand = ?, stock = ?, status = ?, image = ?, updated_at = ?
		WHERE id = ?`),
		in.Name, in.Unit, in.Category, in.Brand, in.Stock, in.Status, in.Image, now, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("update %d: %w", id, ErrConflict)
		}
		return nil, fmt.Errorf("update %d: %w", id, err)
	}

	if existing.Stock != in.Stock {
		if err := s.recordChangeTx(ctx, tx, id, existing.Stock, in.Stock, ActorAdmin, now); err != nil {
			return nil, fmt.Errorf("update %d: history: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update %d: commit: %w", id, err)
	}

	return s.getProduct(ctx, id)
}

// DeleteProduct removes a product. Its history entries go with it via the
// foreign-key cascade.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (*DeleteResult, error) {
	if _, err := s.getProduct(ctx, id); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM products WHERE id = ?"), id); err != nil {
		return nil, fmt.Errorf("delete %d: %w", id, err)
	}

	return &DeleteResult{Success: true, Message: "Product deleted successfully"}, nil
}

// ProductHistory returns a product's stock transitions, newest first.
func (s *Service) ProductHistory(ctx context.Context, id int64) (*ProductHistory, error) {
	var name string
	err := s.db.GetContext(ctx, &name, s.db.Rebind("SELECT name FROM products WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("history %d: %w", id, err)
	}

	entries := []HistoryEntry{}
	err = s.db.SelectContext(ctx, &entries, s.db.Rebind(`
		SELECT id, product_id, old_quantity, new_quantity, change_date, user_info
		FROM inventory_history
		WHERE product_id = ?
		ORDER BY change_date DESC, id DESC`), id)
	if err != nil {
		return nil, fmt.Errorf("history %d: %w", id, err)
	}

	return &ProductHistory{Product: name, History: entries}, nil
}

// getProduct fetches one product by id.
func (s *Service) getProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := s.db.GetContext(ctx, &p,
		s.db.Rebind("SELECT "+productColumns+" FROM products WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("product %d: %w", id, err)
	}
	return &p, nil
}

// findIDByName looks up a product whose name matches under case folding,
// excluding excludeID (0 excludes nothing). Returns sql.ErrNoRows when the
// name is free.
func (s *Service) findIDByName(ctx context.Context, name string, excludeID int64) (int64, error) {
	var id int64
	query := "SELECT id FROM products WHERE LOWER(name) = LOWER(?)"
	args := []interface{}{name}
	if excludeID != 0 {
		query += " AND id != ?"
		args = append(args, excludeID)
	}
	err := s.db.GetContext(ctx, &id, s.db.Rebind(query), args...)
	return id, err
}

// insertProductTx inserts a product row and, when initial stock is positive,
// its opening history entry. Both writes share the caller's transaction so
// the row and its ledger entry land atomically.
func (s *Service) insertProductTx(ctx context.Context, tx *sqlx.Tx, in ProductInput, actor string, now time.Time) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO products (name, unit, category, brand, stock, status, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		in.Name, in.Unit, in.Category, in.Brand, in.Stock, in.Status, in.Image, now, now,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	if in.Stock > 0 {
		if err := s.recordChangeTx(ctx, tx, id, 0, in.Stock, actor, now); err != nil {
			return 0, err
		}
	}

	return id, nil
}

// recordChangeTx appends one history entry. Call sites only invoke this when
// the quantity actually changed; the ledger itself stays dumb.
func (s *Service) recordChangeTx(ctx context.Context, tx *sqlx.Tx, productID int64, oldQty, newQty int, actor string, now time.Time) error {
	_, err := tx.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO inventory_history (product_id, old_quantity, new_quantity, change_date, user_info)
		VALUES (?, ?, ?, ?, ?)`),
		productID, oldQty, newQty, now, actor)
	return err
}

// nowUTC is the single clock for persisted timestamps.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// normalize trims the input and validates required fields.
func (in *ProductInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Category = strings.TrimSpace(in.Category)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Status = strings.TrimSpace(in.Status)

	if in.Image != nil {
		img := strings.TrimSpace(*in.Image)
		if img == "" {
			in.Image = nil
		} else {
			in.Image = &img
		}
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"unit", in.Unit},
		{"category", in.Category},
		{"brand", in.Brand},
		{"status", in.Status},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidArgument, strings.Join(missing, ", "))
	}

	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be a non-negative integer", ErrInvalidArgument)
	}

	return nil
}
