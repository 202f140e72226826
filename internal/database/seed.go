package database

import (
	"context"
	"fmt"
	"time"
)

// seedActor marks history entries written by the sample-data seed.
const seedActor = "Initial Data"

type seedProduct struct {
	name     string
	unit     string
	category string
	brand    string
	stock    int
	status   string
}

// sampleProducts is the starter catalog inserted into an empty store.
var sampleProducts = []seedProduct{
	{"Wireless Mouse", "pcs", "Electronics", "Logitech", 50, "In Stock"},
	{"Mechanical Keyboard", "pcs", "Electronics", "Corsair", 25, "In Stock"},
	{"USB-C Hub", "pcs", "Electronics", "Anker", 40, "In Stock"},
	{"Laptop Stand", "pcs", "Accessories", "Rain Design", 15, "In Stock"},
	{"Desk Lamp", "pcs", "Furniture", "IKEA", 30, "In Stock"},
	{"Office Chair", "pcs", "Furniture", "Herman Miller", 8, "In Stock"},
	{"Monitor 27 inch", "pcs", "Electronics", "Dell", 12, "In Stock"},
	{"Webcam HD", "pcs", "Electronics", "Logitech", 0, "Out of Stock"},
	{"Notebook A4", "pcs", "Stationery", "Moleskine", 150, "In Stock"},
	{"Pen Set", "pcs", "Stationery", "Parker", 80, "In Stock"},
	{"Coffee Maker", "pcs", "Appliances", "Breville", 5, "In Stock"},
	{"Water Bottle", "pcs", "Accessories", "Hydro Flask", 45, "In Stock"},
	{"Headphones Wireless", "pcs", "Electronics", "Sony", 0, "Out of Stock"},
	{"Desk Organizer", "pcs", "Accessories", "Umbra", 35, "In Stock"},
	{"Portable SSD 1TB", "pcs", "Electronics", "Samsung", 20, "In Stock"},
}

// Seed inserts the sample catalog if the products table is empty.
// Products with initial stock get a history entry attributed to the seed, so
// the audit trail starts consistent. Returns the number of products inserted.
func (db *DB) Seed(ctx context.Context) (int, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM products"); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback() // No-op if already committed

	now := time.Now().UTC()
	insertProduct := db.Rebind(`
		INSERT INTO products (name, unit, category, brand, stock, status, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?, ?) RETURNING id`)
	insertHistory := db.Rebind(`
		INSERT INTO inventory_history (product_id, old_quantity, new_quantity, change_date, user_info)
		VALUES (?, ?, ?, ?, ?)`)

	for _, p := range sampleProducts {
		var id int64
		err := tx.QueryRowxContext(ctx, insertProduct,
			p.name, p.unit, p.category, p.brand, p.stock, p.status, now, now,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("seed product %q: %w", p.name, err)
		}

		if p.stock > 0 {
			if _, err := tx.ExecContext(ctx, insertHistory, id, 0, p.stock, now, seedActor); err != nil {
				return 0, fmt.Errorf("seed history for %q: %w", p.name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed transaction: %w", err)
	}

	return len(sampleProducts), nil
}
