// Package core provides the business logic for the inventory tracker: the
// product store, the stock-change history ledger and the CSV import/export
// pipelines.
package core

import "time"

// Stock status conventions. The store does not derive status from stock;
// callers (UI, import defaults, seed) set it, so the two can legitimately
// disagree.
const (
	StatusInStock    = "In Stock"
	StatusOutOfStock = "Out of Stock"
)

// Actors recorded in history entries.
const (
	ActorAdmin  = "System Admin"
	ActorImport = "CSV Import"
)

// Product is a catalog item. Field names are the wire contract consumed by
// the frontend and must not change.
type Product struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Unit      string    `db:"unit" json:"unit"`
	Category  string    `db:"category" json:"category"`
	Brand     string    `db:"brand" json:"brand"`
	Stock     int       `db:"stock" json:"stock"`
	Status    string    `db:"status" json:"status"`
	Image     *string   `db:"image" json:"image"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HistoryEntry is one immutable stock transition. Entries are only ever
// appended; the single deletion path is the cascade when the product goes.
type HistoryEntry struct {
	ID          int64     `db:"id" json:"id"`
	ProductID   int64     `db:"product_id" json:"product_id"`
	OldQuantity int       `db:"old_quantity" json:"old_quantity"`
	NewQuantity int       `db:"new_quantity" json:"new_quantity"`
	ChangeDate  time.Time `db:"change_date" json:"change_date"`
	UserInfo    string    `db:"user_info" json:"user_info"`
}

// ProductHistory is the history lookup response: the product's name plus its
// entries, newest first.
type ProductHistory struct {
	Product string         `json:"product"`
	History []HistoryEntry `json:"history"`
}

// ProductInput carries the mutable fields for create and update.
type ProductInput struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Stock    int     `json:"stock"`
	Status   string  `json:"status"`
	Image    *string `json:"image"`
}

// ImportSummary reconciles one import batch. It is always fully populated,
// even when individual rows failed partway.
type ImportSummary struct {
	Success    bool     `json:"success"`
	Added      int      `json:"added"`
	Skipped    int      `json:"skipped"`
	Duplicates []string `json:"duplicates"`
	Total      int      `json:"total"`
}

// DeleteResult acknowledges a successful delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
