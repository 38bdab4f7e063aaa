package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db *sqlx.DB }

func NewInventoryRepo(db *sqlx.DB) *InventoryRepo { return &InventoryRepo{db: db} }

// LowStock returns every item at or below its measure type threshold,
// lowest count first. Always read live; nothing here is cached.
func (r *InventoryRepo) LowStock() ([]domain.ItemDetail, error) {
	out := []domain.ItemDetail{}
	err := r.db.Select(&out, itemDetailSelect+`
	  WHERE i.available_count <= m.low_stock_threshold
	  ORDER BY i.available_count ASC, i.name`)
	return out, err
}

// Stats counts items, categories, brands and low-stock items in one read.
func (r *InventoryRepo) Stats() (domain.Stats, error) {
	var s domain.Stats
	err := r.db.Get(&s, `
		SELECT
		  (SELECT COUNT(*) FROM items)         AS total_items,
		  (SELECT COUNT(*) FROM categories)    AS total_categories,
		  (SELECT COUNT(*) FROM brands)        AS total_brands,
		  (SELECT COUNT(*) FROM items i
		     JOIN measure_types m ON m.id = i.measure_type_id
		    WHERE i.available_count <= m.low_stock_threshold) AS low_stock_items
	`)
	return s, err
}
