package repos

import (
	"strings"

	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ItemRepo struct{ db *sqlx.DB }

func NewItemRepo(db *sqlx.DB) *ItemRepo { return &ItemRepo{db: db} }

// itemDetailSelect joins an item to all four of its references.
const itemDetailSelect = `
  SELECT
    i.id, i.code, i.custom_code, i.name, COALESCE(i.description,'') AS description,
    i.category_id, c.name AS category_name,
    i.subcategory_id, s.name AS subcategory_name,
    i.brand_id, b.name AS brand_name,
    i.measure_type_id, m.name AS measure_type_name, m.low_stock_threshold,
    i.available_count, COALESCE(i.video_url,'') AS video_url,
    i.created_at, i.updated_at
  FROM items i
  JOIN categories c    ON c.id = i.category_id
  JOIN subcategories s ON s.id = i.subcategory_id
  JOIN brands b        ON b.id = i.brand_id
  JOIN measure_types m ON m.id = i.measure_type_id`

func (r *ItemRepo) Create(code string, d domain.ItemDraft, stamp string) (int64, error) {
	count, err := quantity(d.AvailableCount)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(`
	  INSERT INTO items
	    (code, custom_code, name, description, category_id, subcategory_id, brand_id, measure_type_id,
	     available_count, video_url, created_at, updated_at)
	  VALUES
	    (?, ?, ?, NULLIF(?,''), ?, ?, ?, ?, ?, NULLIF(?,''), ?, ?)
	`, code, d.CustomCode, d.Name, d.Description, d.CategoryID, d.SubcategoryID, d.BrandID, d.MeasureTypeID,
		count, d.VideoURL, stamp, stamp)
	if err != nil {
		return 0, conflict(err)
	}
	return res.LastInsertId()
}

func (r *ItemRepo) Get(id int64) (domain.ItemDetail, error) {
	var it domain.ItemDetail
	err := r.db.Get(&it, itemDetailSelect+` WHERE i.id = ?`, id)
	return it, notFound(err)
}

func (r *ItemRepo) List(limit, offset int) ([]domain.ItemDetail, error) {
	out := []domain.ItemDetail{}
	err := r.db.Select(&out, itemDetailSelect+`
	  ORDER BY i.created_at DESC, i.id DESC
	  LIMIT ? OFFSET ?`, limit, offset)
	return out, err
}

func (r *ItemRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM items`)
	return n, err
}

// Search matches q against name, custom code and description, case-insensitively.
func (r *ItemRepo) Search(q string) ([]domain.ItemDetail, error) {
	like := "%" + strings.ToLower(q) + "%"
	out := []domain.ItemDetail{}
	err := r.db.Select(&out, itemDetailSelect+`
	  WHERE LOWER(i.name) LIKE ? OR LOWER(i.custom_code) LIKE ? OR LOWER(COALESCE(i.description,'')) LIKE ?
	  ORDER BY i.name`, like, like, like)
	return out, err
}

func (r *ItemRepo) ListByBrand(brandID int64) ([]domain.ItemDetail, error) {
	out := []domain.ItemDetail{}
	err := r.db.Select(&out, itemDetailSelect+` WHERE i.brand_id = ? ORDER BY i.name`, brandID)
	return out, err
}

func (r *ItemRepo) ListBySubcategory(subcategoryID int64) ([]domain.ItemDetail, error) {
	out := []domain.ItemDetail{}
	err := r.db.Select(&out, itemDetailSelect+` WHERE i.subcategory_id = ? ORDER BY i.name`, subcategoryID)
	return out, err
}

// Update writes the complete record. There is no partial-column update.
func (r *ItemRepo) Update(it domain.Item) error {
	count, err := quantity(it.AvailableCount)
	if err != nil {
		return err
	}
	return mustAffect(r.db.Exec(`
	  UPDATE items SET
	    name = ?, custom_code = ?, description = NULLIF(?,''),
	    category_id = ?, subcategory_id = ?, brand_id = ?, measure_type_id = ?,
	    available_count = ?, video_url = NULLIF(?,''), updated_at = ?
	  WHERE id = ?
	`, it.Name, it.CustomCode, it.Description,
		it.CategoryID, it.SubcategoryID, it.BrandID, it.MeasureTypeID,
		count, it.VideoURL, it.UpdatedAt, it.ID))
}

// Delete removes the item and its image rows, returning the image paths.
func (r *ItemRepo) Delete(id int64) ([]string, error) {
	return deleteCascade(r.db,
		`SELECT image_path FROM item_images WHERE item_id = ?`,
		[]any{id},
		`DELETE FROM items WHERE id = ?`, id)
}
