package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type SubcategoryRepo struct{ db *sqlx.DB }

func NewSubcategoryRepo(db *sqlx.DB) *SubcategoryRepo { return &SubcategoryRepo{db: db} }

const subcategoryColumns = `
  s.id, s.code, s.name, s.category_id, c.name AS category_name, s.created_at
  FROM subcategories s
  JOIN categories c ON c.id = s.category_id`

func (r *SubcategoryRepo) Create(code, name string, categoryID int64, createdAt string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO subcategories(code,name,category_id,created_at) VALUES(?,?,?,?)`,
		code, name, categoryID, createdAt)
	if err != nil {
		return 0, conflict(err)
	}
	return res.LastInsertId()
}

func (r *SubcategoryRepo) List() ([]domain.Subcategory, error) {
	out := []domain.Subcategory{}
	err := r.db.Select(&out, `SELECT`+subcategoryColumns+` ORDER BY s.name`)
	return out, err
}

func (r *SubcategoryRepo) ListByCategory(categoryID int64) ([]domain.Subcategory, error) {
	out := []domain.Subcategory{}
	err := r.db.Select(&out, `SELECT`+subcategoryColumns+` WHERE s.category_id = ? ORDER BY s.name`, categoryID)
	return out, err
}

func (r *SubcategoryRepo) Get(id int64) (domain.Subcategory, error) {
	var s domain.Subcategory
	err := r.db.Get(&s, `SELECT`+subcategoryColumns+` WHERE s.id = ?`, id)
	return s, notFound(err)
}

func (r *SubcategoryRepo) Rename(id int64, name string) error {
	return mustAffect(r.db.Exec(`UPDATE subcategories SET name = ? WHERE id = ?`, name, id))
}

// Delete removes the subcategory and its items, returning their image paths.
func (r *SubcategoryRepo) Delete(id int64) ([]string, error) {
	return deleteCascade(r.db,
		`SELECT im.image_path FROM item_images im
		   JOIN items i ON i.id = im.item_id
		  WHERE i.subcategory_id = ?`,
		[]any{id},
		`DELETE FROM subcategories WHERE id = ?`, id)
}
