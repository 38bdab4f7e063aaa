package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(code, name, createdAt string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO categories(code,name,created_at) VALUES(?,?,?)`, code, name, createdAt)
	if err != nil {
		return 0, conflict(err)
	}
	return res.LastInsertId()
}

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	err := r.db.Select(&out, `SELECT id, code, name, created_at FROM categories ORDER BY name`)
	return out, err
}

func (r *CategoryRepo) Get(id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `SELECT id, code, name, created_at FROM categories WHERE id = ?`, id)
	return c, notFound(err)
}

func (r *CategoryRepo) Rename(id int64, name string) error {
	return mustAffect(r.db.Exec(`UPDATE categories SET name = ? WHERE id = ?`, name, id))
}

// Delete removes the category, its subcategories and every item under either,
// returning the image paths whose rows went with them.
func (r *CategoryRepo) Delete(id int64) ([]string, error) {
	return deleteCascade(r.db,
		`SELECT im.image_path FROM item_images im
		   JOIN items i ON i.id = im.item_id
		  WHERE i.category_id = ?
		     OR i.subcategory_id IN (SELECT id FROM subcategories WHERE category_id = ?)`,
		[]any{id, id},
		`DELETE FROM categories WHERE id = ?`, id)
}

func (r *CategoryRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM categories`)
	return n, err
}

// deleteCascade collects image paths and deletes the parent row in one transaction.
// Child rows go through ON DELETE CASCADE; files are the caller's job after commit.
func deleteCascade(db *sqlx.DB, imagesQuery string, imagesArgs []any, deleteQuery string, id int64) ([]string, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	paths := []string{}
	if err := tx.Select(&paths, imagesQuery, imagesArgs...); err != nil {
		return nil, err
	}
	if err := mustAffect(tx.Exec(deleteQuery, id)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return paths, nil
}
