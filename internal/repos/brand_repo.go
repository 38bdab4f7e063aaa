package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type BrandRepo struct{ db *sqlx.DB }

func NewBrandRepo(db *sqlx.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Create(code, name, createdAt string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO brands(code,name,created_at) VALUES(?,?,?)`, code, name, createdAt)
	if err != nil {
		return 0, conflict(err)
	}
	return res.LastInsertId()
}

func (r *BrandRepo) List() ([]domain.Brand, error) {
	out := []domain.Brand{}
	err := r.db.Select(&out, `SELECT id, code, name, created_at FROM brands ORDER BY name`)
	return out, err
}

func (r *BrandRepo) Get(id int64) (domain.Brand, error) {
	var b domain.Brand
	err := r.db.Get(&b, `SELECT id, code, name, created_at FROM brands WHERE id = ?`, id)
	return b, notFound(err)
}

func (r *BrandRepo) Rename(id int64, name string) error {
	return mustAffect(r.db.Exec(`UPDATE brands SET name = ? WHERE id = ?`, name, id))
}

func (r *BrandRepo) Delete(id int64) ([]string, error) {
	return deleteCascade(r.db,
		`SELECT im.image_path FROM item_images im
		   JOIN items i ON i.id = im.item_id
		  WHERE i.brand_id = ?`,
		[]any{id},
		`DELETE FROM brands WHERE id = ?`, id)
}

func (r *BrandRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM brands`)
	return n, err
}
