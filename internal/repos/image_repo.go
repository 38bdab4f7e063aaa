package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ImageRepo struct{ db *sqlx.DB }

func NewImageRepo(db *sqlx.DB) *ImageRepo { return &ImageRepo{db: db} }

func (r *ImageRepo) Add(itemID int64, path, createdAt string) (int64, error) {
	res, err := r.db.Exec(`INSERT INTO item_images(item_id,image_path,created_at) VALUES(?,?,?)`, itemID, path, createdAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *ImageRepo) ListByItem(itemID int64) ([]domain.ItemImage, error) {
	out := []domain.ItemImage{}
	err := r.db.Select(&out, `SELECT id, item_id, image_path, created_at FROM item_images WHERE item_id = ? ORDER BY id`, itemID)
	return out, err
}

func (r *ImageRepo) CountByItem(itemID int64) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM item_images WHERE item_id = ?`, itemID)
	return n, err
}

// Delete removes one image row of the item and returns its path.
func (r *ImageRepo) Delete(itemID, id int64) (string, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var path string
	if err := tx.Get(&path, `SELECT image_path FROM item_images WHERE id = ? AND item_id = ?`, id, itemID); err != nil {
		return "", notFound(err)
	}
	if _, err := tx.Exec(`DELETE FROM item_images WHERE id = ?`, id); err != nil {
		return "", err
	}
	return path, tx.Commit()
}
