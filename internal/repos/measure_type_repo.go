package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type MeasureTypeRepo struct{ db *sqlx.DB }

func NewMeasureTypeRepo(db *sqlx.DB) *MeasureTypeRepo { return &MeasureTypeRepo{db: db} }

func (r *MeasureTypeRepo) Create(code, name string, threshold decimal.Decimal, createdAt string) (int64, error) {
	th, err := quantity(threshold)
	if err != nil {
		return 0, err
	}
	res, err := r.db.Exec(`INSERT INTO measure_types(code,name,low_stock_threshold,created_at) VALUES(?,?,?,?)`,
		code, name, th, createdAt)
	if err != nil {
		return 0, conflict(err)
	}
	return res.LastInsertId()
}

func (r *MeasureTypeRepo) List() ([]domain.MeasureType, error) {
	out := []domain.MeasureType{}
	err := r.db.Select(&out, `SELECT id, code, name, low_stock_threshold, created_at FROM measure_types ORDER BY name`)
	return out, err
}

func (r *MeasureTypeRepo) Get(id int64) (domain.MeasureType, error) {
	var m domain.MeasureType
	err := r.db.Get(&m, `SELECT id, code, name, low_stock_threshold, created_at FROM measure_types WHERE id = ?`, id)
	return m, notFound(err)
}

// Update writes both mutable fields; callers pass the current value for the one they keep.
func (r *MeasureTypeRepo) Update(id int64, name string, threshold decimal.Decimal) error {
	th, err := quantity(threshold)
	if err != nil {
		return err
	}
	return mustAffect(r.db.Exec(`UPDATE measure_types SET name = ?, low_stock_threshold = ? WHERE id = ?`,
		name, th, id))
}

func (r *MeasureTypeRepo) Delete(id int64) ([]string, error) {
	return deleteCascade(r.db,
		`SELECT im.image_path FROM item_images im
		   JOIN items i ON i.id = im.item_id
		  WHERE i.measure_type_id = ?`,
		[]any{id},
		`DELETE FROM measure_types WHERE id = ?`, id)
}
