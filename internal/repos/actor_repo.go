package repos

import (
	"warehousebot/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ActorRepo struct{ DB *sqlx.DB }

func NewActorRepo(db *sqlx.DB) *ActorRepo { return &ActorRepo{DB: db} }

func (r *ActorRepo) ByID(id int64) (*domain.Actor, error) {
	var a domain.Actor
	err := r.DB.Get(&a, `SELECT actor_id,username,first_name,last_name,authenticated_at FROM authenticated_actors WHERE actor_id=?`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// Bind records a successful login, refreshing the profile on repeat logins.
func (r *ActorRepo) Bind(a domain.Actor) error {
	_, err := r.DB.Exec(`INSERT INTO authenticated_actors(actor_id,username,first_name,last_name,authenticated_at)
                          VALUES(?,?,?,?,?)
                          ON CONFLICT(actor_id) DO UPDATE SET
                            username=excluded.username, first_name=excluded.first_name,
                            last_name=excluded.last_name, authenticated_at=excluded.authenticated_at`,
		a.ID, a.Username, a.FirstName, a.LastName, a.AuthenticatedAt)
	return err
}

func (r *ActorRepo) Unbind(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM authenticated_actors WHERE actor_id=?`, id)
	return err
}
