package state

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps state in the conversation_states table of the main store.
type SQLStore struct{ db *sqlx.DB }

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Get(actor int64) (Name, Payload, error) {
	var row struct {
		State   sql.NullString `db:"state"`
		Payload string         `db:"payload"`
	}
	err := s.db.Get(&row, `SELECT state, payload FROM conversation_states WHERE actor_id = ?`, actor)
	if errors.Is(err, sql.ErrNoRows) {
		return None, Payload{}, nil
	}
	if err != nil {
		return None, Payload{}, err
	}
	p, err := decode([]byte(row.Payload))
	if err != nil {
		return None, Payload{}, err
	}
	return Name(row.State.String), p, nil
}

func (s *SQLStore) Set(actor int64, name Name, p Payload) error {
	b, err := encode(p)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO conversation_states(actor_id, state, payload, updated_at)
		VALUES (?, NULLIF(?,''), ?, ?)
		ON CONFLICT(actor_id) DO UPDATE SET
		  state = excluded.state, payload = excluded.payload, updated_at = excluded.updated_at
	`, actor, string(name), string(b), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *SQLStore) Clear(actor int64) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE actor_id = ?`, actor)
	return err
}

// Stale lists actors whose flow has not moved since before cutoff.
func (s *SQLStore) Stale(cutoff time.Time) ([]int64, error) {
	ids := []int64{}
	err := s.db.Select(&ids, `SELECT actor_id FROM conversation_states WHERE updated_at < ? ORDER BY actor_id`,
		cutoff.UTC().Format(time.RFC3339))
	return ids, err
}
