package domain

// Actor is a chat identity that has passed the operator password check.
type Actor struct {
	ID              int64  `db:"actor_id"`
	Username        string `db:"username"`
	FirstName       string `db:"first_name"`
	LastName        string `db:"last_name"`
	AuthenticatedAt string `db:"authenticated_at"`
}
