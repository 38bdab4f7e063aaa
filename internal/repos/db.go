package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"warehousebot/internal/domain"
	"warehousebot/internal/validate"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: sqlite serializes writers anyway, pragmas are per connection,
	// and ":memory:" databases are per connection too.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;
PRAGMA busy_timeout = 5000;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);

-- Subcategories
CREATE TABLE IF NOT EXISTS subcategories(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_subcategories_category ON subcategories(category_id);

-- Brands
CREATE TABLE IF NOT EXISTS brands(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);

-- Measure types
CREATE TABLE IF NOT EXISTS measure_types(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  low_stock_threshold REAL NOT NULL DEFAULT 0 CHECK (low_stock_threshold >= 0),
  created_at TEXT NOT NULL
);

-- Items
CREATE TABLE IF NOT EXISTS items(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  code TEXT NOT NULL UNIQUE,
  custom_code TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  subcategory_id INTEGER NOT NULL REFERENCES subcategories(id) ON DELETE CASCADE,
  brand_id INTEGER NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  measure_type_id INTEGER NOT NULL REFERENCES measure_types(id) ON DELETE CASCADE,
  available_count REAL NOT NULL DEFAULT 0 CHECK (available_count >= 0),
  video_url TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_category    ON items(category_id);
CREATE INDEX IF NOT EXISTS idx_items_subcategory ON items(subcategory_id);
CREATE INDEX IF NOT EXISTS idx_items_brand       ON items(brand_id);
CREATE INDEX IF NOT EXISTS idx_items_measure     ON items(measure_type_id);
CREATE INDEX IF NOT EXISTS idx_items_created_at  ON items(created_at);

-- Item images
CREATE TABLE IF NOT EXISTS item_images(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
  image_path TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_item_images_item ON item_images(item_id);

-- Conversation state, one row per actor
CREATE TABLE IF NOT EXISTS conversation_states(
  actor_id INTEGER PRIMARY KEY,
  state TEXT,
  payload TEXT NOT NULL DEFAULT '{}',
  updated_at TEXT
);

-- Actors that passed the password check
CREATE TABLE IF NOT EXISTS authenticated_actors(
  actor_id INTEGER PRIMARY KEY,
  username TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  authenticated_at TEXT NOT NULL
);
`
	_, err := db.Exec(schema)
	return err
}

// SeedDemo inserts a small reference catalog if the store is empty.
func SeedDemo(db *sqlx.DB, stamp string) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/brands/measure types")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`INSERT INTO categories(id,code,name,created_at) VALUES
		  (1,'CAT000001','Tools',?),
		  (2,'CAT000002','Electrical',?)`,
		`INSERT INTO subcategories(id,code,name,category_id,created_at) VALUES
		  (1,'SUB000001','Hand Tools',1,?),
		  (2,'SUB000002','Cables',2,?)`,
		`INSERT INTO brands(id,code,name,created_at) VALUES
		  (1,'BRD000001','Acme',?),
		  (2,'BRD000002','Volt',?)`,
		`INSERT INTO measure_types(id,code,name,low_stock_threshold,created_at) VALUES
		  (1,'MSR000001','pcs',5,?),
		  (2,'MSR000002','m',20,?)`,
	}
	for _, s := range stmts {
		if _, err := tx.Exec(s, stamp, stamp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// notFound maps sql.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// conflict maps a UNIQUE violation to domain.ErrConflict.
func conflict(err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

// mustAffect turns a zero-row write into domain.ErrNotFound.
func mustAffect(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// quantity converts a quantity for a REAL column. A value that would not scan
// back into a decimal is refused here rather than stored.
func quantity(d decimal.Decimal) (float64, error) {
	if !validate.Quantity(d) {
		return 0, fmt.Errorf("%w: quantity out of range", domain.ErrValidation)
	}
	return d.InexactFloat64(), nil
}
