package state_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"warehousebot/internal/repos"
	"warehousebot/internal/state"
)

func sqlStore(t *testing.T) *state.SQLStore {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return state.NewSQLStore(db)
}

func badgerStore(t *testing.T) *state.BadgerStore {
	t.Helper()
	s, err := state.OpenBadger(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Every backend must behave the same.
func backends(t *testing.T) map[string]state.Store {
	return map[string]state.Store{"sqlite": sqlStore(t), "badger": badgerStore(t)}
}

func TestGetWithoutStateReturnsNone(t *testing.T) {
	for name, s := range backends(t) {
		st, p, err := s.Get(42)
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if st != state.None {
			t.Fatalf("%s: want None, got %q", name, st)
		}
		if p == nil || len(p) != 0 {
			t.Fatalf("%s: want empty payload, got %#v", name, p)
		}
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		p := state.Payload{}
		p.SetInt("category_id", 7)
		p.SetStr("name", "Hammer \"claw\" 16oz")
		p.SetDecimal("available_count", decimal.RequireFromString("2.5"))
		p.SetStr("description", "")

		if err := s.Set(1, "item.create.count", p); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		st, got, err := s.Get(1)
		if err != nil {
			t.Fatalf("%s: get: %v", name, err)
		}
		if st != "item.create.count" {
			t.Fatalf("%s: state = %q", name, st)
		}
		if !reflect.DeepEqual(got, p) {
			t.Fatalf("%s: payload = %#v, want %#v", name, got, p)
		}
		if id, ok := got.Int("category_id"); !ok || id != 7 {
			t.Fatalf("%s: category_id = %d, %v", name, id, ok)
		}
		if n, ok := got.Decimal("available_count"); !ok || !n.Equal(decimal.RequireFromString("2.5")) {
			t.Fatalf("%s: available_count = %s, %v", name, n, ok)
		}
	}
}

func TestSetOverwritesPreviousFlow(t *testing.T) {
	for name, s := range backends(t) {
		old := state.Payload{"name": "Old"}
		if err := s.Set(5, "brand.create.name", old); err != nil {
			t.Fatal(err)
		}
		if err := s.Set(5, "item.create.category", state.Payload{}); err != nil {
			t.Fatal(err)
		}
		st, p, err := s.Get(5)
		if err != nil {
			t.Fatal(err)
		}
		if st != "item.create.category" || len(p) != 0 {
			t.Fatalf("%s: got %q %#v", name, st, p)
		}
	}
}

func TestClearThenGetAndClearTwice(t *testing.T) {
	for name, s := range backends(t) {
		if err := s.Set(9, "category.create.name", state.Payload{}); err != nil {
			t.Fatal(err)
		}
		if err := s.Clear(9); err != nil {
			t.Fatalf("%s: clear: %v", name, err)
		}
		st, _, err := s.Get(9)
		if err != nil || st != state.None {
			t.Fatalf("%s: after clear got %q, %v", name, st, err)
		}
		// Clearing an actor with nothing stored is not an error.
		if err := s.Clear(9); err != nil {
			t.Fatalf("%s: second clear: %v", name, err)
		}
		if err := s.Clear(10); err != nil {
			t.Fatalf("%s: clear unknown: %v", name, err)
		}
	}
}

func TestActorsAreIndependent(t *testing.T) {
	for name, s := range backends(t) {
		_ = s.Set(1, "brand.create.name", state.Payload{"a": "1"})
		_ = s.Set(2, "category.create.name", state.Payload{"b": "2"})
		_ = s.Clear(1)
		st, p, _ := s.Get(2)
		if st != "category.create.name" || p["b"] != "2" {
			t.Fatalf("%s: actor 2 disturbed: %q %#v", name, st, p)
		}
	}
}

func TestSQLStoreStale(t *testing.T) {
	s := sqlStore(t)
	if err := s.Set(3, "item.search", nil); err != nil {
		t.Fatal(err)
	}
	ids, err := s.Stale(time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 3 {
		t.Fatalf("stale = %v", ids)
	}
	ids, err = s.Stale(time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("nothing should be stale yet, got %v", ids)
	}
}

func TestBadgerStoreTTL(t *testing.T) {
	s, err := state.OpenBadger("", 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Set(1, "item.create.name", state.Payload{"x": "y"}); err != nil {
		t.Fatal(err)
	}
	if st, _, _ := s.Get(1); st != "item.create.name" {
		t.Fatalf("state lost before expiry: %q", st)
	}
	time.Sleep(3 * time.Second)
	st, p, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if st != state.None || len(p) != 0 {
		t.Fatalf("expired flow still present: %q %#v", st, p)
	}
}
