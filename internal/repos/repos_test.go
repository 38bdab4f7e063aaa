package repos_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"warehousebot/internal/domain"
	"warehousebot/internal/repos"
)

const stamp = "2025/01/02 10:00:00"

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedDemo(db, stamp); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func addItem(t *testing.T, db *sqlx.DB, code string, cat, sub, brand, measure int64, count string) int64 {
	t.Helper()
	id, err := repos.NewItemRepo(db).Create(code, domain.ItemDraft{
		Name: "Item " + code, CustomCode: "C-" + code,
		CategoryID: cat, SubcategoryID: sub, BrandID: brand, MeasureTypeID: measure,
		AvailableCount: decimal.RequireFromString(count),
	}, stamp)
	if err != nil {
		t.Fatalf("create item %s: %v", code, err)
	}
	return id
}

func TestItemGetJoinsAllReferences(t *testing.T) {
	db := memdb(t)
	id := addItem(t, db, "ITM000001", 1, 1, 1, 1, "3")
	it, err := repos.NewItemRepo(db).Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if it.CategoryName != "Tools" || it.SubcategoryName != "Hand Tools" || it.BrandName != "Acme" || it.MeasureTypeName != "pcs" {
		t.Fatalf("names not joined: %+v", it)
	}
	if !it.AvailableCount.Equal(decimal.NewFromInt(3)) || !it.LowStockThreshold.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("quantities: %s / %s", it.AvailableCount, it.LowStockThreshold)
	}
	if it.Description != "" || it.VideoURL != "" {
		t.Fatalf("optional fields should read back empty: %+v", it)
	}
}

func TestCategoryDeleteCascades(t *testing.T) {
	db := memdb(t)
	subs := repos.NewSubcategoryRepo(db)
	extra, err := subs.Create("SUB000099", "Power Tools", 1, stamp)
	if err != nil {
		t.Fatal(err)
	}
	a := addItem(t, db, "ITM000001", 1, 1, 1, 1, "3")
	b := addItem(t, db, "ITM000002", 1, extra, 2, 1, "9")
	other := addItem(t, db, "ITM000003", 2, 2, 2, 2, "50")
	images := repos.NewImageRepo(db)
	if _, err := images.Add(a, "item_a.jpg", stamp); err != nil {
		t.Fatal(err)
	}
	if _, err := images.Add(b, "item_b.jpg", stamp); err != nil {
		t.Fatal(err)
	}

	paths, err := repos.NewCategoryRepo(db).Delete(1)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("want 2 image paths back, got %v", paths)
	}

	items := repos.NewItemRepo(db)
	for _, id := range []int64{a, b} {
		if _, err := items.Get(id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("item %d should be gone, err=%v", id, err)
		}
	}
	for _, id := range []int64{1, extra} {
		if _, err := subs.Get(id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("subcategory %d should be gone, err=%v", id, err)
		}
	}
	var left int
	if err := db.Get(&left, `SELECT COUNT(*) FROM item_images`); err != nil {
		t.Fatal(err)
	}
	if left != 0 {
		t.Fatalf("image rows left: %d", left)
	}
	if _, err := items.Get(other); err != nil {
		t.Fatalf("item in another category was touched: %v", err)
	}
}

func TestBrandAndMeasureDeleteCascadeToItems(t *testing.T) {
	db := memdb(t)
	a := addItem(t, db, "ITM000001", 1, 1, 1, 1, "3")
	b := addItem(t, db, "ITM000002", 2, 2, 2, 2, "3")
	if _, err := repos.NewBrandRepo(db).Delete(1); err != nil {
		t.Fatal(err)
	}
	if _, err := repos.NewMeasureTypeRepo(db).Delete(2); err != nil {
		t.Fatal(err)
	}
	items := repos.NewItemRepo(db)
	for _, id := range []int64{a, b} {
		if _, err := items.Get(id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("item %d should be gone, err=%v", id, err)
		}
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	db := memdb(t)
	if _, err := repos.NewCategoryRepo(db).Delete(999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := repos.NewImageRepo(db).Delete(1, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := repos.NewBrandRepo(db).Rename(999, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDuplicateCodeIsConflict(t *testing.T) {
	db := memdb(t)
	_, err := repos.NewCategoryRepo(db).Create("CAT000001", "Again", stamp)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestLowStockBoundary(t *testing.T) {
	db := memdb(t)
	below := addItem(t, db, "ITM000001", 1, 1, 1, 1, "3")   // pcs threshold 5
	equal := addItem(t, db, "ITM000002", 1, 1, 1, 1, "5")   // == threshold
	above := addItem(t, db, "ITM000003", 1, 1, 1, 1, "5.5") // just above
	cable := addItem(t, db, "ITM000004", 2, 2, 2, 2, "20")  // m threshold 20

	got, err := repos.NewInventoryRepo(db).LowStock()
	if err != nil {
		t.Fatal(err)
	}
	ids := map[int64]bool{}
	for _, it := range got {
		ids[it.ID] = true
	}
	if !ids[below] || !ids[equal] || !ids[cable] {
		t.Fatalf("missing low-stock items: %v", ids)
	}
	if ids[above] {
		t.Fatalf("item above threshold listed")
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].AvailableCount.GreaterThan(got[i].AvailableCount) {
			t.Fatalf("not ordered by count: %s before %s", got[i-1].AvailableCount, got[i].AvailableCount)
		}
	}

	stats, err := repos.NewInventoryRepo(db).Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalItems != 4 || stats.LowStockItems != 3 || stats.TotalCategories != 2 || stats.TotalBrands != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestItemUpdateWritesFullRecord(t *testing.T) {
	db := memdb(t)
	items := repos.NewItemRepo(db)
	id := addItem(t, db, "ITM000001", 1, 1, 1, 1, "10")
	cur, err := items.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	it := cur.Item
	it.Description = "steel"
	it.UpdatedAt = "2025/01/03 09:00:00"
	if err := items.Update(it); err != nil {
		t.Fatal(err)
	}
	got, _ := items.Get(id)
	if got.Description != "steel" || got.Name != cur.Name || got.CreatedAt != cur.CreatedAt || got.UpdatedAt != it.UpdatedAt {
		t.Fatalf("update mismatch: %+v", got)
	}
}

func TestSearchMatchesNameCodeDescription(t *testing.T) {
	db := memdb(t)
	id := addItem(t, db, "ITM000001", 1, 1, 1, 1, "1")
	_ = addItem(t, db, "ITM000002", 2, 2, 2, 2, "1")
	for _, q := range []string{"itm000001", "C-ITM000001"} {
		got, err := repos.NewItemRepo(db).Search(q)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != id {
			t.Fatalf("search %q = %+v", q, got)
		}
	}
}

func TestActorBindUnbind(t *testing.T) {
	db := memdb(t)
	actors := repos.NewActorRepo(db)
	if _, err := actors.ByID(7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := actors.Bind(domain.Actor{ID: 7, Username: "op", AuthenticatedAt: stamp}); err != nil {
		t.Fatal(err)
	}
	if err := actors.Bind(domain.Actor{ID: 7, Username: "op2", AuthenticatedAt: stamp}); err != nil {
		t.Fatal(err)
	}
	a, err := actors.ByID(7)
	if err != nil || a.Username != "op2" {
		t.Fatalf("got %+v, %v", a, err)
	}
	if err := actors.Unbind(7); err != nil {
		t.Fatal(err)
	}
	if _, err := actors.ByID(7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound after unbind, got %v", err)
	}
}

func TestOversizedQuantityIsNotStored(t *testing.T) {
	db := memdb(t)
	items := repos.NewItemRepo(db)
	id := addItem(t, db, "ITM000009", 1, 1, 1, 1, "2")
	it, err := items.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	it.AvailableCount = decimal.New(1, 400)
	if err := items.Update(it.Item); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("update: %v", err)
	}
	if _, err := repos.NewMeasureTypeRepo(db).Create("MSR999999", "huge", decimal.New(1, 400), "2025/01/01 00:00:00"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("measure create: %v", err)
	}
	got, err := items.Get(id)
	if err != nil || !got.AvailableCount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("read back: %+v %v", got, err)
	}
}
