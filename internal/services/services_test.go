package services_test

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"warehousebot/internal/domain"
	"warehousebot/internal/media"
	"warehousebot/internal/repos"
	"warehousebot/internal/services"
)

type fixture struct {
	db      *sqlx.DB
	catalog *services.CatalogService
	items   *services.ItemService
	store   *media.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repos.SeedDemo(db, "2025/01/01 00:00:00"); err != nil {
		t.Fatal(err)
	}
	store, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewSubcategoryRepo(db),
		repos.NewBrandRepo(db), repos.NewMeasureTypeRepo(db), store)
	items := services.NewItemService(repos.NewItemRepo(db), repos.NewImageRepo(db), catalog, store)
	return fixture{db: db, catalog: catalog, items: items, store: store}
}

func hammer() domain.ItemDraft {
	return domain.ItemDraft{
		Name: "Hammer", CustomCode: "HM-1",
		CategoryID: 1, SubcategoryID: 1, BrandID: 1, MeasureTypeID: 1,
		AvailableCount: decimal.NewFromInt(10),
	}
}

func TestRandomCodeShape(t *testing.T) {
	for _, prefix := range []string{services.PrefixCategory, services.PrefixItem} {
		c := services.RandomCode(prefix)
		if !strings.HasPrefix(c, prefix) || len(c) != len(prefix)+6 {
			t.Fatalf("bad code %q", c)
		}
		for _, r := range c[len(prefix):] {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit suffix in %q", c)
			}
		}
	}
}

func TestCodesUniqueWithinType(t *testing.T) {
	f := newFixture(t)
	a, err := f.catalog.CreateBrand("Bosch")
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.catalog.CreateBrand("Makita")
	if err != nil {
		t.Fatal(err)
	}
	if a.Code == b.Code {
		t.Fatalf("codes collide: %s", a.Code)
	}
	for _, c := range []string{a.Code, b.Code} {
		if !strings.HasPrefix(c, services.PrefixBrand) {
			t.Fatalf("missing prefix: %s", c)
		}
	}
}

func TestCodeCollisionIsRetried(t *testing.T) {
	f := newFixture(t)
	// The first code collides with a seeded category, the second is free.
	seq := []string{"CAT000001", "CAT123456"}
	f.catalog.Codes = services.Codes{Attempts: 3, Next: func(string) string {
		c := seq[0]
		seq = seq[1:]
		return c
	}}
	c, err := f.catalog.CreateCategory("Garden")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Code != "CAT123456" {
		t.Fatalf("code = %s", c.Code)
	}
}

func TestCodeCollisionGivesUpAfterAttempts(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.catalog.Codes = services.Codes{Attempts: 2, Next: func(string) string { calls++; return "CAT000001" }}
	_, err := f.catalog.CreateCategory("Garden")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("attempts = %d", calls)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	f := newFixture(t)
	if _, err := f.catalog.CreateCategory("   "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty name: %v", err)
	}
	if _, err := f.catalog.CreateMeasureType("kg", decimal.NewFromInt(-1)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative threshold: %v", err)
	}
	if _, err := f.catalog.CreateSubcategory(999, "Orphan"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing parent: %v", err)
	}

	d := hammer()
	d.AvailableCount = decimal.NewFromInt(-2)
	if _, err := f.items.Create(d); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("negative count: %v", err)
	}
	d = hammer()
	d.SubcategoryID = 2 // belongs to Electrical
	if _, err := f.items.Create(d); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("subcategory of another category: %v", err)
	}
	d = hammer()
	d.BrandID = 99
	if _, err := f.items.Create(d); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing brand: %v", err)
	}
}

func TestItemUpdateKeepsOtherFields(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.items.Clock = services.Clock{Loc: time.UTC, Now: func() time.Time { return now }}

	d := hammer()
	d.Description = "claw"
	d.VideoURL = "https://example.com/v"
	before, err := f.items.Create(d)
	if err != nil {
		t.Fatal(err)
	}
	now = now.Add(time.Minute)
	after, err := f.items.SetCount(before.ID, decimal.NewFromInt(2))
	if err != nil {
		t.Fatal(err)
	}
	if !after.AvailableCount.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("count = %s", after.AvailableCount)
	}
	if after.Name != before.Name || after.CustomCode != before.CustomCode || after.Description != before.Description ||
		after.VideoURL != before.VideoURL || after.Code != before.Code || after.CreatedAt != before.CreatedAt ||
		after.CategoryID != before.CategoryID || after.SubcategoryID != before.SubcategoryID ||
		after.BrandID != before.BrandID || after.MeasureTypeID != before.MeasureTypeID {
		t.Fatalf("other fields changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if after.UpdatedAt <= before.UpdatedAt {
		t.Fatalf("updated_at did not advance: %s -> %s", before.UpdatedAt, after.UpdatedAt)
	}
	if after.UpdatedAt != "2025/03/01 09:01:00.000000" {
		t.Fatalf("stamp format: %s", after.UpdatedAt)
	}
}

func TestItemDeleteRemovesImageFiles(t *testing.T) {
	f := newFixture(t)
	it, err := f.items.Create(hammer())
	if err != nil {
		t.Fatal(err)
	}
	img, err := f.items.AddImage(it.ID, strings.NewReader("jpeg bytes"), "JPG")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(img.Path, ".jpg") {
		t.Fatalf("path = %s", img.Path)
	}
	if n, _ := f.items.ImageCount(it.ID); n != 1 {
		t.Fatalf("image count = %d", n)
	}
	if err := f.items.Delete(it.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(f.store.Path(img.Path)); !os.IsNotExist(err) {
		t.Fatalf("file still on disk: %v", err)
	}
	if _, err := f.items.Get(it.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("item still there: %v", err)
	}
}

func TestCategoryDeleteRemovesFilesOfNestedItems(t *testing.T) {
	f := newFixture(t)
	it, err := f.items.Create(hammer())
	if err != nil {
		t.Fatal(err)
	}
	img, err := f.items.AddImage(it.ID, strings.NewReader("x"), "png")
	if err != nil {
		t.Fatal(err)
	}
	// A file that is already gone must not fail the delete.
	other, err := f.items.AddImage(it.ID, strings.NewReader("y"), "png")
	if err != nil {
		t.Fatal(err)
	}
	_ = os.Remove(f.store.Path(other.Path))

	if err := f.catalog.DeleteCategory(1); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(f.store.Path(img.Path)); !os.IsNotExist(err) {
		t.Fatalf("file still on disk: %v", err)
	}
	if _, err := f.catalog.GetSubcategory(1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("subcategory still there: %v", err)
	}
}

func TestSetThresholdAndRename(t *testing.T) {
	f := newFixture(t)
	if err := f.catalog.SetThreshold(1, decimal.RequireFromString("7.5")); err != nil {
		t.Fatal(err)
	}
	if err := f.catalog.RenameMeasureType(1, "pieces"); err != nil {
		t.Fatal(err)
	}
	m, err := f.catalog.GetMeasureType(1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "pieces" || !m.LowStockThreshold.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("measure = %+v", m)
	}
}

func TestInventoryServiceLowStock(t *testing.T) {
	f := newFixture(t)
	d := hammer()
	d.AvailableCount = decimal.NewFromInt(5)
	it, err := f.items.Create(d)
	if err != nil {
		t.Fatal(err)
	}
	inv := services.NewInventoryService(repos.NewInventoryRepo(f.db))
	low, err := inv.LowStock()
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 1 || low[0].ID != it.ID {
		t.Fatalf("low = %+v", low)
	}
	if _, err := f.items.SetCount(it.ID, decimal.NewFromInt(6)); err != nil {
		t.Fatal(err)
	}
	low, _ = inv.LowStock()
	if len(low) != 0 {
		t.Fatalf("item above threshold still low: %+v", low)
	}
}

func TestAuthService(t *testing.T) {
	f := newFixture(t)
	auth, err := services.NewAuthService(repos.NewActorRepo(f.db), "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	actor := domain.Actor{ID: 11, Username: "op"}
	if ok, _ := auth.Authenticated(11); ok {
		t.Fatal("authenticated before login")
	}
	if err := auth.Login(actor, "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if err := auth.Login(actor, " s3cret "); err != nil {
		t.Fatal(err)
	}
	if ok, err := auth.Authenticated(11); !ok || err != nil {
		t.Fatalf("not authenticated after login: %v", err)
	}
	if err := auth.Logout(11); err != nil {
		t.Fatal(err)
	}
	if ok, _ := auth.Authenticated(11); ok {
		t.Fatal("still authenticated after logout")
	}
}

func TestOversizedAmountsAreRejected(t *testing.T) {
	f := newFixture(t)
	it, err := f.items.Create(hammer())
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []decimal.Decimal{decimal.New(1, 400), decimal.New(1, 13), decimal.New(1, -9)} {
		if _, err := f.items.SetCount(it.ID, n); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("SetCount(%s): %v", n.String(), err)
		}
		if err := f.catalog.SetThreshold(1, n); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("SetThreshold: %v", err)
		}
	}
	d := hammer()
	d.CustomCode = "HM-2"
	d.AvailableCount = decimal.New(1, 400)
	if _, err := f.items.Create(d); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.catalog.CreateMeasureType("tons", decimal.New(1, 400)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("measure: %v", err)
	}
	got, err := f.items.Get(it.ID)
	if err != nil || !got.AvailableCount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("item after rejected writes: %+v %v", got, err)
	}
}

func TestDeleteImageChecksOwner(t *testing.T) {
	f := newFixture(t)
	a, err := f.items.Create(hammer())
	if err != nil {
		t.Fatal(err)
	}
	d := hammer()
	d.CustomCode = "HM-2"
	b, err := f.items.Create(d)
	if err != nil {
		t.Fatal(err)
	}
	img, err := f.items.AddImage(a.ID, strings.NewReader("x"), "jpg")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.items.DeleteImage(b.ID, img.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("wrong owner: %v", err)
	}
	if err := f.items.DeleteImage(a.ID, img.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(f.store.Path(img.Path)); !os.IsNotExist(err) {
		t.Fatalf("file kept: %v", err)
	}
	if n, _ := f.items.ImageCount(a.ID); n != 0 {
		t.Fatalf("rows left = %d", n)
	}
}

func TestUpdatedAtAdvancesWithinOneInstant(t *testing.T) {
	f := newFixture(t)
	frozen := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	f.items.Clock = services.Clock{Loc: time.UTC, Now: func() time.Time { return frozen }}
	it, err := f.items.Create(hammer())
	if err != nil {
		t.Fatal(err)
	}
	prev := it.UpdatedAt
	for i := range 3 {
		got, err := f.items.SetCount(it.ID, decimal.NewFromInt(int64(i)))
		if err != nil {
			t.Fatal(err)
		}
		if got.UpdatedAt <= prev {
			t.Fatalf("update %d: updated_at %s did not advance past %s", i, got.UpdatedAt, prev)
		}
		prev = got.UpdatedAt
	}
	if prev != "2025/03/01 09:00:00.000003" {
		t.Fatalf("updated_at = %s", prev)
	}
}

func TestClockAfter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 500, time.UTC)
	c := services.Clock{Loc: time.UTC, Now: func() time.Time { return now }}
	if got := c.After("2024/12/31 23:59:59.999999"); got != "2025/01/01 12:00:00.000000" {
		t.Fatalf("clock ahead: %s", got)
	}
	if got := c.After("2025/01/01 12:00:00.000000"); got != "2025/01/01 12:00:00.000001" {
		t.Fatalf("same instant: %s", got)
	}
	if got := c.After("2025/01/01 12:00:05.000000"); got != "2025/01/01 12:00:05.000001" {
		t.Fatalf("clock behind: %s", got)
	}
}
