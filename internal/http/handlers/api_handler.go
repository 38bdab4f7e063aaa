package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/services"
	"warehousebot/internal/validate"
)

type APIHandler struct {
	Items     *services.ItemService
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
}

type imageJSON struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// itemJSON is the API projection of an item. Quantities go out as numbers.
type itemJSON struct {
	ID                int64       `json:"id"`
	Code              string      `json:"code"`
	CustomCode        string      `json:"custom_code"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	CategoryID        int64       `json:"category_id"`
	CategoryName      string      `json:"category_name"`
	SubcategoryID     int64       `json:"subcategory_id"`
	SubcategoryName   string      `json:"subcategory_name"`
	BrandID           int64       `json:"brand_id"`
	BrandName         string      `json:"brand_name"`
	MeasureTypeID     int64       `json:"measure_type_id"`
	MeasureTypeName   string      `json:"measure_type_name"`
	AvailableCount    float64     `json:"available_count"`
	LowStockThreshold float64     `json:"low_stock_threshold"`
	LowStock          bool        `json:"low_stock"`
	VideoURL          string      `json:"video_url"`
	CreatedAt         string      `json:"created_at"`
	UpdatedAt         string      `json:"updated_at"`
	Images            []imageJSON `json:"images,omitempty"`
}

func toItemJSON(it domain.ItemDetail) itemJSON {
	return itemJSON{
		ID:                it.ID,
		Code:              it.Code,
		CustomCode:        it.CustomCode,
		Name:              it.Name,
		Description:       it.Description,
		CategoryID:        it.CategoryID,
		CategoryName:      it.CategoryName,
		SubcategoryID:     it.SubcategoryID,
		SubcategoryName:   it.SubcategoryName,
		BrandID:           it.BrandID,
		BrandName:         it.BrandName,
		MeasureTypeID:     it.MeasureTypeID,
		MeasureTypeName:   it.MeasureTypeName,
		AvailableCount:    it.AvailableCount.InexactFloat64(),
		LowStockThreshold: it.LowStockThreshold.InexactFloat64(),
		LowStock:          it.LowStock(),
		VideoURL:          it.VideoURL,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
}

func toItemsJSON(items []domain.ItemDetail) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, toItemJSON(it))
	}
	return out
}

type pageQuery struct {
	Limit  int `query:"limit" validate:"min=1,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

type stockPatch struct {
	AvailableCount *decimal.Decimal `json:"available_count" validate:"required"`
}

// apiError maps service errors to a status without leaking storage detail.
func apiError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func badRequest(c *fiber.Ctx, msg string, fields map[string]string) error {
	body := fiber.Map{"error": msg}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

func pathID(c *fiber.Ctx) (int64, bool) { return validate.ID(c.Params("id")) }

func (h *APIHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name": "warehousebot",
		"endpoints": []string{
			"/health", "/api/stats", "/api/items", "/api/items/search?q=", "/api/items/:id",
			"/api/items/:id/stock", "/api/low-stock", "/api/categories",
			"/api/categories/:id/subcategories", "/api/brands", "/api/brands/:id/items",
			"/api/measure-types", "/report/low-stock",
		},
	})
}

func (h *APIHandler) Stats(c *fiber.Ctx) error {
	s, err := h.Inventory.Stats()
	if err != nil {
		return apiError(c, "api.stats", err)
	}
	return c.JSON(s)
}

func (h *APIHandler) ListItems(c *fiber.Ctx) error {
	q := pageQuery{Limit: 100}
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "invalid pagination", nil)
	}
	if err := validate.Struct(q); err != nil {
		return badRequest(c, "invalid pagination", validate.Messages(err))
	}
	items, total, err := h.Items.List(q.Limit, q.Offset)
	if err != nil {
		return apiError(c, "api.items", err)
	}
	return c.JSON(fiber.Map{"items": toItemsJSON(items), "total": total, "limit": q.Limit, "offset": q.Offset})
}

func (h *APIHandler) Search(c *fiber.Ctx) error {
	q, ok := validate.Q(c.Query("q"))
	if !ok {
		return badRequest(c, "missing q", nil)
	}
	items, err := h.Items.Search(q)
	if err != nil {
		return apiError(c, "api.search", err)
	}
	return c.JSON(fiber.Map{"query": q, "items": toItemsJSON(items), "total": len(items)})
}

func (h *APIHandler) GetItem(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id", nil)
	}
	it, err := h.Items.Get(id)
	if err != nil {
		return apiError(c, "api.item", err)
	}
	imgs, err := h.Items.ListImages(id)
	if err != nil {
		return apiError(c, "api.item", err)
	}
	out := toItemJSON(it)
	for _, img := range imgs {
		out.Images = append(out.Images, imageJSON{ID: img.ID, Path: img.Path, URL: "/media/" + img.Path, CreatedAt: img.CreatedAt})
	}
	return c.JSON(out)
}

// PatchStock changes available_count only. The service rewrites the full
// record with every other field as read.
func (h *APIHandler) PatchStock(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id", nil)
	}
	var body stockPatch
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid body", nil)
	}
	if err := validate.Struct(body); err != nil {
		return badRequest(c, "invalid body", validate.Messages(err))
	}
	if !validate.Quantity(*body.AvailableCount) {
		return badRequest(c, "available_count must be zero or greater, with at most 12 integer and 6 fractional digits", nil)
	}
	before, err := h.Items.Get(id)
	if err != nil {
		return apiError(c, "api.stock", err)
	}
	it, err := h.Items.SetCount(id, *body.AvailableCount)
	if err != nil {
		return apiError(c, "api.stock", err)
	}
	applog.Audit(c, "item.stock.patch", map[string]any{
		"id": id, "from": before.AvailableCount.String(), "to": it.AvailableCount.String(),
	})
	return c.JSON(toItemJSON(it))
}

func (h *APIHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.Inventory.LowStock()
	if err != nil {
		return apiError(c, "api.lowstock", err)
	}
	return c.JSON(fiber.Map{"items": toItemsJSON(items), "total": len(items)})
}

type categoryJSON struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type subcategoryJSON struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	CreatedAt    string `json:"created_at"`
}

type measureTypeJSON struct {
	ID                int64   `json:"id"`
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	CreatedAt         string  `json:"created_at"`
}

func (h *APIHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return apiError(c, "api.categories", err)
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, x := range cats {
		out = append(out, categoryJSON{ID: x.ID, Code: x.Code, Name: x.Name, CreatedAt: x.CreatedAt})
	}
	return c.JSON(out)
}

func (h *APIHandler) Subcategories(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id", nil)
	}
	if _, err := h.Catalog.GetCategory(id); err != nil {
		return apiError(c, "api.subcategories", err)
	}
	subs, err := h.Catalog.SubcategoriesOf(id)
	if err != nil {
		return apiError(c, "api.subcategories", err)
	}
	out := make([]subcategoryJSON, 0, len(subs))
	for _, s := range subs {
		out = append(out, subcategoryJSON{
			ID: s.ID, Code: s.Code, Name: s.Name, CategoryID: s.CategoryID, CategoryName: s.CategoryName, CreatedAt: s.CreatedAt,
		})
	}
	return c.JSON(out)
}

func (h *APIHandler) Brands(c *fiber.Ctx) error {
	brands, err := h.Catalog.ListBrands()
	if err != nil {
		return apiError(c, "api.brands", err)
	}
	out := make([]categoryJSON, 0, len(brands))
	for _, b := range brands {
		out = append(out, categoryJSON{ID: b.ID, Code: b.Code, Name: b.Name, CreatedAt: b.CreatedAt})
	}
	return c.JSON(out)
}

func (h *APIHandler) BrandItems(c *fiber.Ctx) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id", nil)
	}
	if _, err := h.Catalog.GetBrand(id); err != nil {
		return apiError(c, "api.brand.items", err)
	}
	items, err := h.Items.ByBrand(id)
	if err != nil {
		return apiError(c, "api.brand.items", err)
	}
	return c.JSON(fiber.Map{"items": toItemsJSON(items), "total": len(items)})
}

func (h *APIHandler) MeasureTypes(c *fiber.Ctx) error {
	ms, err := h.Catalog.ListMeasureTypes()
	if err != nil {
		return apiError(c, "api.measure_types", err)
	}
	out := make([]measureTypeJSON, 0, len(ms))
	for _, m := range ms {
		out = append(out, measureTypeJSON{
			ID: m.ID, Code: m.Code, Name: m.Name, LowStockThreshold: m.LowStockThreshold.InexactFloat64(), CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(out)
}
