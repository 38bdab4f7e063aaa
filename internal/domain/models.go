package domain

import "github.com/shopspring/decimal"

// TimeLayout is the text form of every created_at/updated_at column.
// It is fixed width down to microseconds, so it sorts lexicographically.
const TimeLayout = "2006/01/02 15:04:05.000000"

type Category struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

type Subcategory struct {
	ID           int64  `db:"id"`
	Code         string `db:"code"`
	Name         string `db:"name"`
	CategoryID   int64  `db:"category_id"`
	CategoryName string `db:"category_name"`
	CreatedAt    string `db:"created_at"`
}

type Brand struct {
	ID        int64  `db:"id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	CreatedAt string `db:"created_at"`
}

type MeasureType struct {
	ID                int64           `db:"id"`
	Code              string          `db:"code"`
	Name              string          `db:"name"`
	LowStockThreshold decimal.Decimal `db:"low_stock_threshold"`
	CreatedAt         string          `db:"created_at"`
}

// Item is the full stored record. Updates always write every field.
type Item struct {
	ID             int64           `db:"id"`
	Code           string          `db:"code"`
	CustomCode     string          `db:"custom_code"`
	Name           string          `db:"name"`
	Description    string          `db:"description"`
	CategoryID     int64           `db:"category_id"`
	SubcategoryID  int64           `db:"subcategory_id"`
	BrandID        int64           `db:"brand_id"`
	MeasureTypeID  int64           `db:"measure_type_id"`
	AvailableCount decimal.Decimal `db:"available_count"`
	VideoURL       string          `db:"video_url"`
	CreatedAt      string          `db:"created_at"`
	UpdatedAt      string          `db:"updated_at"`
}

// ItemDetail is an Item joined with the names of its four references.
type ItemDetail struct {
	Item
	CategoryName      string          `db:"category_name"`
	SubcategoryName   string          `db:"subcategory_name"`
	BrandName         string          `db:"brand_name"`
	MeasureTypeName   string          `db:"measure_type_name"`
	LowStockThreshold decimal.Decimal `db:"low_stock_threshold"`
}

// LowStock reports whether the item is at or below its measure type threshold.
func (d ItemDetail) LowStock() bool {
	return d.AvailableCount.LessThanOrEqual(d.LowStockThreshold)
}

type ItemImage struct {
	ID        int64  `db:"id"`
	ItemID    int64  `db:"item_id"`
	Path      string `db:"image_path"`
	CreatedAt string `db:"created_at"`
}

// ItemDraft carries the fields collected by the creation flow.
type ItemDraft struct {
	Name           string
	CustomCode     string
	Description    string
	CategoryID     int64
	SubcategoryID  int64
	BrandID        int64
	MeasureTypeID  int64
	AvailableCount decimal.Decimal
	VideoURL       string
}

type Stats struct {
	TotalItems      int `json:"total_items" db:"total_items"`
	TotalCategories int `json:"total_categories" db:"total_categories"`
	TotalBrands     int `json:"total_brands" db:"total_brands"`
	LowStockItems   int `json:"low_stock_items" db:"low_stock_items"`
}
