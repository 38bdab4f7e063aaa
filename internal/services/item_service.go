package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"warehousebot/internal/domain"
	"warehousebot/internal/media"
	"warehousebot/internal/repos"
	"warehousebot/internal/validate"
)

type ItemService struct {
	Items   *repos.ItemRepo
	Images  *repos.ImageRepo
	Catalog *CatalogService
	Media   *media.Store
	Codes   Codes
	Clock   Clock
}

func NewItemService(items *repos.ItemRepo, images *repos.ImageRepo, catalog *CatalogService, store *media.Store) *ItemService {
	return &ItemService{Items: items, Images: images, Catalog: catalog, Media: store, Codes: Codes{Attempts: 5}}
}

func checkItem(name, customCode string, count decimal.Decimal) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: name is empty", domain.ErrValidation)
	case strings.TrimSpace(customCode) == "":
		return fmt.Errorf("%w: custom code is empty", domain.ErrValidation)
	case !validate.Quantity(count):
		return fmt.Errorf("%w: available count is negative or out of range", domain.ErrValidation)
	}
	return nil
}

// Create inserts a new item after confirming that every reference still
// exists and that the subcategory belongs to the chosen category.
func (s *ItemService) Create(d domain.ItemDraft) (domain.ItemDetail, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.CustomCode = strings.TrimSpace(d.CustomCode)
	d.Description = strings.TrimSpace(d.Description)
	d.VideoURL = strings.TrimSpace(d.VideoURL)
	if err := checkItem(d.Name, d.CustomCode, d.AvailableCount); err != nil {
		return domain.ItemDetail{}, err
	}
	if _, err := s.Catalog.GetCategory(d.CategoryID); err != nil {
		return domain.ItemDetail{}, err
	}
	sub, err := s.Catalog.GetSubcategory(d.SubcategoryID)
	if err != nil {
		return domain.ItemDetail{}, err
	}
	if sub.CategoryID != d.CategoryID {
		return domain.ItemDetail{}, fmt.Errorf("%w: subcategory %d is not under category %d", domain.ErrValidation, sub.ID, d.CategoryID)
	}
	if _, err := s.Catalog.GetBrand(d.BrandID); err != nil {
		return domain.ItemDetail{}, err
	}
	if _, err := s.Catalog.GetMeasureType(d.MeasureTypeID); err != nil {
		return domain.ItemDetail{}, err
	}

	stamp := s.Clock.Stamp()
	id, _, err := s.Codes.insert(PrefixItem, func(code string) (int64, error) {
		return s.Items.Create(code, d, stamp)
	})
	if err != nil {
		return domain.ItemDetail{}, err
	}
	return s.Items.Get(id)
}

func (s *ItemService) Get(id int64) (domain.ItemDetail, error) { return s.Items.Get(id) }

// List pages through all items, newest first, and reports the total.
func (s *ItemService) List(limit, offset int) ([]domain.ItemDetail, int, error) {
	total, err := s.Items.Count()
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Items.List(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ItemService) Search(q string) ([]domain.ItemDetail, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrValidation)
	}
	return s.Items.Search(q)
}

func (s *ItemService) ByBrand(brandID int64) ([]domain.ItemDetail, error) {
	return s.Items.ListByBrand(brandID)
}

func (s *ItemService) BySubcategory(subcategoryID int64) ([]domain.ItemDetail, error) {
	return s.Items.ListBySubcategory(subcategoryID)
}

// Update reads the full record, applies mutate, and writes the full record back
// with a fresh updated_at.
func (s *ItemService) Update(id int64, mutate func(*domain.Item)) (domain.ItemDetail, error) {
	cur, err := s.Items.Get(id)
	if err != nil {
		return domain.ItemDetail{}, err
	}
	it := cur.Item
	mutate(&it)
	it.Name = strings.TrimSpace(it.Name)
	it.CustomCode = strings.TrimSpace(it.CustomCode)
	if err := checkItem(it.Name, it.CustomCode, it.AvailableCount); err != nil {
		return domain.ItemDetail{}, err
	}
	it.UpdatedAt = s.Clock.After(cur.UpdatedAt)
	if err := s.Items.Update(it); err != nil {
		return domain.ItemDetail{}, err
	}
	return s.Items.Get(id)
}

func (s *ItemService) Rename(id int64, name string) (domain.ItemDetail, error) {
	return s.Update(id, func(it *domain.Item) { it.Name = name })
}

func (s *ItemService) SetCustomCode(id int64, code string) (domain.ItemDetail, error) {
	return s.Update(id, func(it *domain.Item) { it.CustomCode = code })
}

func (s *ItemService) SetDescription(id int64, desc string) (domain.ItemDetail, error) {
	return s.Update(id, func(it *domain.Item) { it.Description = strings.TrimSpace(desc) })
}

func (s *ItemService) SetCount(id int64, count decimal.Decimal) (domain.ItemDetail, error) {
	return s.Update(id, func(it *domain.Item) { it.AvailableCount = count })
}

func (s *ItemService) SetVideoURL(id int64, url string) (domain.ItemDetail, error) {
	return s.Update(id, func(it *domain.Item) { it.VideoURL = strings.TrimSpace(url) })
}

func (s *ItemService) ListImages(itemID int64) ([]domain.ItemImage, error) {
	return s.Images.ListByItem(itemID)
}

func (s *ItemService) ImageCount(itemID int64) (int, error) {
	return s.Images.CountByItem(itemID)
}

// AddImage stores the file first and the row second; a failed insert removes the file.
func (s *ItemService) AddImage(itemID int64, r io.Reader, ext string) (domain.ItemImage, error) {
	if _, err := s.Items.Get(itemID); err != nil {
		return domain.ItemImage{}, err
	}
	path, err := s.Media.Save(itemID, r, ext)
	if err != nil {
		return domain.ItemImage{}, err
	}
	stamp := s.Clock.Stamp()
	id, err := s.Images.Add(itemID, path, stamp)
	if err != nil {
		_ = s.Media.Remove(path)
		return domain.ItemImage{}, err
	}
	return domain.ItemImage{ID: id, ItemID: itemID, Path: path, CreatedAt: stamp}, nil
}

// DeleteImage removes one image of the item, row first and file second.
func (s *ItemService) DeleteImage(itemID, imageID int64) error {
	path, err := s.Images.Delete(itemID, imageID)
	if err != nil {
		return err
	}
	removeFiles(s.Media, []string{path})
	return nil
}

func (s *ItemService) Delete(id int64) error {
	paths, err := s.Items.Delete(id)
	if err != nil {
		return err
	}
	removeFiles(s.Media, paths)
	return nil
}
