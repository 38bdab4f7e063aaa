package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"warehousebot/internal/domain"
	applog "warehousebot/internal/log"
	"warehousebot/internal/media"
	"warehousebot/internal/repos"
	"warehousebot/internal/validate"
)

type CatalogService struct {
	Cats     *repos.CategoryRepo
	Subs     *repos.SubcategoryRepo
	Brands   *repos.BrandRepo
	Measures *repos.MeasureTypeRepo
	Media    *media.Store
	Codes    Codes
	Clock    Clock
}

func NewCatalogService(cats *repos.CategoryRepo, subs *repos.SubcategoryRepo, brands *repos.BrandRepo,
	measures *repos.MeasureTypeRepo, store *media.Store) *CatalogService {
	return &CatalogService{Cats: cats, Subs: subs, Brands: brands, Measures: measures, Media: store, Codes: Codes{Attempts: 5}}
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is empty", domain.ErrValidation)
	}
	return name, nil
}

// ---------- Categories ----------

func (s *CatalogService) CreateCategory(name string) (domain.Category, error) {
	name, err := requireName(name)
	if err != nil {
		return domain.Category{}, err
	}
	stamp := s.Clock.Stamp()
	id, _, err := s.Codes.insert(PrefixCategory, func(code string) (int64, error) {
		return s.Cats.Create(code, name, stamp)
	})
	if err != nil {
		return domain.Category{}, err
	}
	return s.Cats.Get(id)
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) { return s.Cats.List() }

func (s *CatalogService) GetCategory(id int64) (domain.Category, error) { return s.Cats.Get(id) }

func (s *CatalogService) RenameCategory(id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	return s.Cats.Rename(id, name)
}

func (s *CatalogService) DeleteCategory(id int64) error {
	paths, err := s.Cats.Delete(id)
	if err != nil {
		return err
	}
	removeFiles(s.Media, paths)
	return nil
}

// ---------- Subcategories ----------

func (s *CatalogService) CreateSubcategory(categoryID int64, name string) (domain.Subcategory, error) {
	name, err := requireName(name)
	if err != nil {
		return domain.Subcategory{}, err
	}
	if _, err := s.Cats.Get(categoryID); err != nil {
		return domain.Subcategory{}, err
	}
	stamp := s.Clock.Stamp()
	id, _, err := s.Codes.insert(PrefixSubcategory, func(code string) (int64, error) {
		return s.Subs.Create(code, name, categoryID, stamp)
	})
	if err != nil {
		return domain.Subcategory{}, err
	}
	return s.Subs.Get(id)
}

func (s *CatalogService) ListSubcategories() ([]domain.Subcategory, error) { return s.Subs.List() }

func (s *CatalogService) SubcategoriesOf(categoryID int64) ([]domain.Subcategory, error) {
	return s.Subs.ListByCategory(categoryID)
}

func (s *CatalogService) GetSubcategory(id int64) (domain.Subcategory, error) { return s.Subs.Get(id) }

func (s *CatalogService) RenameSubcategory(id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	return s.Subs.Rename(id, name)
}

func (s *CatalogService) DeleteSubcategory(id int64) error {
	paths, err := s.Subs.Delete(id)
	if err != nil {
		return err
	}
	removeFiles(s.Media, paths)
	return nil
}

// ---------- Brands ----------

func (s *CatalogService) CreateBrand(name string) (domain.Brand, error) {
	name, err := requireName(name)
	if err != nil {
		return domain.Brand{}, err
	}
	stamp := s.Clock.Stamp()
	id, _, err := s.Codes.insert(PrefixBrand, func(code string) (int64, error) {
		return s.Brands.Create(code, name, stamp)
	})
	if err != nil {
		return domain.Brand{}, err
	}
	return s.Brands.Get(id)
}

func (s *CatalogService) ListBrands() ([]domain.Brand, error) { return s.Brands.List() }

func (s *CatalogService) GetBrand(id int64) (domain.Brand, error) { return s.Brands.Get(id) }

func (s *CatalogService) RenameBrand(id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	return s.Brands.Rename(id, name)
}

func (s *CatalogService) DeleteBrand(id int64) error {
	paths, err := s.Brands.Delete(id)
	if err != nil {
		return err
	}
	removeFiles(s.Media, paths)
	return nil
}

// ---------- Measure types ----------

func requireThreshold(t decimal.Decimal) error {
	if !validate.Quantity(t) {
		return fmt.Errorf("%w: threshold is negative or out of range", domain.ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateMeasureType(name string, threshold decimal.Decimal) (domain.MeasureType, error) {
	name, err := requireName(name)
	if err != nil {
		return domain.MeasureType{}, err
	}
	if err := requireThreshold(threshold); err != nil {
		return domain.MeasureType{}, err
	}
	stamp := s.Clock.Stamp()
	id, _, err := s.Codes.insert(PrefixMeasureType, func(code string) (int64, error) {
		return s.Measures.Create(code, name, threshold, stamp)
	})
	if err != nil {
		return domain.MeasureType{}, err
	}
	return s.Measures.Get(id)
}

func (s *CatalogService) ListMeasureTypes() ([]domain.MeasureType, error) { return s.Measures.List() }

func (s *CatalogService) GetMeasureType(id int64) (domain.MeasureType, error) { return s.Measures.Get(id) }

func (s *CatalogService) RenameMeasureType(id int64, name string) error {
	name, err := requireName(name)
	if err != nil {
		return err
	}
	m, err := s.Measures.Get(id)
	if err != nil {
		return err
	}
	return s.Measures.Update(id, name, m.LowStockThreshold)
}

func (s *CatalogService) SetThreshold(id int64, threshold decimal.Decimal) error {
	if err := requireThreshold(threshold); err != nil {
		return err
	}
	m, err := s.Measures.Get(id)
	if err != nil {
		return err
	}
	return s.Measures.Update(id, m.Name, threshold)
}

func (s *CatalogService) DeleteMeasureType(id int64) error {
	paths, err := s.Measures.Delete(id)
	if err != nil {
		return err
	}
	removeFiles(s.Media, paths)
	return nil
}

// removeFiles runs after the rows are committed; a failure only leaks a file.
func removeFiles(store *media.Store, paths []string) {
	if store == nil {
		return
	}
	for _, p := range paths {
		if err := store.Remove(p); err != nil {
			applog.Error(nil, "media.remove.fail", err, map[string]any{"path": p})
		}
	}
}
