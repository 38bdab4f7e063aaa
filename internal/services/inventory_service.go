package services

import (
	"warehousebot/internal/domain"
	"warehousebot/internal/repos"
)

type InventoryService struct {
	Inv *repos.InventoryRepo
}

func NewInventoryService(inv *repos.InventoryRepo) *InventoryService {
	return &InventoryService{Inv: inv}
}

// LowStock lists items whose count is at or below their measure type threshold.
func (s *InventoryService) LowStock() ([]domain.ItemDetail, error) {
	return s.Inv.LowStock()
}

func (s *InventoryService) Stats() (domain.Stats, error) {
	return s.Inv.Stats()
}
