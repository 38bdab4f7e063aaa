package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "warehousebot/internal/log"
	"warehousebot/internal/services"
)

type ReportHandler struct {
	Inventory *services.InventoryService
}

// LowStock renders the live low-stock report as HTML.
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	items, err := h.Inventory.LowStock()
	if err != nil {
		applog.Error(c, "report.lowstock.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Report unavailable. Please try again."})
	}
	stats, err := h.Inventory.Stats()
	if err != nil {
		applog.Error(c, "report.lowstock.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Report unavailable. Please try again."})
	}
	return render(c, "low_stock", fiber.Map{"Items": items, "Stats": stats})
}
