package handler

import (
	"log/slog"

	"ali-plastic-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

const defaultSalesLimit = 100

type SaleHandler struct {
	service service.SaleService
	logger  *slog.Logger
}

func NewSaleHandler(s service.SaleService, logger *slog.Logger) *SaleHandler {
	return &SaleHandler{service: s, logger: logger}
}

// Checkout processes a cart. Lines whose product is gone are reported as skipped.
// POST /api/v1/checkout
func (h *SaleHandler) Checkout(c *fiber.Ctx) error {
	var req service.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.Checkout(c.UserContext(), &req, actor(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"message": "Checkout complete", "data": result})
}

// GET /api/v1/sales?limit=
func (h *SaleHandler) GetSales(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultSalesLimit)
	if limit <= 0 {
		limit = defaultSalesLimit
	}
	sales, err := h.service.ListSales(c.UserContext(), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(sales)
}

// GET /api/v1/sales/:id
func (h *SaleHandler) GetSale(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid sale ID"})
	}
	sale, err := h.service.GetSale(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(sale)
}
