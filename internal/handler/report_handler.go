package handler

import (
	"log/slog"
	"time"

	"ali-plastic-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(s service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{service: s, logger: logger}
}

// GetDailyPnl returns the sales and totals of one day; today when date is absent.
// GET /api/v1/reports/pnl?date=YYYY-MM-DD
func (h *ReportHandler) GetDailyPnl(c *fiber.Ctx) error {
	var day time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, use YYYY-MM-DD"})
		}
		day = parsed
	}

	pnl, err := h.service.GetDailyPnl(c.UserContext(), day)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(pnl)
}

// GET /api/v1/reports/restock-radar?low=true
func (h *ReportHandler) GetRestockRadar(c *fiber.Ctx) error {
	items, err := h.service.GetRestockRadar(c.UserContext(), c.QueryBool("low", false))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(items)
}
