package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/issue-admin/internal/service"
)

// AnalyticsHandler serves dashboard aggregates and exports.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary GET /analytics/summary.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// Status GET /analytics/status.
func (h *AnalyticsHandler) Status(c *fiber.Ctx) error {
	counts, err := h.analytics.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// Categories GET /analytics/categories.
func (h *AnalyticsHandler) Categories(c *fiber.Ctx) error {
	counts, err := h.analytics.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// Wards GET /analytics/wards.
func (h *AnalyticsHandler) Wards(c *fiber.Ctx) error {
	counts, err := h.analytics.Wards(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counts})
}

// ResponseTimes GET /analytics/response-times.
func (h *AnalyticsHandler) ResponseTimes(c *fiber.Ctx) error {
	times, err := h.analytics.ResponseTimes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": times})
}

// Trend GET /analytics/trend.
func (h *AnalyticsHandler) Trend(c *fiber.Ctx) error {
	points, err := h.analytics.Trend(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": points})
}

// Export GET /analytics/export?dataset=. Responds with the delimited text.
func (h *AnalyticsHandler) Export(c *fiber.Ctx) error {
	dataset := c.Query("dataset", service.DatasetIssues)
	body, err := h.analytics.Export(c.UserContext(), dataset)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+dataset+`.csv"`)
	return c.SendString(body)
}
