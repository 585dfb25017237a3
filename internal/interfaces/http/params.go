package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

// pagination lee limit/offset del query string con tope de 100.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", 20)
	offset = c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseDate acepta YYYY-MM-DD o RFC3339. Vacío devuelve el tiempo cero.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: fecha %q, use YYYY-MM-DD", domain.ErrInvalidInput, s)
	}
	return t, nil
}

// queryDate lee una fecha del query string; ausente = def.
func queryDate(c *fiber.Ctx, key string, def time.Time) (time.Time, error) {
	t, err := parseDate(c.Query(key))
	if err != nil {
		return time.Time{}, err
	}
	if t.IsZero() {
		return def, nil
	}
	return t, nil
}

// sendPDF responde bytes PDF como adjunto.
func sendPDF(c *fiber.Ctx, content []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(content)
}
