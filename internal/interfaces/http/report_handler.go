package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/reporting"
)

// ReportHandler reportes de ocupación.
type ReportHandler struct {
	uc *reporting.OccupancyUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reporting.OccupancyUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Occupancy godoc
// @Summary      Bultos almacenados por bodega y mercancía
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Success      200  {object}  dto.OccupancyResponse
// @Router       /api/reports/occupancy [get]
func (h *ReportHandler) Occupancy(c *fiber.Ctx) error {
	out, err := h.uc.Occupancy(c.UserContext(), GetCompanyID(c), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
