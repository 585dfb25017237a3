package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
)

// CommodityHandler catálogo de mercancías almacenables.
type CommodityHandler struct {
	uc *usecase.CommodityUseCase
}

// NewCommodityHandler construye el handler.
func NewCommodityHandler(uc *usecase.CommodityUseCase) *CommodityHandler {
	return &CommodityHandler{uc: uc}
}

// Create godoc
// @Summary      Crear mercancía
// @Tags         commodities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCommodityRequest  true  "Nombre y unidad"
// @Success      201   {object}  dto.CommodityResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/commodities [post]
func (h *CommodityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCommodityRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar mercancías
// @Tags         commodities
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CommodityResponse
// @Router       /api/commodities [get]
func (h *CommodityHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
