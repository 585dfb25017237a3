package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
)

// LotHandler entradas de mercancía (inflows) y consulta de lotes.
type LotHandler struct {
	uc *ledger.LotUseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *ledger.LotUseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar entrada de mercancía (nuevo lote)
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "Cliente, mercancía, bodega y bultos"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateLot(c.UserContext(), ledger.CreateLotInput{
		CompanyID:   GetCompanyID(c),
		UserID:      GetUserID(c),
		CustomerID:  in.CustomerID,
		CommodityID: in.CommodityID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		RatePerUnit: in.RatePerUnit,
		StartDate:   in.StorageStartDate,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListOpen godoc
// @Summary      Lotes abiertos en orden FIFO
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        customer_id   query  string  true  "Cliente"
// @Param        commodity_id  query  string  true  "Mercancía"
// @Param        warehouse_id  query  string  true  "Bodega"
// @Success      200  {object}  dto.LotListResponse
// @Router       /api/lots/open [get]
func (h *LotHandler) ListOpen(c *fiber.Ctx) error {
	customerID, commodityID, warehouseID := c.Query("customer_id"), c.Query("commodity_id"), c.Query("warehouse_id")
	if customerID == "" || commodityID == "" || warehouseID == "" {
		return badRequest(c, "VALIDATION", "customer_id, commodity_id y warehouse_id son requeridos")
	}
	out, err := h.uc.ListOpenLots(c.UserContext(), GetCompanyID(c), customerID, commodityID, warehouseID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener lote
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetLot(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Rent godoc
// @Summary      Arriendo causado de un lote abierto
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del lote"
// @Param        as_of  query  string  false  "Fecha YYYY-MM-DD (default hoy)"
// @Success      200    {object}  dto.RentQuoteResponse
// @Router       /api/lots/{id}/rent [get]
func (h *LotHandler) Rent(c *fiber.Ctx) error {
	asOf, err := queryDate(c, "as_of", time.Now())
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.QuoteRent(c.UserContext(), GetCompanyID(c), c.Params("id"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Movements godoc
// @Summary      Débitos de un lote en orden de liquidación
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotMovementsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular un lote sin retiros
// @Tags         lots
// @Security     Bearer
// @Param        id   path  string  true  "ID del lote"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *LotHandler) Void(c *fiber.Ctx) error {
	if err := h.uc.VoidLot(c.UserContext(), GetCompanyID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
