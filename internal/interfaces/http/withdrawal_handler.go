package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// WithdrawalHandler liquidación de retiros (outflows).
type WithdrawalHandler struct {
	uc       *ledger.WithdrawalUseCase
	receipts *billing.StatementUseCase
}

// NewWithdrawalHandler construye el handler.
func NewWithdrawalHandler(uc *ledger.WithdrawalUseCase, receipts *billing.StatementUseCase) *WithdrawalHandler {
	return &WithdrawalHandler{uc: uc, receipts: receipts}
}

func (h *WithdrawalHandler) input(c *fiber.Ctx) (ledger.WithdrawalInput, error) {
	var in dto.WithdrawalRequest
	if err := c.BodyParser(&in); err != nil {
		return ledger.WithdrawalInput{}, err
	}
	out := ledger.WithdrawalInput{
		CompanyID:   GetCompanyID(c),
		UserID:      GetUserID(c),
		RequestID:   in.RequestID,
		CustomerID:  in.CustomerID,
		CommodityID: in.CommodityID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
	}
	if out.RequestID == "" {
		out.RequestID = c.Get("Idempotency-Key")
	}
	if in.AsOf != nil {
		out.AsOf = *in.AsOf
	}
	return out, nil
}

// Create godoc
// @Summary      Liquidar un retiro FIFO
// @Description  Debita los lotes abiertos del más antiguo al más nuevo y cobra el arriendo
// @Description  proporcional a lo retirado. request_id (o el header Idempotency-Key) evita
// @Description  liquidar dos veces la misma solicitud.
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawalRequest  true  "Retiro"
// @Success      201   {object}  dto.WithdrawalResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/withdrawals [post]
func (h *WithdrawalHandler) Create(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Withdraw(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Preview godoc
// @Summary      Simular un retiro sin confirmarlo
// @Tags         withdrawals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawalRequest  true  "Retiro"
// @Success      200   {object}  dto.WithdrawalResponse
// @Router       /api/withdrawals/preview [post]
func (h *WithdrawalHandler) Preview(c *fiber.Ctx) error {
	in, err := h.input(c)
	if err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.PreviewWithdrawal(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener retiro con sus líneas
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del retiro"
// @Success      200  {object}  dto.WithdrawalResponse
// @Router       /api/withdrawals/{id} [get]
func (h *WithdrawalHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetWithdrawal(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar retiros
// @Tags         withdrawals
// @Security     Bearer
// @Produce      json
// @Param        customer_id   query  string  false  "Cliente"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "Desde YYYY-MM-DD"
// @Param        to            query  string  false  "Hasta YYYY-MM-DD"
// @Success      200  {object}  dto.WithdrawalListResponse
// @Router       /api/withdrawals [get]
func (h *WithdrawalHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	filter := repository.WithdrawalFilter{
		CompanyID:   GetCompanyID(c),
		CustomerID:  c.Query("customer_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       limit,
		Offset:      offset,
	}
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}
	if !from.IsZero() {
		filter.From = &from
	}
	if !to.IsZero() {
		filter.To = &to
	}
	out, err := h.uc.ListWithdrawals(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Recibo PDF del retiro
// @Tags         withdrawals
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del retiro"
// @Success      200
// @Router       /api/withdrawals/{id}/receipt.pdf [get]
func (h *WithdrawalHandler) ReceiptPDF(c *fiber.Ctx) error {
	content, filename, err := h.receipts.ReceiptPDF(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, content, filename)
}
