package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
)

// PaymentHandler abonos de clientes.
type PaymentHandler struct {
	uc *billing.PaymentUseCase
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(uc *billing.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar abono
// @Tags         payments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordPaymentRequest  true  "Abono"
// @Success      201   {object}  dto.PaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/payments [post]
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RecordPayment(c.UserContext(), GetCompanyID(c), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
