package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
)

// CustomerHandler maneja clientes depositantes y su estado de cuenta.
type CustomerHandler struct {
	uc         *billing.CustomerUseCase
	statements *billing.StatementUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *billing.CustomerUseCase, statements *billing.StatementUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc, statements: statements}
}

// Create godoc
// @Summary      Crear cliente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCustomerRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.CustomerResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if in.Name == "" || in.TaxID == "" {
		return badRequest(c, "VALIDATION", "name y tax_id son requeridos")
	}
	out, err := h.uc.Create(c.UserContext(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cliente
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerResponse
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar clientes
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CustomerListResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	out, err := h.uc.List(c.UserContext(), GetCompanyID(c), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Statement godoc
// @Summary      Estado de cuenta del cliente
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del cliente"
// @Param        as_of  query  string  false  "Fecha de corte YYYY-MM-DD (default hoy)"
// @Success      200    {object}  dto.CustomerStatementResponse
// @Router       /api/customers/{id}/statement [get]
func (h *CustomerHandler) Statement(c *fiber.Ctx) error {
	asOf, err := queryDate(c, "as_of", time.Now())
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.statements.CustomerStatement(c.UserContext(), GetCompanyID(c), c.Params("id"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StatementPDF godoc
// @Summary      Estado de cuenta en PDF
// @Tags         customers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id     path   string  true   "ID del cliente"
// @Param        as_of  query  string  false  "Fecha de corte YYYY-MM-DD"
// @Success      200
// @Router       /api/customers/{id}/statement.pdf [get]
func (h *CustomerHandler) StatementPDF(c *fiber.Ctx) error {
	asOf, err := queryDate(c, "as_of", time.Now())
	if err != nil {
		return writeError(c, err)
	}
	content, filename, err := h.statements.StatementPDF(c.UserContext(), GetCompanyID(c), c.Params("id"), asOf)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, content, filename)
}
