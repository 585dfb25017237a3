package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
)

// AIHandler detección de anomalías en retiros asistida por IA.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// DetectAnomalies godoc
// @Summary      Detectar retiros sospechosos con IA
// @Description  Resume los retiros liquidados del rango y pide al modelo configurado
// @Description  (Anthropic o Gemini) que marque los atípicos. Timeout interno de 15 s.
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AnomalyRequest  true  "from, to (obligatorios) y warehouse_id opcional"
// @Success      200   {object}  dto.AnomalyReportDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      408   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ai/anomalies [post]
func (h *AIHandler) DetectAnomalies(c *fiber.Ctx) error {
	var req dto.AnomalyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	result, err := h.uc.DetectAnomalies(c.UserContext(), GetCompanyID(c), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}
