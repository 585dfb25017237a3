package ports

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
)

// LLMService define el puerto de salida para los servicios de inteligencia artificial.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz.
// La aplicación solo conoce este contrato, no la implementación concreta.
type LLMService interface {
	// DetectWithdrawalAnomalies revisa un lote de retiros liquidados y marca los sospechosos
	// (cantidades atípicas, retiros fraccionados, arriendos fuera de rango).
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	DetectWithdrawalAnomalies(
		ctx context.Context,
		withdrawals []dto.WithdrawalSummaryDTO,
	) (*dto.AnomalyReportDTO, error)
}
