package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// maxAnomalyBatch retiros enviados al modelo por consulta.
const maxAnomalyBatch = 200

// AIUseCase orquesta la detección de anomalías en retiros asistida por IA.
// Aplica un timeout de 15 segundos en cada llamada al LLM para evitar
// que las latencias externas bloqueen los goroutines del servidor.
type AIUseCase struct {
	llm            ports.LLMService
	withdrawalRepo repository.WithdrawalRepository
}

// NewAIUseCase construye el caso de uso inyectando el puerto LLMService.
func NewAIUseCase(llm ports.LLMService, withdrawalRepo repository.WithdrawalRepository) *AIUseCase {
	return &AIUseCase{llm: llm, withdrawalRepo: withdrawalRepo}
}

// DetectAnomalies resume los retiros liquidados del rango y delega el análisis al LLM.
func (uc *AIUseCase) DetectAnomalies(ctx context.Context, companyID string, req dto.AnomalyRequest) (*dto.AnomalyReportDTO, error) {
	if req.From.IsZero() || req.To.IsZero() || req.To.Before(req.From) {
		return nil, fmt.Errorf("%w: rango de fechas from/to obligatorio", domain.ErrInvalidInput)
	}
	if uc.llm == nil {
		return nil, domain.ErrAIUnavailable
	}
	from, to := req.From, req.To
	list, err := uc.withdrawalRepo.List(ctx, repository.WithdrawalFilter{
		CompanyID:   companyID,
		WarehouseID: req.WarehouseID,
		From:        &from,
		To:          &to,
		Limit:       maxAnomalyBatch,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &dto.AnomalyReportDTO{Anomalies: []dto.AnomalyDTO{}, Summary: "sin retiros en el rango"}, nil
	}

	summaries := make([]dto.WithdrawalSummaryDTO, 0, len(list))
	for _, w := range list {
		maxDays := 0
		for _, l := range w.Lines {
			maxDays = max(maxDays, l.DaysStored)
		}
		summaries = append(summaries, dto.WithdrawalSummaryDTO{
			WithdrawalID: w.ID,
			CustomerID:   w.CustomerID,
			WarehouseID:  w.WarehouseID,
			CommodityID:  w.CommodityID,
			Quantity:     w.Quantity,
			TotalRent:    w.TotalRent.StringFixed(2),
			LotsTouched:  len(w.Lines),
			MaxDays:      maxDays,
			SettledAt:    w.SettledAt,
		})
	}

	// Timeout de 15 s: las llamadas a LLMs pueden demorar varios segundos.
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	report, err := uc.llm.DetectWithdrawalAnomalies(ctx, summaries)
	if err != nil {
		return nil, fmt.Errorf("detección IA: %w", err)
	}
	report.Analyzed = len(summaries)
	return report, nil
}
