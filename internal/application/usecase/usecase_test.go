package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mock LLM
// ──────────────────────────────────────────────────────────────────────────────

type fakeLLM struct {
	received []dto.WithdrawalSummaryDTO
	report   *dto.AnomalyReportDTO
	err      error
}

func (f *fakeLLM) DetectWithdrawalAnomalies(_ context.Context, w []dto.WithdrawalSummaryDTO) (*dto.AnomalyReportDTO, error) {
	f.received = w
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func seedWithdrawal(t *testing.T, store *memory.Store, id, companyID, warehouseID string, settledAt time.Time) {
	t.Helper()
	require.NoError(t, store.Withdrawals().Create(context.Background(), &entity.Withdrawal{
		ID:          id,
		CompanyID:   companyID,
		RequestID:   "req-" + id,
		CustomerID:  "cust-1",
		CommodityID: "com-1",
		WarehouseID: warehouseID,
		Quantity:    30,
		TotalRent:   decimal.RequireFromString("75"),
		SettledAt:   settledAt,
		CreatedAt:   settledAt,
		Lines: []entity.AllocationLine{
			{LotID: "lot-a", QuantityTaken: 20, DaysStored: 45},
			{LotID: "lot-b", QuantityTaken: 10, DaysStored: 12},
		},
	}))
}

// ──────────────────────────────────────────────────────────────────────────────
// AIUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestAIUseCase_DetectAnomalies_ResumeRetirosDelRango(t *testing.T) {
	store := memory.NewStore()
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	seedWithdrawal(t, store, "wd-1", "co-1", "wh-1", feb)
	seedWithdrawal(t, store, "wd-2", "co-1", "wh-1", feb.AddDate(0, 2, 0)) // fuera del rango
	seedWithdrawal(t, store, "wd-3", "co-2", "wh-9", feb)                  // otra empresa

	llm := &fakeLLM{report: &dto.AnomalyReportDTO{
		Anomalies: []dto.AnomalyDTO{{WithdrawalID: "wd-1", Reason: "atípico", RiskScore: 0.7}},
		Summary:   "1 sospechoso",
	}}
	uc := usecase.NewAIUseCase(llm, store.Withdrawals())

	report, err := uc.DetectAnomalies(context.Background(), "co-1", dto.AnomalyRequest{
		From: feb.AddDate(0, 0, -5),
		To:   feb.AddDate(0, 0, 5),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Analyzed)
	require.Len(t, llm.received, 1)

	s := llm.received[0]
	assert.Equal(t, "wd-1", s.WithdrawalID)
	assert.Equal(t, "75.00", s.TotalRent)
	assert.Equal(t, 2, s.LotsTouched)
	assert.Equal(t, 45, s.MaxDays)
}

func TestAIUseCase_SinRetiros_NoLlamaAlModelo(t *testing.T) {
	llm := &fakeLLM{}
	uc := usecase.NewAIUseCase(llm, memory.NewStore().Withdrawals())

	now := time.Now()
	report, err := uc.DetectAnomalies(context.Background(), "co-1", dto.AnomalyRequest{From: now.AddDate(0, -1, 0), To: now})
	require.NoError(t, err)
	assert.Empty(t, report.Anomalies)
	assert.Nil(t, llm.received)
}

func TestAIUseCase_Errores(t *testing.T) {
	store := memory.NewStore()
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	seedWithdrawal(t, store, "wd-1", "co-1", "wh-1", feb)
	rng := dto.AnomalyRequest{From: feb.AddDate(0, 0, -1), To: feb.AddDate(0, 0, 1)}

	t.Run("rango inválido", func(t *testing.T) {
		uc := usecase.NewAIUseCase(&fakeLLM{}, store.Withdrawals())
		_, err := uc.DetectAnomalies(context.Background(), "co-1", dto.AnomalyRequest{From: feb, To: feb.AddDate(0, 0, -1)})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
	t.Run("sin proveedor", func(t *testing.T) {
		uc := usecase.NewAIUseCase(nil, store.Withdrawals())
		_, err := uc.DetectAnomalies(context.Background(), "co-1", rng)
		assert.ErrorIs(t, err, domain.ErrAIUnavailable)
	})
	t.Run("error del proveedor", func(t *testing.T) {
		uc := usecase.NewAIUseCase(&fakeLLM{err: errors.New("HTTP 500")}, store.Withdrawals())
		_, err := uc.DetectAnomalies(context.Background(), "co-1", rng)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// RateScheduleUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestRateScheduleUseCase_PutYGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: "co-1", Name: "Bodega Norte"}))
	uc := usecase.NewRateScheduleUseCase(store.RateSchedules(), store.Warehouses(), zerolog.Nop())

	_, err := uc.Get(ctx, "co-1", "wh-1")
	assert.ErrorIs(t, err, domain.ErrRateScheduleMissing)

	_, err = uc.Put(ctx, "co-1", "wh-1", dto.PutRateScheduleRequest{Tiers: []dto.RateTierDTO{
		{ThresholdDays: 91, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("2.00")},
		{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("2.50")},
	}})
	require.NoError(t, err)

	got, err := uc.Get(ctx, "co-1", "wh-1")
	require.NoError(t, err)
	require.Len(t, got.Tiers, 2)
	assert.Equal(t, 1, got.Tiers[0].ThresholdDays, "los tramos se guardan ordenados por umbral")

	_, err = uc.Get(ctx, "co-2", "wh-1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "otra empresa no ve la bodega")

	_, err = uc.Put(ctx, "co-1", "wh-1", dto.PutRateScheduleRequest{Tiers: []dto.RateTierDTO{
		{ThresholdDays: 5, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin tramo desde el día 1")
}

// ──────────────────────────────────────────────────────────────────────────────
// WarehouseUseCase
// ──────────────────────────────────────────────────────────────────────────────

func TestWarehouseUseCase_CreateNormalizaNombre(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.NewStore().Warehouses())

	wh, err := uc.Create(ctx, "co-1", dto.CreateWarehouseRequest{Name: "  bodega   central "})
	require.NoError(t, err)
	assert.NotEmpty(t, wh.ID)

	_, err = uc.Create(ctx, "co-1", dto.CreateWarehouseRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetByID(ctx, "co-2", wh.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
