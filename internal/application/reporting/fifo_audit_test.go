package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
)

func ledgerWithWithdrawals(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "co-1", Name: "Bodegas Unidas", Status: "active"}))
	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{ID: "cust-1", CompanyID: "co-1", Name: "Molino El Prado"}))
	require.NoError(t, s.Commodities().Create(ctx, &entity.Commodity{ID: "com-1", CompanyID: "co-1", Name: "Arroz"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: "co-1", Name: "Central"}))
	require.NoError(t, s.RateSchedules().Put(ctx, &entity.RateSchedule{
		CompanyID: "co-1", WarehouseID: "wh-1",
		Tiers: []entity.RateTier{{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("2.50")}},
	}))

	refs := appledger.References{Customers: s.Customers(), Commodities: s.Commodities(), Warehouses: s.Warehouses()}
	lots := appledger.NewLotUseCase(s.Lots(), s.RateSchedules(), s.Withdrawals(), refs, ports.NoopPublisher{}, ports.NoopMetrics{}, zerolog.Nop())
	withdrawals := appledger.NewWithdrawalUseCase(s, s.Lots(), s.Withdrawals(), s.RateSchedules(), refs,
		ports.NoopGuard{}, ports.NoopPublisher{}, ports.NoopMetrics{}, 0, zerolog.Nop())

	for i, bags := range []int64{100, 50, 30} {
		start := time.Date(2024, time.January, 1+i*4, 0, 0, 0, 0, time.UTC)
		_, err := lots.CreateLot(ctx, appledger.CreateLotInput{
			CompanyID: "co-1", CustomerID: "cust-1", CommodityID: "com-1", WarehouseID: "wh-1",
			Quantity: bags, StartDate: &start,
		})
		require.NoError(t, err)
	}
	for i, qty := range []int64{120, 10, 45} {
		_, err := withdrawals.Withdraw(ctx, appledger.WithdrawalInput{
			CompanyID: "co-1", RequestID: "req-" + string(rune('a'+i)),
			CustomerID: "cust-1", CommodityID: "com-1", WarehouseID: "wh-1",
			Quantity: qty, AsOf: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
	}
	return s
}

func TestFIFOAuditor_LibroLiquidadoPorElCasoDeUsoEsConsistente(t *testing.T) {
	s := ledgerWithWithdrawals(t)
	auditor := NewFIFOAuditor(s.Companies(), s.Lots(), s.Withdrawals(), zerolog.Nop())

	report, err := auditor.AuditAll(context.Background(), "")
	require.NoError(t, err)

	assert.True(t, report.Clean(), "hallazgos: %v", report.Violations)
	assert.Equal(t, 1, report.Companies)
	assert.Equal(t, 3, report.Lots)
	assert.Equal(t, 3, report.Withdrawals)
}

func TestFIFOAuditor_RetiroSinDebitoEsHallazgo(t *testing.T) {
	s := ledgerWithWithdrawals(t)
	ctx := context.Background()

	open, err := s.Lots().List(ctx, repository.LotFilter{CompanyID: "co-1", OnlyOpen: true})
	require.NoError(t, err)
	require.NotEmpty(t, open)

	// Retiro escrito sin pasar por el libro: el lote conserva su saldo.
	require.NoError(t, s.Withdrawals().Create(ctx, &entity.Withdrawal{
		ID: "w-rogue", CompanyID: "co-1", RequestID: "rogue",
		CustomerID: "cust-1", CommodityID: "com-1", WarehouseID: "wh-1",
		Quantity: 1, TotalRent: decimal.Zero,
		SettledAt: time.Now(), CreatedAt: time.Now(),
		Lines: []entity.AllocationLine{{ID: "line-rogue", WithdrawalID: "w-rogue", LotID: open[0].ID, QuantityTaken: 1}},
	}))

	auditor := NewFIFOAuditor(s.Companies(), s.Lots(), s.Withdrawals(), zerolog.Nop())
	report, err := auditor.AuditAll(ctx, "co-1")
	require.NoError(t, err)

	require.False(t, report.Clean())
	found := false
	for _, v := range report.Violations["co-1"] {
		if v.Kind == ledger.ViolationConservation && v.LotID == open[0].ID {
			found = true
		}
	}
	assert.True(t, found, "hallazgos: %v", report.Violations["co-1"])
}
