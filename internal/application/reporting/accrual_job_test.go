package reporting

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "co-1", Name: "Bodegas Unidas", Status: "active"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: "co-1", Name: "Central"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-2", CompanyID: "co-1", Name: "Norte"}))
	require.NoError(t, s.Commodities().Create(ctx, &entity.Commodity{ID: "com-1", CompanyID: "co-1", Name: "Arroz"}))
	require.NoError(t, s.RateSchedules().Put(ctx, &entity.RateSchedule{
		CompanyID: "co-1", WarehouseID: "wh-1",
		Tiers: []entity.RateTier{{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("2.50")}},
	}))

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	closedAt := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	lots := []entity.StorageLot{
		{ID: "lot-a", WarehouseID: "wh-1", BagsStored: 100, BagsRemaining: 100},
		{ID: "lot-b", WarehouseID: "wh-1", BagsStored: 50, BagsRemaining: 20},
		{ID: "lot-c", WarehouseID: "wh-2", BagsStored: 30, BagsRemaining: 30},
		{ID: "lot-d", WarehouseID: "wh-1", BagsStored: 10, BagsRemaining: 0, StorageEndDate: &closedAt},
	}
	for _, l := range lots {
		l.CompanyID, l.CustomerID, l.CommodityID, l.StorageStartDate = "co-1", "cust-1", "com-1", start
		require.NoError(t, s.Lots().Create(ctx, &l))
	}
	return s
}

func TestAccrualJob_RunOnce_UnaFotoPorBodega(t *testing.T) {
	s := seedStore(t)
	job := NewAccrualJob(s.Reports(), s.Lots(), s.RateSchedules(), zerolog.Nop())
	job.now = func() time.Time { return time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC) }

	saved, err := job.RunOnce(context.Background())
	require.ErrorIs(t, err, domain.ErrRateScheduleMissing, "wh-2 no tiene tarifa")
	assert.Equal(t, 2, saved)

	snaps, err := s.Reports().ListAccrualSnapshots(context.Background(), "co-1", "wh-1", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 2, snaps[0].OpenLots, "el lote cerrado no cuenta")
	assert.EqualValues(t, 120, snaps[0].BagsInStock)
	// 30 días = 1 período: 120 * 2.50.
	assert.True(t, decimal.RequireFromString("300").Equal(snaps[0].AccruedRent), "obtuvo %s", snaps[0].AccruedRent)
	assert.False(t, snaps[0].RateMissing)

	snaps, err = s.Reports().ListAccrualSnapshots(context.Background(), "co-1", "wh-2", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].AccruedRent.IsZero(), "bodega sin tarifa no causa")
	assert.True(t, snaps[0].RateMissing, "la foto queda marcada como incompleta")
	assert.EqualValues(t, 30, snaps[0].BagsInStock)
}

func TestAccrualJob_RunOnce_BodegaSinTarifaSeReportaComoError(t *testing.T) {
	s := seedStore(t)
	var buf bytes.Buffer
	job := NewAccrualJob(s.Reports(), s.Lots(), s.RateSchedules(), zerolog.New(&buf))
	job.now = func() time.Time { return time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC) }

	_, err := job.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateScheduleMissing)
	assert.Contains(t, err.Error(), "empresa co-1")
	assert.Contains(t, err.Error(), "bodega wh-2")
	assert.NotContains(t, err.Error(), "wh-1")

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"warehouse_id":"wh-2"`)
}

func TestAccrualJob_RunOnce_TodasLasBodegasConTarifaSinError(t *testing.T) {
	s := seedStore(t)
	require.NoError(t, s.RateSchedules().Put(context.Background(), &entity.RateSchedule{
		CompanyID: "co-1", WarehouseID: "wh-2",
		Tiers: []entity.RateTier{{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: decimal.RequireFromString("1.00")}},
	}))
	job := NewAccrualJob(s.Reports(), s.Lots(), s.RateSchedules(), zerolog.Nop())
	job.now = func() time.Time { return time.Date(2024, time.January, 30, 0, 0, 0, 0, time.UTC) }

	saved, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	snaps, err := s.Reports().ListAccrualSnapshots(context.Background(), "co-1", "wh-2", 1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.False(t, snaps[0].RateMissing)
	assert.True(t, decimal.RequireFromString("30").Equal(snaps[0].AccruedRent), "obtuvo %s", snaps[0].AccruedRent)
}

func TestAccrualJob_Start_ExpresionInvalida(t *testing.T) {
	s := seedStore(t)
	job := NewAccrualJob(s.Reports(), s.Lots(), s.RateSchedules(), zerolog.Nop())
	assert.Error(t, job.Start("no es cron"))
}

func TestCronLogger_EscribeEnZerolog(t *testing.T) {
	var buf bytes.Buffer
	var l cron.Logger = cronLogger{log: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	l.Info("skip", "entry", 3)
	l.Error(errors.New("boom"), "panic", "entry", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"debug"`)
	assert.Contains(t, lines[0], `"message":"cron: skip"`)
	assert.Contains(t, lines[0], `"entry":3`)
	assert.Contains(t, lines[1], `"level":"error"`)
	assert.Contains(t, lines[1], `"error":"boom"`)
}

func TestOccupancy_TotalesYUltimaCausacion(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()
	job := NewAccrualJob(s.Reports(), s.Lots(), s.RateSchedules(), zerolog.Nop())
	for _, d := range []int{10, 20} {
		job.now = func() time.Time { return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC) }
		_, err := job.RunOnce(ctx)
		require.ErrorIs(t, err, domain.ErrRateScheduleMissing)
	}

	resp, err := NewOccupancyUseCase(s.Reports()).Occupancy(ctx, "co-1", "")
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "Central", resp.Items[0].WarehouseName)
	assert.EqualValues(t, 150, resp.TotalBags)

	require.Len(t, resp.LatestAccrual, 2, "una foto por bodega")
	for _, a := range resp.LatestAccrual {
		assert.Equal(t, 20, a.AsOf.Day())
		assert.Equal(t, a.WarehouseID == "wh-2", a.RateMissing)
	}
}
