package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type entityLot = entity.StorageLot

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// monthlySchedule: 2.50 por bulto cada 30 días hasta el día 90, luego 2.00.
func monthlySchedule() *entity.RateSchedule {
	return &entity.RateSchedule{
		WarehouseID: "wh-1",
		Tiers: []entity.RateTier{
			{ThresholdDays: 91, PeriodDays: 30, RatePerUnitPerPeriod: dec("2.00")},
			{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("2.50")},
		},
	}
}

func lot(id string, start time.Time, bags int64) entity.StorageLot {
	return entity.StorageLot{
		ID:               id,
		CustomerID:       "cust-1",
		CommodityID:      "com-1",
		WarehouseID:      "wh-1",
		BagsStored:       bags,
		BagsRemaining:    bags,
		StorageStartDate: start,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// DaysStored
// ──────────────────────────────────────────────────────────────────────────────

func TestDaysStored_ConteoInclusivo(t *testing.T) {
	start := day(2024, time.January, 1)

	assert.Equal(t, 1, ledger.DaysStored(start, start), "el mismo día cuenta como 1")
	assert.Equal(t, 30, ledger.DaysStored(start, day(2024, time.January, 30)))
	assert.Equal(t, 31, ledger.DaysStored(start, day(2024, time.January, 31)))
	assert.Equal(t, 60, ledger.DaysStored(start, day(2024, time.February, 29)), "2024 es bisiesto")
}

func TestDaysStored_MinimoUnDia(t *testing.T) {
	start := day(2024, time.March, 10)
	assert.Equal(t, 1, ledger.DaysStored(start, day(2024, time.March, 1)),
		"una fecha de corte anterior al inicio no puede dar días negativos")
}

func TestDaysStored_IgnoraHoraDelDia(t *testing.T) {
	start := time.Date(2024, time.January, 1, 23, 59, 0, 0, time.UTC)
	asOf := time.Date(2024, time.January, 2, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, ledger.DaysStored(start, asOf))
}

// El mismo instante leído en otra zona horaria (p. ej. TIMESTAMPTZ en time.Local) cuenta igual.
func TestDaysStored_MismoInstanteEnOtraZona(t *testing.T) {
	cot := time.FixedZone("COT", -5*3600)
	start := day(2024, time.January, 1)
	asOf := day(2024, time.January, 30)

	assert.Equal(t, 30, ledger.DaysStored(start, asOf))
	assert.Equal(t, 30, ledger.DaysStored(start.In(cot), asOf))
	assert.Equal(t, 30, ledger.DaysStored(start, asOf.In(cot)))
}

func TestQuoteRent_InicioEnZonaLocalCobraUnPeriodo(t *testing.T) {
	start := day(2024, time.January, 1)
	asOf := day(2024, time.January, 30)

	utc, err := ledger.QuoteRent(start, nil, 100, asOf, monthlySchedule())
	require.NoError(t, err)
	local, err := ledger.QuoteRent(start.In(time.FixedZone("COT", -5*3600)), nil, 100, asOf, monthlySchedule())
	require.NoError(t, err)

	assert.Equal(t, 30, local.DaysStored)
	assert.Equal(t, 1, local.Periods)
	assert.True(t, utc.Amount.Equal(local.Amount), "utc %s, local %s", utc.Amount, local.Amount)
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeRent
// ──────────────────────────────────────────────────────────────────────────────

// Un lote almacenado exactamente 30 días bajo un tramo de 30 días factura un período.
func TestComputeRent_LimiteDePeriodoCobraUnPeriodo(t *testing.T) {
	l := lot("lot-a", day(2024, time.January, 1), 100)

	got, err := ledger.ComputeRent(l, day(2024, time.January, 30), monthlySchedule())
	require.NoError(t, err)
	assert.True(t, dec("250").Equal(got), "100 bultos * 2.50 * 1 período = 250, obtuvo %s", got)

	// Un día más abre un segundo período que se cobra completo.
	got, err = ledger.ComputeRent(l, day(2024, time.January, 31), monthlySchedule())
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(got), "período parcial se cobra completo, obtuvo %s", got)
}

func TestComputeRent_ValoresDeReferencia(t *testing.T) {
	start := day(2024, time.January, 1)
	cases := []struct {
		name string
		asOf time.Time
		bags int64
		want string
	}{
		{"primer día", start, 10, "25"},
		{"45 días, 2 períodos", day(2024, time.February, 14), 10, "50"},
		{"90 días, último del primer tramo", day(2024, time.March, 30), 10, "75"},
		{"91 días, segundo tramo, 4 períodos", day(2024, time.March, 31), 10, "80"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ledger.ComputeRent(lot("x", start, tc.bags), tc.asOf, monthlySchedule())
			require.NoError(t, err)
			assert.True(t, dec(tc.want).Equal(got), "esperado %s, obtuvo %s", tc.want, got)
		})
	}
}

func TestComputeRent_Determinista(t *testing.T) {
	l := lot("lot-a", day(2024, time.January, 1), 37)
	asOf := day(2024, time.May, 17)
	schedule := monthlySchedule()

	r1, err1 := ledger.ComputeRent(l, asOf, schedule)
	r2, err2 := ledger.ComputeRent(l, asOf, schedule)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.True(t, r1.Equal(r2), "mismas entradas deben producir el mismo arriendo")
}

func TestComputeRent_TarifaPactadaDelLote(t *testing.T) {
	l := lot("lot-a", day(2024, time.January, 1), 10)
	pactada := dec("1.10")
	l.RatePerUnit = &pactada

	got, err := ledger.ComputeRent(l, day(2024, time.January, 15), monthlySchedule())
	require.NoError(t, err)
	assert.True(t, dec("11").Equal(got), "obtuvo %s", got)
}

func TestComputeRent_SinTarifa_RetornaErrRateScheduleMissing(t *testing.T) {
	l := lot("lot-a", day(2024, time.January, 1), 10)

	_, err := ledger.ComputeRent(l, day(2024, time.January, 5), nil)
	assert.ErrorIs(t, err, domain.ErrRateScheduleMissing)

	_, err = ledger.ComputeRent(l, day(2024, time.January, 5), &entity.RateSchedule{})
	assert.ErrorIs(t, err, domain.ErrRateScheduleMissing)
}

func TestComputeRent_NingunTramoCubre_RetornaErrRateScheduleMissing(t *testing.T) {
	schedule := &entity.RateSchedule{Tiers: []entity.RateTier{
		{ThresholdDays: 30, PeriodDays: 30, RatePerUnitPerPeriod: dec("1")},
	}}
	_, err := ledger.ComputeRent(lot("lot-a", day(2024, time.January, 1), 10), day(2024, time.January, 5), schedule)
	assert.ErrorIs(t, err, domain.ErrRateScheduleMissing)
}

// ──────────────────────────────────────────────────────────────────────────────
// SelectTier / ValidateSchedule
// ──────────────────────────────────────────────────────────────────────────────

func TestSelectTier_MayorUmbralMenorOIgual(t *testing.T) {
	tier, err := ledger.SelectTier(monthlySchedule(), 90)
	require.NoError(t, err)
	assert.Equal(t, 1, tier.ThresholdDays)

	tier, err = ledger.SelectTier(monthlySchedule(), 91)
	require.NoError(t, err)
	assert.Equal(t, 91, tier.ThresholdDays)
}

func TestValidateSchedule(t *testing.T) {
	ok := []entity.RateTier{
		{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("2")},
		{ThresholdDays: 31, PeriodDays: 7, RatePerUnitPerPeriod: dec("0.5")},
	}
	assert.NoError(t, ledger.ValidateSchedule(ok))

	bad := map[string][]entity.RateTier{
		"vacía":             nil,
		"sin tramo día 1":   {{ThresholdDays: 2, PeriodDays: 30, RatePerUnitPerPeriod: dec("1")}},
		"umbral repetido":   {{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("1")}, {ThresholdDays: 1, PeriodDays: 7, RatePerUnitPerPeriod: dec("1")}},
		"período cero":      {{ThresholdDays: 1, PeriodDays: 0, RatePerUnitPerPeriod: dec("1")}},
		"tarifa negativa":   {{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("-1")}},
	}
	for name, tiers := range bad {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ledger.ValidateSchedule(tiers), domain.ErrInvalidInput)
		})
	}
}
