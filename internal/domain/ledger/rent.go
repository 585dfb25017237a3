// Package ledger contiene la lógica pura del libro de lotes: cálculo de arriendo,
// asignación FIFO de retiros y liquidación. No toca persistencia ni reloj.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// RentQuote detalle del cálculo de arriendo de una cantidad almacenada.
type RentQuote struct {
	DaysStored  int
	Periods     int
	RatePerUnit decimal.Decimal
	Quantity    int64
	Tier        entity.RateTier
	Amount      decimal.Decimal
}

// DaysStored cuenta días calendario entre inicio y asOf, ambos inclusive. Mínimo 1.
func DaysStored(start, asOf time.Time) int {
	days := int(civilDay(asOf).Sub(civilDay(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// civilDay fecha calendario del instante en UTC.
func civilDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SelectTier elige el tramo con el mayor ThresholdDays <= days.
func SelectTier(schedule *entity.RateSchedule, days int) (entity.RateTier, error) {
	if schedule == nil || len(schedule.Tiers) == 0 {
		return entity.RateTier{}, domain.ErrRateScheduleMissing
	}
	tiers := SortedTiers(schedule.Tiers)
	idx := -1
	for i, t := range tiers {
		if t.ThresholdDays <= days {
			idx = i
		}
	}
	if idx < 0 {
		return entity.RateTier{}, fmt.Errorf("%w: ningún tramo cubre %d días", domain.ErrRateScheduleMissing, days)
	}
	tier := tiers[idx]
	if tier.PeriodDays < 1 {
		return entity.RateTier{}, fmt.Errorf("%w: tramo desde día %d sin período", domain.ErrRateScheduleMissing, tier.ThresholdDays)
	}
	return tier, nil
}

// SortedTiers copia los tramos ordenados por ThresholdDays ascendente.
func SortedTiers(tiers []entity.RateTier) []entity.RateTier {
	out := make([]entity.RateTier, len(tiers))
	copy(out, tiers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ThresholdDays < out[j].ThresholdDays })
	return out
}

// Periods divide días entre el largo del período redondeando hacia arriba:
// un período parcial se cobra completo.
func Periods(days, periodDays int) int {
	return (days + periodDays - 1) / periodDays
}

// QuoteRent calcula el arriendo de quantity unidades almacenadas desde start hasta asOf.
// rateOverride (tarifa pactada en el lote) reemplaza la tarifa del tramo; el tramo sigue
// definiendo el largo del período.
func QuoteRent(start time.Time, rateOverride *decimal.Decimal, quantity int64, asOf time.Time, schedule *entity.RateSchedule) (RentQuote, error) {
	days := DaysStored(start, asOf)
	tier, err := SelectTier(schedule, days)
	if err != nil {
		return RentQuote{}, err
	}
	rate := tier.RatePerUnitPerPeriod
	if rateOverride != nil {
		rate = *rateOverride
	}
	periods := Periods(days, tier.PeriodDays)
	amount := rate.Mul(decimal.NewFromInt(quantity)).Mul(decimal.NewFromInt(int64(periods)))
	return RentQuote{
		DaysStored:  days,
		Periods:     periods,
		RatePerUnit: rate,
		Quantity:    quantity,
		Tier:        tier,
		Amount:      amount,
	}, nil
}

// ComputeRent arriendo causado por el saldo actual del lote a la fecha asOf.
// Función pura: mismas entradas, mismo resultado.
func ComputeRent(lot entity.StorageLot, asOf time.Time, schedule *entity.RateSchedule) (decimal.Decimal, error) {
	q, err := QuoteRent(lot.StorageStartDate, lot.RatePerUnit, lot.BagsRemaining, asOf, schedule)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Amount, nil
}

// ValidateSchedule verifica que la tarifa sea utilizable: al menos un tramo, uno desde el día 1,
// umbrales estrictamente crecientes, períodos >= 1 y tarifas no negativas.
func ValidateSchedule(tiers []entity.RateTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: la tarifa necesita al menos un tramo", domain.ErrInvalidInput)
	}
	sorted := SortedTiers(tiers)
	if sorted[0].ThresholdDays != 1 {
		return fmt.Errorf("%w: el primer tramo debe iniciar en el día 1", domain.ErrInvalidInput)
	}
	for i, t := range sorted {
		if i > 0 && t.ThresholdDays == sorted[i-1].ThresholdDays {
			return fmt.Errorf("%w: umbral %d repetido", domain.ErrInvalidInput, t.ThresholdDays)
		}
		if t.PeriodDays < 1 {
			return fmt.Errorf("%w: period_days debe ser >= 1", domain.ErrInvalidInput)
		}
		if t.RatePerUnitPerPeriod.IsNegative() {
			return fmt.Errorf("%w: tarifa negativa", domain.ErrInvalidInput)
		}
	}
	return nil
}
