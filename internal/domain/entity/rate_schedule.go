package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTier tramo de tarifa: aplica desde ThresholdDays días almacenados,
// cobrando RatePerUnitPerPeriod por unidad en cada período de PeriodDays días.
type RateTier struct {
	ThresholdDays        int
	PeriodDays           int
	RatePerUnitPerPeriod decimal.Decimal
}

// RateSchedule tarifa escalonada de una bodega. Tiers ordenados por ThresholdDays ascendente.
type RateSchedule struct {
	CompanyID   string
	WarehouseID string
	Tiers       []RateTier
	UpdatedAt   time.Time
}
