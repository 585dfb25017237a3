package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address"`
}

// UpdateWarehouseRequest entrada para actualizar una bodega.
type UpdateWarehouseRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Address *string `json:"address"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// RateTierDTO tramo de tarifa.
type RateTierDTO struct {
	ThresholdDays        int             `json:"threshold_days"`
	PeriodDays           int             `json:"period_days"`
	RatePerUnitPerPeriod decimal.Decimal `json:"rate_per_unit_per_period"`
}

// PutRateScheduleRequest body para PUT /api/warehouses/:id/rate-schedule.
type PutRateScheduleRequest struct {
	Tiers []RateTierDTO `json:"tiers"`
}

// RateScheduleResponse tarifa vigente de una bodega.
type RateScheduleResponse struct {
	WarehouseID string        `json:"warehouse_id"`
	Tiers       []RateTierDTO `json:"tiers"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
