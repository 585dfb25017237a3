package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para POST /api/lots (entrada de mercancía).
type CreateLotRequest struct {
	CustomerID       string           `json:"customer_id"`
	CommodityID      string           `json:"commodity_id"`
	WarehouseID      string           `json:"warehouse_id"`
	Quantity         int64            `json:"quantity"`
	RatePerUnit      *decimal.Decimal `json:"rate_per_unit,omitempty"` // tarifa pactada; omitida = tarifa de la bodega
	StorageStartDate *time.Time       `json:"storage_start_date,omitempty"`
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID               string           `json:"id"`
	CustomerID       string           `json:"customer_id"`
	CommodityID      string           `json:"commodity_id"`
	WarehouseID      string           `json:"warehouse_id"`
	BagsStored       int64            `json:"bags_stored"`
	BagsRemaining    int64            `json:"bags_remaining"`
	StorageStartDate time.Time        `json:"storage_start_date"`
	StorageEndDate   *time.Time       `json:"storage_end_date,omitempty"`
	RatePerUnit      *decimal.Decimal `json:"rate_per_unit,omitempty"`
	Status           string           `json:"status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// LotListResponse lista de lotes en orden FIFO.
type LotListResponse struct {
	Items       []LotResponse `json:"items"`
	OpenBalance int64         `json:"open_balance"`
}

// LotMovementDTO débito de un retiro sobre el lote.
type LotMovementDTO struct {
	WithdrawalID  string          `json:"withdrawal_id"`
	QuantityTaken int64           `json:"quantity_taken"`
	DaysStored    int             `json:"days_stored"`
	Periods       int             `json:"periods"`
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	RentCharged   decimal.Decimal `json:"rent_charged"`
}

// LotMovementsResponse débitos de un lote en orden de liquidación.
// BagsStored - BagsWithdrawn = BagsRemaining en un libro consistente.
type LotMovementsResponse struct {
	LotID         string           `json:"lot_id"`
	BagsStored    int64            `json:"bags_stored"`
	BagsWithdrawn int64            `json:"bags_withdrawn"`
	BagsRemaining int64            `json:"bags_remaining"`
	RentCharged   decimal.Decimal  `json:"rent_charged"`
	Items         []LotMovementDTO `json:"items"`
}

// RentQuoteResponse arriendo causado de un lote a una fecha.
type RentQuoteResponse struct {
	LotID       string          `json:"lot_id"`
	AsOf        time.Time       `json:"as_of"`
	Quantity    int64           `json:"quantity"`
	DaysStored  int             `json:"days_stored"`
	Periods     int             `json:"periods"`
	PeriodDays  int             `json:"period_days"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	Amount      decimal.Decimal `json:"amount"`
}

// WithdrawalRequest body para POST /api/withdrawals y /api/withdrawals/preview.
type WithdrawalRequest struct {
	RequestID   string     `json:"request_id,omitempty"` // clave de idempotencia
	CustomerID  string     `json:"customer_id"`
	CommodityID string     `json:"commodity_id"`
	WarehouseID string     `json:"warehouse_id"`
	Quantity    int64      `json:"quantity"`
	AsOf        *time.Time `json:"as_of,omitempty"` // fecha de liquidación; nil = hoy
}

// AllocationLineResponse línea de un retiro liquidado.
type AllocationLineResponse struct {
	LotID            string          `json:"lot_id"`
	LotStartDate     *time.Time      `json:"lot_start_date,omitempty"`
	QuantityTaken    int64           `json:"quantity_taken"`
	DaysStored       int             `json:"days_stored"`
	Periods          int             `json:"periods"`
	RatePerUnit      decimal.Decimal `json:"rate_per_unit"`
	RentCharged      decimal.Decimal `json:"rent_charged"`
	LotBagsRemaining *int64          `json:"lot_bags_remaining,omitempty"`
	LotClosed        bool            `json:"lot_closed"`
}

// WithdrawalResponse retiro liquidado (o previsualizado si Preview=true).
type WithdrawalResponse struct {
	ID          string                   `json:"id,omitempty"`
	RequestID   string                   `json:"request_id,omitempty"`
	CustomerID  string                   `json:"customer_id"`
	CommodityID string                   `json:"commodity_id"`
	WarehouseID string                   `json:"warehouse_id"`
	Quantity    int64                    `json:"quantity"`
	TotalRent   decimal.Decimal          `json:"total_rent"`
	SettledAt   time.Time                `json:"settled_at"`
	Preview     bool                     `json:"preview,omitempty"`
	Lines       []AllocationLineResponse `json:"lines"`
}

// WithdrawalListResponse lista paginada de retiros.
type WithdrawalListResponse struct {
	Items []WithdrawalResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}

// CreateCommodityRequest body para POST /api/commodities.
type CreateCommodityRequest struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// CommodityResponse mercancía en respuestas.
type CommodityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
}
