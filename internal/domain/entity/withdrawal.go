package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationLine resultado de debitar un lote durante un retiro.
type AllocationLine struct {
	ID            string
	WithdrawalID  string
	LotID         string
	QuantityTaken int64
	RentCharged   decimal.Decimal
	DaysStored    int
	Periods       int
	RatePerUnit   decimal.Decimal
}

// Withdrawal liquidación persistida de un retiro (outflow). Sus líneas referencian los lotes debitados.
type Withdrawal struct {
	ID          string
	CompanyID   string
	RequestID   string // clave de idempotencia enviada por el cliente
	CustomerID  string
	CommodityID string
	WarehouseID string
	Quantity    int64
	TotalRent   decimal.Decimal
	RequestedAt time.Time
	SettledAt   time.Time // fecha de liquidación (asOf)
	CreatedBy   string
	CreatedAt   time.Time
	Lines       []AllocationLine
}
