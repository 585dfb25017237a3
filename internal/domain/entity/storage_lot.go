package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados derivados de un lote.
const (
	LotStatusOpen               = "OPEN"
	LotStatusPartiallyWithdrawn = "PARTIALLY_WITHDRAWN"
	LotStatusClosed             = "CLOSED"
	LotStatusVoided             = "VOIDED"
)

// StorageLot representa una entrada (inflow) de mercancía de un cliente en una bodega.
// Invariante: 0 <= BagsRemaining <= BagsStored. Nunca se borra físicamente.
type StorageLot struct {
	ID               string
	CompanyID        string
	CustomerID       string
	CommodityID      string
	WarehouseID      string
	BagsStored       int64
	BagsRemaining    int64
	StorageStartDate time.Time
	StorageEndDate   *time.Time       // nil mientras el lote está abierto
	RatePerUnit      *decimal.Decimal // tarifa pactada; nil = tarifa de la bodega
	DeletedAt        *time.Time       // soft delete
	Version          int64
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsOpen un lote está abierto si no tiene fecha de fin, conserva saldo y no fue anulado.
func (l StorageLot) IsOpen() bool {
	return l.StorageEndDate == nil && l.BagsRemaining > 0 && l.DeletedAt == nil
}

// Status devuelve el estado del lote en la máquina OPEN -> PARTIALLY_WITHDRAWN -> CLOSED.
func (l StorageLot) Status() string {
	switch {
	case l.DeletedAt != nil:
		return LotStatusVoided
	case l.StorageEndDate != nil || l.BagsRemaining == 0:
		return LotStatusClosed
	case l.BagsRemaining < l.BagsStored:
		return LotStatusPartiallyWithdrawn
	default:
		return LotStatusOpen
	}
}
