package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccrualSnapshot foto diaria del arriendo causado (no facturado) de los lotes abiertos de una bodega.
type AccrualSnapshot struct {
	ID          string
	CompanyID   string
	WarehouseID string
	AsOf        time.Time
	OpenLots    int
	BagsInStock int64
	AccruedRent decimal.Decimal
	// RateMissing la bodega no tiene tramo aplicable: AccruedRent no incluye esos lotes.
	RateMissing bool
	CreatedAt   time.Time
}
