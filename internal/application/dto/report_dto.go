package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OccupancyItemDTO bultos en bodega por bodega y mercancía.
type OccupancyItemDTO struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	CommodityID   string `json:"commodity_id"`
	CommodityName string `json:"commodity_name"`
	OpenLots      int    `json:"open_lots"`
	BagsInStock   int64  `json:"bags_in_stock"`
}

// OccupancyResponse respuesta de GET /api/reports/occupancy.
type OccupancyResponse struct {
	Items         []OccupancyItemDTO   `json:"items"`
	TotalBags     int64                `json:"total_bags"`
	LatestAccrual []AccrualSnapshotDTO `json:"latest_accrual,omitempty"`
}

// AccrualSnapshotDTO foto de arriendo causado de una bodega.
type AccrualSnapshotDTO struct {
	WarehouseID string          `json:"warehouse_id"`
	AsOf        time.Time       `json:"as_of"`
	OpenLots    int             `json:"open_lots"`
	BagsInStock int64           `json:"bags_in_stock"`
	AccruedRent decimal.Decimal `json:"accrued_rent"`
	RateMissing bool            `json:"rate_missing,omitempty"`
}
