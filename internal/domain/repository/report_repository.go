package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// OccupancyRow bultos en bodega agrupados por bodega y mercancía.
type OccupancyRow struct {
	WarehouseID   string
	WarehouseName string
	CommodityID   string
	CommodityName string
	OpenLots      int
	BagsInStock   int64
}

// ReportRepository consultas de solo lectura para reportes y snapshots de causación.
type ReportRepository interface {
	Occupancy(ctx context.Context, companyID, warehouseID string) ([]OccupancyRow, error)
	// ListCompaniesWithOpenLots empresas activas con al menos un lote abierto.
	ListCompaniesWithOpenLots(ctx context.Context) ([]string, error)
	SaveAccrualSnapshot(ctx context.Context, snapshot *entity.AccrualSnapshot) error
	ListAccrualSnapshots(ctx context.Context, companyID, warehouseID string, limit int) ([]entity.AccrualSnapshot, error)
}
