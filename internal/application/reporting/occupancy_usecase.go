// Package reporting contiene los reportes de ocupación de bodegas y la causación
// periódica de arriendo de los lotes abiertos.
package reporting

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

const occupancySnapshots = 1 // última foto de causación por bodega

// OccupancyUseCase bultos en bodega por bodega y mercancía.
//
// Fuente de datos: ReportRepository (consultas read-only).
type OccupancyUseCase struct {
	reportRepo repository.ReportRepository
}

// NewOccupancyUseCase construye el caso de uso.
func NewOccupancyUseCase(reportRepo repository.ReportRepository) *OccupancyUseCase {
	return &OccupancyUseCase{reportRepo: reportRepo}
}

// Occupancy arma el reporte de ocupación. warehouseID vacío = todas las bodegas de la empresa.
// Ocupación y última causación se consultan en paralelo.
func (uc *OccupancyUseCase) Occupancy(ctx context.Context, companyID, warehouseID string) (*dto.OccupancyResponse, error) {
	type rowsResult struct {
		rows []repository.OccupancyRow
		err  error
	}
	type snapshotsResult struct {
		snaps []entity.AccrualSnapshot
		err   error
	}

	rowsCh := make(chan rowsResult, 1)
	snapsCh := make(chan snapshotsResult, 1)

	go func() {
		rows, err := uc.reportRepo.Occupancy(ctx, companyID, warehouseID)
		rowsCh <- rowsResult{rows, err}
	}()
	go func() {
		snaps, err := uc.reportRepo.ListAccrualSnapshots(ctx, companyID, warehouseID, 0)
		snapsCh <- snapshotsResult{snaps, err}
	}()

	occ := <-rowsCh
	snaps := <-snapsCh
	if occ.err != nil {
		return nil, fmt.Errorf("ocupación: %w", occ.err)
	}
	if snaps.err != nil {
		return nil, fmt.Errorf("ocupación: causación: %w", snaps.err)
	}

	resp := &dto.OccupancyResponse{Items: make([]dto.OccupancyItemDTO, 0, len(occ.rows))}
	for _, r := range occ.rows {
		resp.Items = append(resp.Items, dto.OccupancyItemDTO{
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			CommodityID:   r.CommodityID,
			CommodityName: r.CommodityName,
			OpenLots:      r.OpenLots,
			BagsInStock:   r.BagsInStock,
		})
		resp.TotalBags += r.BagsInStock
	}
	resp.LatestAccrual = latestPerWarehouse(snaps.snaps)
	return resp, nil
}

// latestPerWarehouse conserva la foto más reciente de cada bodega. Entrada ordenada por AsOf desc.
func latestPerWarehouse(snaps []entity.AccrualSnapshot) []dto.AccrualSnapshotDTO {
	seen := map[string]int{}
	out := make([]dto.AccrualSnapshotDTO, 0)
	for _, s := range snaps {
		if seen[s.WarehouseID] >= occupancySnapshots {
			continue
		}
		seen[s.WarehouseID]++
		out = append(out, dto.AccrualSnapshotDTO{
			WarehouseID: s.WarehouseID,
			AsOf:        s.AsOf,
			OpenLots:    s.OpenLots,
			BagsInStock: s.BagsInStock,
			AccruedRent: s.AccruedRent,
			RateMissing: s.RateMissing,
		})
	}
	return out
}
