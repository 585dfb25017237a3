package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas read-only de ocupación y fotos de causación.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el adaptador.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

// Occupancy bultos en bodega agrupados por bodega y mercancía. warehouseID vacío = todas.
func (r *ReportRepo) Occupancy(ctx context.Context, companyID, warehouseID string) ([]repository.OccupancyRow, error) {
	query := `
		SELECT l.warehouse_id, w.name, l.commodity_id, c.name,
		       COUNT(*)::int, COALESCE(SUM(l.bags_remaining), 0)::bigint
		  FROM storage_lots l
		  JOIN warehouses  w ON w.id = l.warehouse_id
		  JOIN commodities c ON c.id = l.commodity_id
		 WHERE l.company_id = $1
		   AND l.storage_end_date IS NULL AND l.deleted_at IS NULL AND l.bags_remaining > 0`
	args := []any{companyID}
	if warehouseID != "" {
		query += ` AND l.warehouse_id = $2`
		args = append(args, warehouseID)
	}
	query += ` GROUP BY l.warehouse_id, w.name, l.commodity_id, c.name ORDER BY w.name, c.name`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	defer rows.Close()
	var out []repository.OccupancyRow
	for rows.Next() {
		var row repository.OccupancyRow
		if err := rows.Scan(&row.WarehouseID, &row.WarehouseName, &row.CommodityID, &row.CommodityName, &row.OpenLots, &row.BagsInStock); err != nil {
			return nil, fmt.Errorf("scan occupancy: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("occupancy: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) ListCompaniesWithOpenLots(ctx context.Context) ([]string, error) {
	const query = `
		SELECT DISTINCT l.company_id
		  FROM storage_lots l JOIN companies c ON c.id = l.company_id
		 WHERE c.status = 'active'
		   AND l.storage_end_date IS NULL AND l.deleted_at IS NULL AND l.bags_remaining > 0
		 ORDER BY l.company_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("companies with open lots: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan company id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *ReportRepo) SaveAccrualSnapshot(ctx context.Context, s *entity.AccrualSnapshot) error {
	const query = `
		INSERT INTO rent_accrual_snapshots (id, company_id, warehouse_id, as_of, open_lots, bags_in_stock, accrued_rent, rate_missing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, s.ID, s.CompanyID, s.WarehouseID, s.AsOf, s.OpenLots, s.BagsInStock, s.AccruedRent, s.RateMissing, s.CreatedAt)
	return translate("insert accrual snapshot", err)
}

// ListAccrualSnapshots fotos más recientes primero. limit <= 0 = sin límite.
func (r *ReportRepo) ListAccrualSnapshots(ctx context.Context, companyID, warehouseID string, limit int) ([]entity.AccrualSnapshot, error) {
	query := `
		SELECT id, company_id, warehouse_id, as_of, open_lots, bags_in_stock, accrued_rent, rate_missing, created_at
		  FROM rent_accrual_snapshots WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if warehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, warehouseID)
		pos++
	}
	query += " ORDER BY as_of DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accrual snapshots: %w", err)
	}
	defer rows.Close()
	var out []entity.AccrualSnapshot
	for rows.Next() {
		var s entity.AccrualSnapshot
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.WarehouseID, &s.AsOf, &s.OpenLots, &s.BagsInStock, &s.AccruedRent, &s.RateMissing, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan accrual snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("list accrual snapshots: %w", err)
	}
	return out, nil
}
