package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.RateScheduleRepository = (*RateScheduleRepo)(nil)

// RateScheduleRepo tarifas escalonadas por bodega (tabla rate_tiers).
type RateScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewRateScheduleRepository construye el adaptador. Put necesita el pool para abrir su propia tx.
func NewRateScheduleRepository(pool *pgxpool.Pool) *RateScheduleRepo {
	return &RateScheduleRepo{pool: pool}
}

// Get devuelve nil, nil si la bodega no tiene tramos.
func (r *RateScheduleRepo) Get(ctx context.Context, warehouseID string) (*entity.RateSchedule, error) {
	const query = `
		SELECT company_id, threshold_days, period_days, rate_per_unit_per_period, updated_at
		  FROM rate_tiers WHERE warehouse_id = $1 ORDER BY threshold_days`
	rows, err := r.pool.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("get rate schedule: %w", err)
	}
	defer rows.Close()

	var rs *entity.RateSchedule
	for rows.Next() {
		if rs == nil {
			rs = &entity.RateSchedule{WarehouseID: warehouseID}
		}
		var t entity.RateTier
		if err := rows.Scan(&rs.CompanyID, &t.ThresholdDays, &t.PeriodDays, &t.RatePerUnitPerPeriod, &rs.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rate tier: %w", err)
		}
		rs.Tiers = append(rs.Tiers, t)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rate schedule: %w", err)
	}
	return rs, nil
}

// Put reemplaza todos los tramos de la bodega en una sola transacción.
func (r *RateScheduleRepo) Put(ctx context.Context, schedule *entity.RateSchedule) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM rate_tiers WHERE warehouse_id = $1`, schedule.WarehouseID); err != nil {
			return translate("delete rate tiers", err)
		}
		const insert = `
			INSERT INTO rate_tiers (warehouse_id, company_id, threshold_days, period_days, rate_per_unit_per_period, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
		for _, t := range schedule.Tiers {
			if _, err := tx.Exec(ctx, insert,
				schedule.WarehouseID, schedule.CompanyID, t.ThresholdDays, t.PeriodDays, t.RatePerUnitPerPeriod, schedule.UpdatedAt,
			); err != nil {
				return translate("insert rate tier", err)
			}
		}
		return nil
	})
}
