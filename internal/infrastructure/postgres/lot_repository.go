package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `
	id, company_id, customer_id, commodity_id, warehouse_id, bags_stored, bags_remaining,
	storage_start_date, storage_end_date, rate_per_unit, deleted_at, version, created_by, created_at, updated_at`

// orden FIFO: fecha de ingreso y luego id.
const lotFIFO = ` ORDER BY storage_start_date, id`

const openLotPredicate = ` AND storage_end_date IS NULL AND deleted_at IS NULL AND bags_remaining > 0`

type scanner interface {
	Scan(dest ...any) error
}

func scanLot(row scanner) (entity.StorageLot, error) {
	var l entity.StorageLot
	err := row.Scan(
		&l.ID, &l.CompanyID, &l.CustomerID, &l.CommodityID, &l.WarehouseID, &l.BagsStored, &l.BagsRemaining,
		&l.StorageStartDate, &l.StorageEndDate, &l.RatePerUnit, &l.DeletedAt, &l.Version, &l.CreatedBy,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

// Create persiste un lote nuevo.
func (r *LotRepo) Create(ctx context.Context, lot *entity.StorageLot) error {
	if lot.Version == 0 {
		lot.Version = 1
	}
	query := `INSERT INTO storage_lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		lot.ID, lot.CompanyID, lot.CustomerID, lot.CommodityID, lot.WarehouseID, lot.BagsStored, lot.BagsRemaining,
		lot.StorageStartDate, lot.StorageEndDate, lot.RatePerUnit, lot.DeletedAt, lot.Version, lot.CreatedBy,
		lot.CreatedAt, lot.UpdatedAt,
	)
	return translate("insert lot", err)
}

// GetByID obtiene un lote por ID, anulado o no.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.StorageLot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, `SELECT `+lotColumns+` FROM storage_lots WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// ListOpen lotes abiertos de la clave en orden FIFO.
func (r *LotRepo) ListOpen(ctx context.Context, key repository.LotKey) ([]entity.StorageLot, error) {
	return r.listOpen(ctx, key, "")
}

// ListOpenForUpdate bloquea las filas en orden FIFO: dos retiros concurrentes sobre el mismo
// saldo toman los locks en el mismo orden y el segundo espera al commit del primero.
func (r *LotRepo) ListOpenForUpdate(ctx context.Context, key repository.LotKey) ([]entity.StorageLot, error) {
	return r.listOpen(ctx, key, " FOR UPDATE")
}

func (r *LotRepo) listOpen(ctx context.Context, key repository.LotKey, lock string) ([]entity.StorageLot, error) {
	query := `SELECT ` + lotColumns + ` FROM storage_lots
		WHERE company_id = $1 AND customer_id = $2 AND commodity_id = $3 AND warehouse_id = $4` +
		openLotPredicate + lotFIFO + lock
	rows, err := r.q.Query(ctx, query, key.CompanyID, key.CustomerID, key.CommodityID, key.WarehouseID)
	if err != nil {
		return nil, translate("list open lots", err)
	}
	defer rows.Close()

	var list []entity.StorageLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, translate("list open lots", err)
	}
	return list, nil
}

// List lotes con filtros opcionales, en orden FIFO.
func (r *LotRepo) List(ctx context.Context, f repository.LotFilter) ([]entity.StorageLot, error) {
	query := `SELECT ` + lotColumns + ` FROM storage_lots WHERE company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	for _, cond := range []struct{ col, val string }{
		{"customer_id", f.CustomerID},
		{"commodity_id", f.CommodityID},
		{"warehouse_id", f.WarehouseID},
	} {
		if cond.val == "" {
			continue
		}
		query += fmt.Sprintf(" AND %s = $%d", cond.col, pos)
		args = append(args, cond.val)
		pos++
	}
	if f.OnlyOpen {
		query += openLotPredicate
	}
	query += lotFIFO
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []entity.StorageLot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return list, nil
}

// Update escribe saldo, cierre y anulación si la versión no cambió desde la lectura.
func (r *LotRepo) Update(ctx context.Context, lot *entity.StorageLot) error {
	const query = `
		UPDATE storage_lots
		   SET bags_remaining = $2, storage_end_date = $3, deleted_at = $4,
		       updated_at = $5, version = version + 1
		 WHERE id = $1 AND version = $6
		RETURNING version`
	var version int64
	err := r.q.QueryRow(ctx, query,
		lot.ID, lot.BagsRemaining, lot.StorageEndDate, lot.DeletedAt, lot.UpdatedAt, lot.Version,
	).Scan(&version)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("%w: lote %s versión %d", domain.ErrConcurrencyConflict, lot.ID, lot.Version)
		}
		return translate("update lot", err)
	}
	lot.Version = version
	return nil
}
