package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega.
func (r *WarehouseRepo) Create(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, company_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(ctx, query,
		warehouse.ID, warehouse.CompanyID, warehouse.Name, warehouse.Address,
		warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	return translate("insert warehouse", err)
}

// GetByID obtiene una bodega por ID.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, query, id).Scan(
		&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(ctx context.Context, warehouse *entity.Warehouse) error {
	query := `UPDATE warehouses SET name = $2, address = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, warehouse.ID, warehouse.Name, warehouse.Address, warehouse.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByCompany lista bodegas de una empresa.
func (r *WarehouseRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, company_id, name, address, created_at, updated_at
		FROM warehouses WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.CompanyID, &w.Name, &w.Address, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// Delete elimina una bodega sin lotes. Con lotes registrados devuelve domain.ErrConflict:
// el historial del libro no se borra.
func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	var hasLots bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM storage_lots WHERE warehouse_id = $1)`, id).Scan(&hasLots); err != nil {
		return translate("delete warehouse", err)
	}
	if hasLots {
		return domain.ErrConflict
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
