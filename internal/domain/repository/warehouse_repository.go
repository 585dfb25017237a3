package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error)
	// Delete falla con domain.ErrConflict si la bodega tiene lotes registrados.
	Delete(ctx context.Context, id string) error
}
