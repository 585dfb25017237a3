package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// LotKey identifica el saldo de un cliente: mercancía en una bodega.
type LotKey struct {
	CompanyID   string
	CustomerID  string
	CommodityID string
	WarehouseID string
}

// LotFilter filtros opcionales para listar lotes; campos vacíos no filtran.
type LotFilter struct {
	CompanyID   string
	CustomerID  string
	CommodityID string
	WarehouseID string
	OnlyOpen    bool
	Limit       int
	Offset      int
}

// LotRepository define el puerto de persistencia para StorageLot.
// Los lotes nunca se borran físicamente: VoidLot marca deleted_at.
type LotRepository interface {
	Create(ctx context.Context, lot *entity.StorageLot) error
	GetByID(ctx context.Context, id string) (*entity.StorageLot, error)
	// ListOpen devuelve los lotes abiertos de la clave ordenados por (storage_start_date, id).
	ListOpen(ctx context.Context, key LotKey) ([]entity.StorageLot, error)
	// ListOpenForUpdate igual que ListOpen pero bloquea las filas (SELECT FOR UPDATE) en orden FIFO.
	// Solo tiene sentido dentro de una transacción.
	ListOpenForUpdate(ctx context.Context, key LotKey) ([]entity.StorageLot, error)
	List(ctx context.Context, filter LotFilter) ([]entity.StorageLot, error)
	// Update escribe saldo, fecha de fin y deleted_at si la versión coincide con lot.Version,
	// incrementándola. Si otra transacción ganó devuelve domain.ErrConcurrencyConflict.
	Update(ctx context.Context, lot *entity.StorageLot) error
}
