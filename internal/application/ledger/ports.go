package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza que lectura de lotes, asignación y escritura de saldos sean atómicas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		withdrawalRepo repository.WithdrawalRepository,
	) error) error
}

// References repos de datos maestros contra los que se validan lotes y retiros.
type References struct {
	Customers   repository.CustomerRepository
	Commodities repository.CommodityRepository
	Warehouses  repository.WarehouseRepository
}

// Check verifica que cliente, mercancía y bodega existan y pertenezcan a la empresa.
// Una referencia de otra empresa se reporta igual que una inexistente.
func (r References) Check(ctx context.Context, companyID, customerID, commodityID, warehouseID string) error {
	customer, err := r.Customers.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if customer == nil || customer.CompanyID != companyID {
		return fmt.Errorf("%w: cliente %s", domain.ErrNotFound, customerID)
	}
	commodity, err := r.Commodities.GetByID(ctx, commodityID)
	if err != nil {
		return err
	}
	if commodity == nil || commodity.CompanyID != companyID {
		return fmt.Errorf("%w: mercancía %s", domain.ErrNotFound, commodityID)
	}
	wh, err := r.Warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, warehouseID)
	}
	return nil
}
