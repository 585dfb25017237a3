package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// WithdrawalFilter filtros para listar liquidaciones; campos vacíos no filtran.
type WithdrawalFilter struct {
	CompanyID   string
	CustomerID  string
	WarehouseID string
	From, To    *time.Time
	Limit       int
	Offset      int
}

// WithdrawalRepository define el puerto de persistencia para retiros liquidados y sus líneas.
type WithdrawalRepository interface {
	// Create persiste el retiro y sus líneas. Un request_id repetido en la empresa
	// devuelve domain.ErrDuplicateSettlement.
	Create(ctx context.Context, w *entity.Withdrawal) error
	GetByID(ctx context.Context, id string) (*entity.Withdrawal, error)
	GetByRequestID(ctx context.Context, companyID, requestID string) (*entity.Withdrawal, error)
	List(ctx context.Context, filter WithdrawalFilter) ([]*entity.Withdrawal, error)
	// SumRentByCustomer total de arriendo liquidado al cliente con settled_at <= asOf.
	SumRentByCustomer(ctx context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error)
	// ListLinesByLot líneas que debitaron un lote (auditoría).
	ListLinesByLot(ctx context.Context, lotID string) ([]entity.AllocationLine, error)
}
