package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// PaymentRepository define el puerto de persistencia para abonos de clientes.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByCustomer(ctx context.Context, companyID, customerID string, limit, offset int) ([]*entity.Payment, error)
	SumByCustomer(ctx context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error)
}
