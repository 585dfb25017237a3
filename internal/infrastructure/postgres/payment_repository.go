package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo abonos de clientes sobre PostgreSQL.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador.
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

func (r *PaymentRepo) Create(ctx context.Context, p *entity.Payment) error {
	const query = `
		INSERT INTO payments (id, company_id, customer_id, amount, method, reference, paid_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.CustomerID, p.Amount, p.Method, p.Reference, p.PaidAt, p.CreatedBy, p.CreatedAt,
	)
	return translate("insert payment", err)
}

func (r *PaymentRepo) ListByCustomer(ctx context.Context, companyID, customerID string, limit, offset int) ([]*entity.Payment, error) {
	const query = `
		SELECT id, company_id, customer_id, amount, method, reference, paid_at, created_by, created_at
		  FROM payments WHERE company_id = $1 AND customer_id = $2
		 ORDER BY paid_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, companyID, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		var p entity.Payment
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.CustomerID, &p.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

func (r *PaymentRepo) SumByCustomer(ctx context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE company_id = $1 AND customer_id = $2 AND paid_at <= $3`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, customerID, asOf).Scan(&total); err != nil {
		if isInvalidID(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("sum payments: %w", err)
	}
	return total, nil
}
