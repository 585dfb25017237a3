package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.WithdrawalRepository = (*WithdrawalRepo)(nil)

// WithdrawalRepo retiros liquidados y sus líneas sobre PostgreSQL (usable con pool o tx).
type WithdrawalRepo struct {
	q Querier
}

// NewWithdrawalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewWithdrawalRepository(q Querier) *WithdrawalRepo {
	return &WithdrawalRepo{q: q}
}

const withdrawalColumns = `
	id, company_id, request_id, customer_id, commodity_id, warehouse_id, quantity, total_rent,
	requested_at, settled_at, created_by, created_at`

const lineColumns = `id, withdrawal_id, lot_id, quantity_taken, rent_charged, days_stored, periods, rate_per_unit`

func scanWithdrawal(row scanner) (entity.Withdrawal, error) {
	var w entity.Withdrawal
	err := row.Scan(
		&w.ID, &w.CompanyID, &w.RequestID, &w.CustomerID, &w.CommodityID, &w.WarehouseID, &w.Quantity, &w.TotalRent,
		&w.RequestedAt, &w.SettledAt, &w.CreatedBy, &w.CreatedAt,
	)
	return w, err
}

// Create persiste el retiro y sus líneas. Debe ejecutarse dentro de la transacción de la liquidación.
func (r *WithdrawalRepo) Create(ctx context.Context, w *entity.Withdrawal) error {
	query := `INSERT INTO withdrawals (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		w.ID, w.CompanyID, w.RequestID, w.CustomerID, w.CommodityID, w.WarehouseID, w.Quantity, w.TotalRent,
		w.RequestedAt, w.SettledAt, w.CreatedBy, w.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) && constraintName(err) == "withdrawals_request_unique" {
			return domain.ErrDuplicateSettlement
		}
		return translate("insert withdrawal", err)
	}

	lineQuery := `INSERT INTO allocation_lines (` + lineColumns + `, line_no) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i, l := range w.Lines {
		if _, err := r.q.Exec(ctx, lineQuery,
			l.ID, w.ID, l.LotID, l.QuantityTaken, l.RentCharged, l.DaysStored, l.Periods, l.RatePerUnit, i+1,
		); err != nil {
			return translate("insert allocation line", err)
		}
	}
	return nil
}

func (r *WithdrawalRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Withdrawal, error) {
	w, err := scanWithdrawal(r.q.QueryRow(ctx, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	if w.Lines, err = r.lines(ctx, w.ID); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WithdrawalRepo) lines(ctx context.Context, withdrawalID string) ([]entity.AllocationLine, error) {
	return r.queryLines(ctx, `SELECT `+lineColumns+` FROM allocation_lines WHERE withdrawal_id = $1 ORDER BY line_no`, withdrawalID)
}

func (r *WithdrawalRepo) queryLines(ctx context.Context, query string, arg any) ([]entity.AllocationLine, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list allocation lines: %w", err)
	}
	defer rows.Close()
	var out []entity.AllocationLine
	for rows.Next() {
		var l entity.AllocationLine
		if err := rows.Scan(&l.ID, &l.WithdrawalID, &l.LotID, &l.QuantityTaken, &l.RentCharged, &l.DaysStored, &l.Periods, &l.RatePerUnit); err != nil {
			return nil, fmt.Errorf("scan allocation line: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("list allocation lines: %w", err)
	}
	return out, nil
}

func (r *WithdrawalRepo) GetByID(ctx context.Context, id string) (*entity.Withdrawal, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *WithdrawalRepo) GetByRequestID(ctx context.Context, companyID, requestID string) (*entity.Withdrawal, error) {
	return r.getOne(ctx, "company_id = $1 AND request_id = $2", companyID, requestID)
}

// List retiros de la empresa, el más reciente primero. Las líneas se cargan en una segunda consulta.
func (r *WithdrawalRepo) List(ctx context.Context, f repository.WithdrawalFilter) ([]*entity.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE company_id = $1`
	args := []any{f.CompanyID}
	pos := 2
	if f.CustomerID != "" {
		query += fmt.Sprintf(" AND customer_id = $%d", pos)
		args = append(args, f.CustomerID)
		pos++
	}
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND settled_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND settled_at <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY settled_at DESC, created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}
	var list []*entity.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan withdrawal: %w", err)
		}
		list = append(list, &w)
	}
	rows.Close()
	if err := rows.Err(); err != nil && !isInvalidID(err) {
		return nil, fmt.Errorf("list withdrawals: %w", err)
	}

	for _, w := range list {
		if w.Lines, err = r.lines(ctx, w.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *WithdrawalRepo) SumRentByCustomer(ctx context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(total_rent), 0) FROM withdrawals
		 WHERE company_id = $1 AND customer_id = $2 AND settled_at <= $3`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, companyID, customerID, asOf).Scan(&total); err != nil {
		if isInvalidID(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("sum rent: %w", err)
	}
	return total, nil
}

func (r *WithdrawalRepo) ListLinesByLot(ctx context.Context, lotID string) ([]entity.AllocationLine, error) {
	return r.queryLines(ctx, `
		SELECT al.id, al.withdrawal_id, al.lot_id, al.quantity_taken, al.rent_charged, al.days_stored, al.periods, al.rate_per_unit
		  FROM allocation_lines al JOIN withdrawals w ON w.id = al.withdrawal_id
		 WHERE al.lot_id = $1 ORDER BY w.settled_at, w.created_at, al.line_no`, lotID)
}
