package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ repository.CommodityRepository = (*CommodityRepo)(nil)

// CommodityRepo tipos de mercancía sobre PostgreSQL.
type CommodityRepo struct {
	q Querier
}

// NewCommodityRepository construye el adaptador.
func NewCommodityRepository(q Querier) *CommodityRepo {
	return &CommodityRepo{q: q}
}

func (r *CommodityRepo) Create(ctx context.Context, c *entity.Commodity) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO commodities (id, company_id, name, unit, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.CompanyID, c.Name, c.Unit, c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert commodity: %w", err)
	}
	return nil
}

func (r *CommodityRepo) getOne(ctx context.Context, where string, args ...any) (*entity.Commodity, error) {
	var c entity.Commodity
	err := r.q.QueryRow(ctx, `SELECT id, company_id, name, unit, created_at FROM commodities WHERE `+where, args...).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Unit, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get commodity: %w", err)
	}
	return &c, nil
}

func (r *CommodityRepo) GetByID(ctx context.Context, id string) (*entity.Commodity, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByName compara sin distinguir mayúsculas; los nombres llegan normalizados.
func (r *CommodityRepo) GetByName(ctx context.Context, companyID, name string) (*entity.Commodity, error) {
	return r.getOne(ctx, "company_id = $1 AND lower(name) = lower($2)", companyID, name)
}

func (r *CommodityRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Commodity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, company_id, name, unit, created_at FROM commodities WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		companyID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list commodities: %w", err)
	}
	defer rows.Close()
	var list []*entity.Commodity
	for rows.Next() {
		var c entity.Commodity
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Unit, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan commodity: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}
