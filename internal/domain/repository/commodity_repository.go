package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// CommodityRepository define el puerto de persistencia para tipos de mercancía.
type CommodityRepository interface {
	Create(ctx context.Context, commodity *entity.Commodity) error
	GetByID(ctx context.Context, id string) (*entity.Commodity, error)
	GetByName(ctx context.Context, companyID, name string) (*entity.Commodity, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Commodity, error)
}
