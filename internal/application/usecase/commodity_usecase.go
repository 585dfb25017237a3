package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
	"github.com/jhoicas/Rentabodega-api/pkg/textnorm"
)

const defaultCommodityUnit = "bag"

// CommodityUseCase catálogo de mercancías de la empresa.
type CommodityUseCase struct {
	repo repository.CommodityRepository
}

// NewCommodityUseCase construye el caso de uso.
func NewCommodityUseCase(repo repository.CommodityRepository) *CommodityUseCase {
	return &CommodityUseCase{repo: repo}
}

// Create registra una mercancía. El nombre se normaliza y es único por empresa.
func (uc *CommodityUseCase) Create(ctx context.Context, companyID string, in dto.CreateCommodityRequest) (*dto.CommodityResponse, error) {
	name := textnorm.Name(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByName(ctx, companyID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	unit := in.Unit
	if unit == "" {
		unit = defaultCommodityUnit
	}
	c := &entity.Commodity{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Unit:      unit,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCommodityResponse(c), nil
}

// GetByID obtiene una mercancía de la empresa.
func (uc *CommodityUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CommodityResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toCommodityResponse(c), nil
}

// List lista mercancías de la empresa.
func (uc *CommodityUseCase) List(ctx context.Context, companyID string, limit, offset int) ([]dto.CommodityResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CommodityResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toCommodityResponse(c))
	}
	return out, nil
}

func toCommodityResponse(c *entity.Commodity) *dto.CommodityResponse {
	return &dto.CommodityResponse{ID: c.ID, Name: c.Name, Unit: c.Unit, CreatedAt: c.CreatedAt}
}
