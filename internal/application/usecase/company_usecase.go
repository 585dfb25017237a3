package usecase

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// CompanyUseCase alta y consulta de empresas (tenants) con sus módulos.
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create crea una empresa y activa sus módulos (todos si no se indican).
// Devuelve domain.ErrDuplicate si el NIT ya existe.
func (uc *CompanyUseCase) Create(ctx context.Context, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	modules := in.Modules
	if len(modules) == 0 {
		modules = entity.AllModules
	}
	for _, m := range modules {
		if !slices.Contains(entity.AllModules, m) {
			return nil, domain.ErrInvalidInput
		}
	}
	existing, err := uc.repo.GetByTaxID(ctx, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      in.Name,
		TaxID:     in.TaxID,
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	if err := uc.repo.ActivateModules(ctx, company.ID, modules); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company, modules), nil
}

// GetByID obtiene una empresa con sus módulos activos.
func (uc *CompanyUseCase) GetByID(ctx context.Context, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	mods, err := uc.repo.ListModules(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	active := make([]string, 0, len(mods))
	for _, m := range mods {
		if m.ActiveAt(now) {
			active = append(active, m.ModuleName)
		}
	}
	return entityToCompanyResponse(company, active), nil
}

// List lista empresas con paginación.
func (uc *CompanyUseCase) List(ctx context.Context, limit, offset int) (*dto.CompanyListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCompanyResponse(c, nil))
	}
	return &dto.CompanyListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToCompanyResponse(c *entity.Company, modules []string) *dto.CompanyResponse {
	if modules == nil {
		modules = []string{}
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Address:   c.Address,
		Phone:     c.Phone,
		Email:     c.Email,
		Status:    c.Status,
		Modules:   modules,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
