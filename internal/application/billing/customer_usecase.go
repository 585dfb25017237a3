package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// CustomerUseCase casos de uso para clientes (depositantes).
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase construye el caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create crea un nuevo cliente. El NIT/CC es único por empresa.
func (uc *CustomerUseCase) Create(ctx context.Context, companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.TaxID = strings.TrimSpace(in.TaxID)
	if in.Name == "" || in.TaxID == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByCompanyAndTaxID(ctx, companyID, in.TaxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return toCustomerResponse(customer), nil
}

// GetByID obtiene un cliente de la empresa.
func (uc *CustomerUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.CustomerResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || c.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return toCustomerResponse(c), nil
}

// List lista clientes de la empresa.
func (uc *CustomerUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.CustomerListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}
