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

// WarehouseUseCase casos de uso CRUD para bodegas.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// Create crea una nueva bodega.
func (uc *WarehouseUseCase) Create(ctx context.Context, companyID string, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	name := textnorm.Name(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega de la empresa.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// Update actualiza nombre y/o dirección de una bodega.
func (uc *WarehouseUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateWarehouseRequest) (*dto.WarehouseResponse, error) {
	warehouse, err := uc.owned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := textnorm.Name(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		warehouse.Name = name
	}
	if in.Address != nil {
		warehouse.Address = *in.Address
	}
	warehouse.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas por empresa con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una bodega sin lotes. Con lotes registrados devuelve domain.ErrConflict.
func (uc *WarehouseUseCase) Delete(ctx context.Context, companyID, id string) error {
	if _, err := uc.owned(ctx, companyID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *WarehouseUseCase) owned(ctx context.Context, companyID, id string) (*entity.Warehouse, error) {
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil || warehouse.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return warehouse, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
