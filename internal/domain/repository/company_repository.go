package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// La implementación vive en infrastructure.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, id string) (*entity.Company, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
	List(ctx context.Context, limit, offset int) ([]*entity.Company, error)
	// ActivateModules crea o reactiva los módulos indicados para la empresa.
	ActivateModules(ctx context.Context, companyID string, modules []string) error
	ListModules(ctx context.Context, companyID string) ([]entity.CompanyModule, error)
	HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error)
}
