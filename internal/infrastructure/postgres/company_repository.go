package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// Asegura que CompanyRepo implementa repository.CompanyRepository.
var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador de persistencia para empresas.
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, tax_id, address, phone, email, status, created_at, updated_at`

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	query := `INSERT INTO companies (` + companyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.TaxID, company.Address,
		company.Phone, company.Email, company.Status,
		company.CreatedAt, company.UpdatedAt,
	)
	return translate("insert company", err)
}

func (r *CompanyRepo) getOne(ctx context.Context, where string, arg any) (*entity.Company, error) {
	var c entity.Company
	err := r.q.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE `+where, arg).Scan(
		&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.Status,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// GetByID obtiene una empresa por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	return r.getOne(ctx, "id = $1", id)
}

// GetByTaxID obtiene una empresa por NIT.
func (r *CompanyRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error) {
	return r.getOne(ctx, "tax_id = $1", taxID)
}

// Update actualiza una empresa existente.
func (r *CompanyRepo) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, tax_id = $3, address = $4, phone = $5, email = $6, status = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		company.ID, company.Name, company.TaxID, company.Address,
		company.Phone, company.Email, company.Status, company.UpdatedAt,
	)
	return translate("update company", err)
}

// List devuelve empresas con paginación.
func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var list []*entity.Company
	for rows.Next() {
		var c entity.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.TaxID, &c.Address, &c.Phone, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// ActivateModules crea o reactiva los módulos indicados.
func (r *CompanyRepo) ActivateModules(ctx context.Context, companyID string, modules []string) error {
	const query = `
		INSERT INTO company_modules (company_id, module_name, is_active, activated_at)
		VALUES ($1, $2, true, $3)
		ON CONFLICT (company_id, module_name)
		DO UPDATE SET is_active = true, activated_at = EXCLUDED.activated_at, expires_at = NULL`
	now := time.Now()
	for _, m := range modules {
		if _, err := r.q.Exec(ctx, query, companyID, m, now); err != nil {
			return translate("activate module "+m, err)
		}
	}
	return nil
}

// ListModules módulos registrados de la empresa, activos o no.
func (r *CompanyRepo) ListModules(ctx context.Context, companyID string) ([]entity.CompanyModule, error) {
	const query = `
		SELECT company_id, module_name, is_active, activated_at, expires_at
		FROM company_modules WHERE company_id = $1 ORDER BY module_name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var out []entity.CompanyModule
	for rows.Next() {
		var m entity.CompanyModule
		if err := rows.Scan(&m.CompanyID, &m.ModuleName, &m.IsActive, &m.ActivatedAt, &m.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Consulta directamente company_modules para una respuesta O(1) vía índice.
func (r *CompanyRepo) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM company_modules
			 WHERE company_id  = $1
			   AND module_name = $2
			   AND is_active   = true
			   AND (expires_at IS NULL OR expires_at > now())
		)`
	var active bool
	if err := r.q.QueryRow(ctx, query, companyID, moduleName).Scan(&active); err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("check module %s: %w", moduleName, err)
	}
	return active, nil
}
