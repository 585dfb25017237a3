package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var (
	_ repository.CompanyRepository   = (*CompanyRepo)(nil)
	_ repository.CustomerRepository  = (*CustomerRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.CommodityRepository = (*CommodityRepo)(nil)
)

// ── Empresas ──────────────────────────────────────────────────────────────────

// CompanyRepo implementación en memoria de CompanyRepository.
type CompanyRepo struct{ base }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	return r.write(func(st *state) error {
		for _, prev := range st.companies {
			if prev.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	r.read(func(st *state) {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CompanyRepo) GetByTaxID(_ context.Context, taxID string) (*entity.Company, error) {
	var out *entity.Company
	r.read(func(st *state) {
		for _, c := range st.companies {
			if c.TaxID == taxID {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *CompanyRepo) Update(_ context.Context, c *entity.Company) error {
	return r.write(func(st *state) error {
		if _, ok := st.companies[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) List(_ context.Context, limit, offset int) ([]*entity.Company, error) {
	var out []*entity.Company
	r.read(func(st *state) {
		for _, c := range st.companies {
			out = append(out, &c)
		}
	})
	slices.SortFunc(out, func(a, b *entity.Company) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *CompanyRepo) ActivateModules(_ context.Context, companyID string, modules []string) error {
	now := time.Now()
	return r.write(func(st *state) error {
		current := st.modules[companyID]
		for _, name := range modules {
			idx := slices.IndexFunc(current, func(m entity.CompanyModule) bool { return m.ModuleName == name })
			m := entity.CompanyModule{CompanyID: companyID, ModuleName: name, IsActive: true, ActivatedAt: now}
			if idx >= 0 {
				current[idx] = m
				continue
			}
			current = append(current, m)
		}
		st.modules[companyID] = current
		return nil
	})
}

func (r *CompanyRepo) ListModules(_ context.Context, companyID string) ([]entity.CompanyModule, error) {
	var out []entity.CompanyModule
	r.read(func(st *state) { out = slices.Clone(st.modules[companyID]) })
	return out, nil
}

func (r *CompanyRepo) HasActiveModule(_ context.Context, companyID, moduleName string) (bool, error) {
	now := time.Now()
	active := false
	r.read(func(st *state) {
		active = slices.ContainsFunc(st.modules[companyID], func(m entity.CompanyModule) bool {
			return m.ModuleName == moduleName && m.ActiveAt(now)
		})
	})
	return active, nil
}

// ── Clientes ──────────────────────────────────────────────────────────────────

// CustomerRepo implementación en memoria de CustomerRepository.
type CustomerRepo struct{ base }

func (r *CustomerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.write(func(st *state) error {
		for _, prev := range st.customers {
			if prev.CompanyID == c.CompanyID && prev.TaxID == c.TaxID {
				return domain.ErrDuplicate
			}
		}
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	r.read(func(st *state) {
		if c, ok := st.customers[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CustomerRepo) GetByCompanyAndTaxID(_ context.Context, companyID, taxID string) (*entity.Customer, error) {
	var out *entity.Customer
	r.read(func(st *state) {
		for _, c := range st.customers {
			if c.CompanyID == companyID && c.TaxID == taxID {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *CustomerRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	r.read(func(st *state) {
		for _, c := range st.customers {
			if c.CompanyID == companyID {
				out = append(out, &c)
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.Customer) int { return cmp.Compare(a.Name, b.Name) })
	return page(out, limit, offset), nil
}

func (r *CustomerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.write(func(st *state) error {
		if _, ok := st.customers[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.customers[c.ID] = *c
		return nil
	})
}

// ── Bodegas ───────────────────────────────────────────────────────────────────

// WarehouseRepo implementación en memoria de WarehouseRepository.
type WarehouseRepo struct{ base }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	return r.write(func(st *state) error {
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	var out *entity.Warehouse
	r.read(func(st *state) {
		if w, ok := st.warehouses[id]; ok {
			out = &w
		}
	})
	return out, nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	return r.write(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	r.read(func(st *state) {
		for _, w := range st.warehouses {
			if w.CompanyID == companyID {
				out = append(out, &w)
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.Warehouse) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, limit, offset), nil
}

func (r *WarehouseRepo) Delete(_ context.Context, id string) error {
	return r.write(func(st *state) error {
		for _, l := range st.lots {
			if l.WarehouseID == id {
				return domain.ErrConflict
			}
		}
		delete(st.warehouses, id)
		delete(st.schedules, id)
		return nil
	})
}

// ── Mercancías ────────────────────────────────────────────────────────────────

// CommodityRepo implementación en memoria de CommodityRepository.
type CommodityRepo struct{ base }

func (r *CommodityRepo) Create(_ context.Context, c *entity.Commodity) error {
	return r.write(func(st *state) error {
		for _, prev := range st.commodities {
			if prev.CompanyID == c.CompanyID && strings.EqualFold(prev.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.commodities[c.ID] = *c
		return nil
	})
}

func (r *CommodityRepo) GetByID(_ context.Context, id string) (*entity.Commodity, error) {
	var out *entity.Commodity
	r.read(func(st *state) {
		if c, ok := st.commodities[id]; ok {
			out = &c
		}
	})
	return out, nil
}

func (r *CommodityRepo) GetByName(_ context.Context, companyID, name string) (*entity.Commodity, error) {
	var out *entity.Commodity
	r.read(func(st *state) {
		for _, c := range st.commodities {
			if c.CompanyID == companyID && strings.EqualFold(c.Name, name) {
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *CommodityRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Commodity, error) {
	var out []*entity.Commodity
	r.read(func(st *state) {
		for _, c := range st.commodities {
			if c.CompanyID == companyID {
				out = append(out, &c)
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.Commodity) int { return cmp.Compare(a.Name, b.Name) })
	return page(out, limit, offset), nil
}
