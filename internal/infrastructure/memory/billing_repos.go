package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var (
	_ repository.PaymentRepository = (*PaymentRepo)(nil)
	_ repository.ReportRepository  = (*ReportRepo)(nil)
)

// PaymentRepo implementación en memoria de PaymentRepository.
type PaymentRepo struct{ base }

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.write(func(st *state) error {
		st.payments[p.ID] = *p
		return nil
	})
}

func (r *PaymentRepo) ListByCustomer(_ context.Context, companyID, customerID string, limit, offset int) ([]*entity.Payment, error) {
	var out []*entity.Payment
	r.read(func(st *state) {
		for _, p := range st.payments {
			if p.CompanyID == companyID && p.CustomerID == customerID {
				out = append(out, &p)
			}
		}
	})
	slices.SortFunc(out, func(a, b *entity.Payment) int { return b.PaidAt.Compare(a.PaidAt) })
	return page(out, limit, offset), nil
}

func (r *PaymentRepo) SumByCustomer(_ context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	r.read(func(st *state) {
		for _, p := range st.payments {
			if p.CompanyID == companyID && p.CustomerID == customerID && !p.PaidAt.After(asOf) {
				total = total.Add(p.Amount)
			}
		}
	})
	return total, nil
}

// ReportRepo implementación en memoria de ReportRepository.
type ReportRepo struct{ base }

func (r *ReportRepo) Occupancy(_ context.Context, companyID, warehouseID string) ([]repository.OccupancyRow, error) {
	type key struct{ wh, com string }
	rows := map[key]*repository.OccupancyRow{}
	r.read(func(st *state) {
		for _, l := range st.lots {
			if l.CompanyID != companyID || !l.IsOpen() || warehouseID != "" && l.WarehouseID != warehouseID {
				continue
			}
			k := key{l.WarehouseID, l.CommodityID}
			row, ok := rows[k]
			if !ok {
				row = &repository.OccupancyRow{
					WarehouseID:   l.WarehouseID,
					WarehouseName: st.warehouses[l.WarehouseID].Name,
					CommodityID:   l.CommodityID,
					CommodityName: st.commodities[l.CommodityID].Name,
				}
				rows[k] = row
			}
			row.OpenLots++
			row.BagsInStock += l.BagsRemaining
		}
	})
	out := make([]repository.OccupancyRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b repository.OccupancyRow) int {
		return cmp.Or(cmp.Compare(a.WarehouseName, b.WarehouseName), cmp.Compare(a.CommodityName, b.CommodityName))
	})
	return out, nil
}

func (r *ReportRepo) ListCompaniesWithOpenLots(_ context.Context) ([]string, error) {
	var out []string
	r.read(func(st *state) {
		for _, l := range st.lots {
			if !l.IsOpen() || slices.Contains(out, l.CompanyID) {
				continue
			}
			if c, ok := st.companies[l.CompanyID]; ok && c.Status != "" && c.Status != "active" {
				continue
			}
			out = append(out, l.CompanyID)
		}
	})
	slices.Sort(out)
	return out, nil
}

func (r *ReportRepo) SaveAccrualSnapshot(_ context.Context, s *entity.AccrualSnapshot) error {
	return r.write(func(st *state) error {
		st.snapshots = append(st.snapshots, *s)
		return nil
	})
}

func (r *ReportRepo) ListAccrualSnapshots(_ context.Context, companyID, warehouseID string, limit int) ([]entity.AccrualSnapshot, error) {
	var out []entity.AccrualSnapshot
	r.read(func(st *state) {
		for _, s := range st.snapshots {
			if s.CompanyID == companyID && (warehouseID == "" || s.WarehouseID == warehouseID) {
				out = append(out, s)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b entity.AccrualSnapshot) int { return b.AsOf.Compare(a.AsOf) })
	return page(out, limit, 0), nil
}
