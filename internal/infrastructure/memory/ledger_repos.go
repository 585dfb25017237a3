package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	ledgercore "github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var (
	_ repository.LotRepository          = (*LotRepo)(nil)
	_ repository.WithdrawalRepository   = (*WithdrawalRepo)(nil)
	_ repository.RateScheduleRepository = (*RateScheduleRepo)(nil)
)

// ── Lotes ─────────────────────────────────────────────────────────────────────

// LotRepo implementación en memoria de LotRepository.
type LotRepo struct{ base }

func (r *LotRepo) Create(_ context.Context, lot *entity.StorageLot) error {
	return r.write(func(st *state) error {
		if _, ok := st.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		if lot.Version == 0 {
			lot.Version = 1
		}
		st.lots[lot.ID] = *lot
		return nil
	})
}

func (r *LotRepo) GetByID(_ context.Context, id string) (*entity.StorageLot, error) {
	var out *entity.StorageLot
	r.read(func(st *state) {
		if l, ok := st.lots[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *LotRepo) ListOpen(_ context.Context, key repository.LotKey) ([]entity.StorageLot, error) {
	var out []entity.StorageLot
	r.read(func(st *state) {
		for _, l := range st.lots {
			if l.IsOpen() && matchesKey(l, key) {
				out = append(out, l)
			}
		}
	})
	return ledgercore.SortFIFO(out), nil
}

// ListOpenForUpdate dentro de Run el mutex de transacciones ya serializa a los escritores.
func (r *LotRepo) ListOpenForUpdate(ctx context.Context, key repository.LotKey) ([]entity.StorageLot, error) {
	return r.ListOpen(ctx, key)
}

func (r *LotRepo) List(_ context.Context, f repository.LotFilter) ([]entity.StorageLot, error) {
	var out []entity.StorageLot
	r.read(func(st *state) {
		for _, l := range st.lots {
			if f.CompanyID != "" && l.CompanyID != f.CompanyID ||
				f.CustomerID != "" && l.CustomerID != f.CustomerID ||
				f.CommodityID != "" && l.CommodityID != f.CommodityID ||
				f.WarehouseID != "" && l.WarehouseID != f.WarehouseID ||
				f.OnlyOpen && !l.IsOpen() {
				continue
			}
			out = append(out, l)
		}
	})
	return page(ledgercore.SortFIFO(out), f.Limit, f.Offset), nil
}

func (r *LotRepo) Update(_ context.Context, lot *entity.StorageLot) error {
	return r.write(func(st *state) error {
		cur, ok := st.lots[lot.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.Version != lot.Version {
			return fmt.Errorf("%w: lote %s versión %d, se esperaba %d", domain.ErrConcurrencyConflict, lot.ID, cur.Version, lot.Version)
		}
		if lot.BagsRemaining < 0 || lot.BagsRemaining > cur.BagsStored {
			return fmt.Errorf("%w: saldo %d fuera de rango", domain.ErrInvalidInput, lot.BagsRemaining)
		}
		cur.BagsRemaining = lot.BagsRemaining
		cur.StorageEndDate = lot.StorageEndDate
		cur.DeletedAt = lot.DeletedAt
		cur.UpdatedAt = lot.UpdatedAt
		cur.Version++
		st.lots[lot.ID] = cur
		lot.Version = cur.Version
		return nil
	})
}

func matchesKey(l entity.StorageLot, key repository.LotKey) bool {
	return l.CompanyID == key.CompanyID &&
		l.CustomerID == key.CustomerID &&
		l.CommodityID == key.CommodityID &&
		l.WarehouseID == key.WarehouseID
}

// ── Retiros ───────────────────────────────────────────────────────────────────

// WithdrawalRepo implementación en memoria de WithdrawalRepository.
type WithdrawalRepo struct{ base }

func (r *WithdrawalRepo) Create(_ context.Context, w *entity.Withdrawal) error {
	return r.write(func(st *state) error {
		for _, prev := range st.withdrawals {
			if prev.CompanyID == w.CompanyID && prev.RequestID == w.RequestID {
				return domain.ErrDuplicateSettlement
			}
		}
		stored := *w
		stored.Lines = slices.Clone(w.Lines)
		st.withdrawals[w.ID] = stored
		return nil
	})
}

func (r *WithdrawalRepo) GetByID(_ context.Context, id string) (*entity.Withdrawal, error) {
	var out *entity.Withdrawal
	r.read(func(st *state) {
		if w, ok := st.withdrawals[id]; ok {
			w.Lines = slices.Clone(w.Lines)
			out = &w
		}
	})
	return out, nil
}

func (r *WithdrawalRepo) GetByRequestID(_ context.Context, companyID, requestID string) (*entity.Withdrawal, error) {
	var out *entity.Withdrawal
	r.read(func(st *state) {
		for _, w := range st.withdrawals {
			if w.CompanyID == companyID && w.RequestID == requestID {
				w.Lines = slices.Clone(w.Lines)
				out = &w
				return
			}
		}
	})
	return out, nil
}

func (r *WithdrawalRepo) List(_ context.Context, f repository.WithdrawalFilter) ([]*entity.Withdrawal, error) {
	var out []*entity.Withdrawal
	r.read(func(st *state) {
		for _, w := range st.withdrawals {
			if w.CompanyID != f.CompanyID ||
				f.CustomerID != "" && w.CustomerID != f.CustomerID ||
				f.WarehouseID != "" && w.WarehouseID != f.WarehouseID ||
				f.From != nil && w.SettledAt.Before(*f.From) ||
				f.To != nil && w.SettledAt.After(*f.To) {
				continue
			}
			w.Lines = slices.Clone(w.Lines)
			out = append(out, &w)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SettledAt.Equal(out[j].SettledAt) {
			return out[i].SettledAt.After(out[j].SettledAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *WithdrawalRepo) SumRentByCustomer(_ context.Context, companyID, customerID string, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	r.read(func(st *state) {
		for _, w := range st.withdrawals {
			if w.CompanyID == companyID && w.CustomerID == customerID && !w.SettledAt.After(asOf) {
				total = total.Add(w.TotalRent)
			}
		}
	})
	return total, nil
}

// ListLinesByLot mismo orden que postgres: settled_at, created_at y posición de la línea.
func (r *WithdrawalRepo) ListLinesByLot(_ context.Context, lotID string) ([]entity.AllocationLine, error) {
	type debit struct {
		w    entity.Withdrawal
		pos  int
		line entity.AllocationLine
	}
	var debits []debit
	r.read(func(st *state) {
		for _, w := range st.withdrawals {
			for i, l := range w.Lines {
				if l.LotID == lotID {
					debits = append(debits, debit{w: w, pos: i, line: l})
				}
			}
		}
	})
	sort.Slice(debits, func(i, j int) bool {
		a, b := debits[i], debits[j]
		if !a.w.SettledAt.Equal(b.w.SettledAt) {
			return a.w.SettledAt.Before(b.w.SettledAt)
		}
		if !a.w.CreatedAt.Equal(b.w.CreatedAt) {
			return a.w.CreatedAt.Before(b.w.CreatedAt)
		}
		if a.w.ID != b.w.ID {
			return a.w.ID < b.w.ID
		}
		return a.pos < b.pos
	})
	out := make([]entity.AllocationLine, 0, len(debits))
	for _, d := range debits {
		d.line.WithdrawalID = d.w.ID
		out = append(out, d.line)
	}
	return out, nil
}

// ── Tarifas ───────────────────────────────────────────────────────────────────

// RateScheduleRepo implementación en memoria de RateScheduleRepository.
type RateScheduleRepo struct{ base }

func (r *RateScheduleRepo) Get(_ context.Context, warehouseID string) (*entity.RateSchedule, error) {
	var out *entity.RateSchedule
	r.read(func(st *state) {
		if rs, ok := st.schedules[warehouseID]; ok {
			rs.Tiers = slices.Clone(rs.Tiers)
			out = &rs
		}
	})
	return out, nil
}

func (r *RateScheduleRepo) Put(_ context.Context, schedule *entity.RateSchedule) error {
	return r.write(func(st *state) error {
		rs := *schedule
		rs.Tiers = ledgercore.SortedTiers(schedule.Tiers)
		st.schedules[schedule.WarehouseID] = rs
		return nil
	})
}
