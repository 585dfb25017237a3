// Package memory implementa los puertos de persistencia en memoria.
// Pensado para desarrollo local y tests de un solo proceso: las transacciones se
// serializan con un mutex y trabajan sobre una copia del estado que se publica en el commit.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var _ ledger.TxRunner = (*Store)(nil)

type state struct {
	companies   map[string]entity.Company
	modules     map[string][]entity.CompanyModule
	customers   map[string]entity.Customer
	warehouses  map[string]entity.Warehouse
	commodities map[string]entity.Commodity
	lots        map[string]entity.StorageLot
	withdrawals map[string]entity.Withdrawal
	schedules   map[string]entity.RateSchedule
	payments    map[string]entity.Payment
	snapshots   []entity.AccrualSnapshot
}

func newState() *state {
	return &state{
		companies:   make(map[string]entity.Company),
		modules:     make(map[string][]entity.CompanyModule),
		customers:   make(map[string]entity.Customer),
		warehouses:  make(map[string]entity.Warehouse),
		commodities: make(map[string]entity.Commodity),
		lots:        make(map[string]entity.StorageLot),
		withdrawals: make(map[string]entity.Withdrawal),
		schedules:   make(map[string]entity.RateSchedule),
		payments:    make(map[string]entity.Payment),
	}
}

// clone copia profunda: slices internos incluidos, para que un rollback no deje rastro.
func (s *state) clone() *state {
	c := &state{
		companies:   maps.Clone(s.companies),
		modules:     make(map[string][]entity.CompanyModule, len(s.modules)),
		customers:   maps.Clone(s.customers),
		warehouses:  maps.Clone(s.warehouses),
		commodities: maps.Clone(s.commodities),
		lots:        maps.Clone(s.lots),
		withdrawals: make(map[string]entity.Withdrawal, len(s.withdrawals)),
		schedules:   make(map[string]entity.RateSchedule, len(s.schedules)),
		payments:    maps.Clone(s.payments),
		snapshots:   slices.Clone(s.snapshots),
	}
	for k, v := range s.modules {
		c.modules[k] = slices.Clone(v)
	}
	for k, w := range s.withdrawals {
		w.Lines = slices.Clone(w.Lines)
		c.withdrawals[k] = w
	}
	for k, rs := range s.schedules {
		rs.Tiers = slices.Clone(rs.Tiers)
		c.schedules[k] = rs
	}
	return c
}

// Store almacén en memoria. Implementa todos los repositorios y ledger.TxRunner.
type Store struct {
	mu   sync.RWMutex // protege st
	txMu sync.Mutex   // serializa escritores: transacciones y escrituras sueltas
	st   *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn sobre una copia del estado; si fn no falla la copia reemplaza al estado (commit).
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	withdrawalRepo repository.WithdrawalRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	tx := s.st.clone()
	s.mu.RUnlock()

	b := base{s: s, tx: tx}
	if err := fn(&LotRepo{base: b}, &WithdrawalRepo{base: b}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = tx
	s.mu.Unlock()
	return nil
}

// Repositorios atados al estado global (fuera de transacción).

func (s *Store) Companies() *CompanyRepo { return &CompanyRepo{base: base{s: s}} }
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{base: base{s: s}} }
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{base: base{s: s}} }
func (s *Store) Commodities() *CommodityRepo { return &CommodityRepo{base: base{s: s}} }
func (s *Store) Lots() *LotRepo { return &LotRepo{base: base{s: s}} }
func (s *Store) Withdrawals() *WithdrawalRepo { return &WithdrawalRepo{base: base{s: s}} }
func (s *Store) RateSchedules() *RateScheduleRepo { return &RateScheduleRepo{base: base{s: s}} }
func (s *Store) Payments() *PaymentRepo { return &PaymentRepo{base: base{s: s}} }
func (s *Store) Reports() *ReportRepo { return &ReportRepo{base: base{s: s}} }

// base resuelve sobre qué estado opera un repo: el de la tx en curso o el global.
type base struct {
	s  *Store
	tx *state
}

func (b base) read(fn func(st *state)) {
	if b.tx != nil {
		fn(b.tx)
		return
	}
	b.s.mu.RLock()
	defer b.s.mu.RUnlock()
	fn(b.s.st)
}

func (b base) write(fn func(st *state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.s.txMu.Lock()
	defer b.s.txMu.Unlock()
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return fn(b.s.st)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
