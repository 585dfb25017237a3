package ledger

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// Settlement plan de liquidación de un retiro: líneas con arriendo, lotes actualizados y total.
// Se calcula completo antes de escribir nada; el caller lo aplica dentro de una transacción.
type Settlement struct {
	Lines       []entity.AllocationLine
	UpdatedLots []entity.StorageLot
	TotalRent   decimal.Decimal
	SettledAt   time.Time
}

// ClosedLots cuenta los lotes que quedan cerrados tras aplicar el plan.
func (s *Settlement) ClosedLots() int {
	n := 0
	for _, l := range s.UpdatedLots {
		if l.StorageEndDate != nil {
			n++
		}
	}
	return n
}

// Settle liquida las líneas de asignación contra los lotes fuente a la fecha asOf.
// Por cada línea cobra el arriendo proporcional a lo retirado
// (ComputeRent(lote) * cantidad / saldo, que es tarifa * cantidad * períodos),
// descuenta el saldo y cierra el lote con StorageEndDate = asOf si llega a cero.
// No modifica las entradas. No es idempotente: aplicarlo de nuevo sobre los lotes
// actualizados vuelve a debitar.
func Settle(lines []entity.AllocationLine, lots []entity.StorageLot, asOf time.Time, schedule *entity.RateSchedule) (*Settlement, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}

	current := make(map[string]entity.StorageLot, len(lots))
	for _, l := range lots {
		current[l.ID] = l
	}

	order := make([]string, 0, len(lines))
	out := &Settlement{
		Lines:     make([]entity.AllocationLine, 0, len(lines)),
		TotalRent: decimal.Zero,
		SettledAt: asOf,
	}

	for _, line := range lines {
		lot, ok := current[line.LotID]
		if !ok {
			return nil, fmt.Errorf("%w: lote %s", domain.ErrNotFound, line.LotID)
		}
		if !lot.IsOpen() {
			return nil, fmt.Errorf("%w: %s", domain.ErrLotClosed, lot.ID)
		}
		if line.QuantityTaken <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if line.QuantityTaken > lot.BagsRemaining {
			return nil, &domain.InsufficientSupplyError{Requested: line.QuantityTaken, Available: lot.BagsRemaining}
		}

		quote, err := QuoteRent(lot.StorageStartDate, lot.RatePerUnit, line.QuantityTaken, asOf, schedule)
		if err != nil {
			return nil, err
		}

		settled := line
		settled.RentCharged = quote.Amount
		settled.DaysStored = quote.DaysStored
		settled.Periods = quote.Periods
		settled.RatePerUnit = quote.RatePerUnit
		out.Lines = append(out.Lines, settled)
		out.TotalRent = out.TotalRent.Add(quote.Amount)

		if !slices.Contains(order, lot.ID) {
			order = append(order, lot.ID)
		}
		lot.BagsRemaining -= line.QuantityTaken
		if lot.BagsRemaining == 0 {
			end := asOf
			lot.StorageEndDate = &end
		}
		current[lot.ID] = lot
	}

	out.UpdatedLots = make([]entity.StorageLot, 0, len(order))
	for _, id := range order {
		out.UpdatedLots = append(out.UpdatedLots, current[id])
	}
	return out, nil
}
