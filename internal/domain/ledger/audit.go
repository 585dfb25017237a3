package ledger

import (
	"fmt"
	"sort"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// Tipos de hallazgo de la auditoría.
const (
	ViolationConservation = "conservation"
	ViolationClosure      = "closure"
	ViolationFIFO         = "fifo"
	ViolationQuantity     = "quantity"
)

// Violation hallazgo de la auditoría sobre un lote o un retiro.
type Violation struct {
	Kind         string
	CustomerID   string
	CommodityID  string
	WarehouseID  string
	LotID        string
	WithdrawalID string
	Detail       string
}

func (v Violation) String() string {
	ref := v.LotID
	if v.WithdrawalID != "" {
		ref = "retiro " + v.WithdrawalID
	}
	return fmt.Sprintf("[%s] %s/%s/%s %s: %s", v.Kind, v.CustomerID, v.CommodityID, v.WarehouseID, ref, v.Detail)
}

type auditKey struct{ customer, commodity, warehouse string }

// Audit revisa el libro de una empresa contra sus retiros:
//   - conservación por lote: bags_stored - sum(líneas) == bags_remaining
//   - cierre: saldo cero si y solo si tiene storage_end_date
//   - cantidad: la suma de líneas de un retiro es la cantidad solicitada
//   - FIFO: re-ejecuta los retiros en orden de creación y compara con las líneas guardadas
//
// Devuelve los hallazgos ordenados por clave; ninguno significa libro consistente.
func Audit(lots []entity.StorageLot, withdrawals []*entity.Withdrawal) []Violation {
	var out []Violation

	byID := make(map[string]entity.StorageLot, len(lots))
	lotsByKey := make(map[auditKey][]entity.StorageLot)
	for _, l := range lots {
		byID[l.ID] = l
		k := auditKey{l.CustomerID, l.CommodityID, l.WarehouseID}
		lotsByKey[k] = append(lotsByKey[k], l)
	}

	taken := make(map[string]int64, len(lots))
	wByKey := make(map[auditKey][]*entity.Withdrawal)
	for _, w := range withdrawals {
		k := auditKey{w.CustomerID, w.CommodityID, w.WarehouseID}
		wByKey[k] = append(wByKey[k], w)

		var sum int64
		for _, line := range w.Lines {
			sum += line.QuantityTaken
			taken[line.LotID] += line.QuantityTaken
			if _, ok := byID[line.LotID]; !ok {
				out = append(out, violation(ViolationConservation, k, line.LotID, w.ID, "línea sobre un lote inexistente"))
			}
		}
		if sum != w.Quantity {
			out = append(out, violation(ViolationQuantity, k, "", w.ID,
				fmt.Sprintf("líneas suman %d, solicitado %d", sum, w.Quantity)))
		}
	}

	for _, l := range lots {
		k := auditKey{l.CustomerID, l.CommodityID, l.WarehouseID}
		if got := l.BagsStored - taken[l.ID]; got != l.BagsRemaining {
			out = append(out, violation(ViolationConservation, k, l.ID, "",
				fmt.Sprintf("almacenado %d - retirado %d = %d, saldo registrado %d", l.BagsStored, taken[l.ID], got, l.BagsRemaining)))
		}
		if l.BagsRemaining < 0 || l.BagsRemaining > l.BagsStored {
			out = append(out, violation(ViolationClosure, k, l.ID, "",
				fmt.Sprintf("saldo %d fuera de [0, %d]", l.BagsRemaining, l.BagsStored)))
		}
		if l.DeletedAt == nil && (l.BagsRemaining == 0) != (l.StorageEndDate != nil) {
			out = append(out, violation(ViolationClosure, k, l.ID, "",
				fmt.Sprintf("saldo %d con storage_end_date %v", l.BagsRemaining, l.StorageEndDate != nil)))
		}
	}

	for k, ws := range wByKey {
		out = append(out, replayFIFO(k, lotsByKey[k], ws)...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		if a.CommodityID != b.CommodityID {
			return a.CommodityID < b.CommodityID
		}
		if a.WarehouseID != b.WarehouseID {
			return a.WarehouseID < b.WarehouseID
		}
		return a.Kind < b.Kind
	})
	return out
}

// replayFIFO reconstruye los saldos desde bags_stored y re-asigna cada retiro.
// Un lote cuenta como disponible si ya existía y no estaba anulado cuando se creó el retiro.
// Tras comparar se aplican las líneas guardadas, así un hallazgo no arrastra a los siguientes.
func replayFIFO(k auditKey, lots []entity.StorageLot, ws []*entity.Withdrawal) []Violation {
	var out []Violation

	ordered := make([]*entity.Withdrawal, len(ws))
	copy(ordered, ws)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	remaining := make(map[string]int64, len(lots))
	for _, l := range lots {
		remaining[l.ID] = l.BagsStored
	}

	for _, w := range ordered {
		available := make([]entity.StorageLot, 0, len(lots))
		for _, l := range lots {
			if l.CreatedAt.After(w.CreatedAt) || (l.DeletedAt != nil && !l.DeletedAt.After(w.CreatedAt)) {
				continue
			}
			snap := l
			snap.BagsRemaining = remaining[l.ID]
			snap.StorageEndDate = nil
			snap.DeletedAt = nil
			available = append(available, snap)
		}

		expected, err := Allocate(available, w.Quantity)
		switch {
		case err != nil:
			out = append(out, violation(ViolationFIFO, k, "", w.ID, "al re-ejecutar: "+err.Error()))
		case !sameLines(expected, w.Lines):
			out = append(out, violation(ViolationFIFO, k, "", w.ID,
				fmt.Sprintf("esperado %s, registrado %s", formatLines(expected), formatLines(w.Lines))))
		}

		for _, line := range w.Lines {
			remaining[line.LotID] -= line.QuantityTaken
		}
	}
	return out
}

func sameLines(a, b []entity.AllocationLine) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].LotID != b[i].LotID || a[i].QuantityTaken != b[i].QuantityTaken {
			return false
		}
	}
	return true
}

func formatLines(lines []entity.AllocationLine) string {
	s := "["
	for i, l := range lines {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s:%d", l.LotID, l.QuantityTaken)
	}
	return s + "]"
}

func violation(kind string, k auditKey, lotID, withdrawalID, detail string) Violation {
	return Violation{
		Kind:         kind,
		CustomerID:   k.customer,
		CommodityID:  k.commodity,
		WarehouseID:  k.warehouse,
		LotID:        lotID,
		WithdrawalID: withdrawalID,
		Detail:       detail,
	}
}
