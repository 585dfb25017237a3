package ledger

import (
	"sort"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// SortFIFO ordena los lotes por fecha de inicio ascendente; a igual fecha gana el ID menor.
// Devuelve una copia, no modifica la entrada.
func SortFIFO(lots []entity.StorageLot) []entity.StorageLot {
	out := make([]entity.StorageLot, len(lots))
	copy(out, lots)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StorageStartDate.Equal(b.StorageStartDate) {
			return a.StorageStartDate.Before(b.StorageStartDate)
		}
		return a.ID < b.ID
	})
	return out
}

// Allocate reparte requested unidades entre los lotes abiertos, el más antiguo primero.
// Todo o nada: si el saldo abierto no alcanza devuelve *domain.InsufficientSupplyError y
// ninguna línea. Las líneas salen sin arriendo; Settle lo calcula.
func Allocate(openLots []entity.StorageLot, requested int64) ([]entity.AllocationLine, error) {
	if requested <= 0 {
		return nil, domain.ErrInvalidInput
	}

	available := OpenBalance(openLots)
	if available < requested {
		return nil, &domain.InsufficientSupplyError{Requested: requested, Available: available}
	}

	lines := make([]entity.AllocationLine, 0, 2)
	outstanding := requested
	for _, lot := range SortFIFO(openLots) {
		if outstanding == 0 {
			break
		}
		if !lot.IsOpen() {
			continue
		}
		take := min(lot.BagsRemaining, outstanding)
		lines = append(lines, entity.AllocationLine{LotID: lot.ID, QuantityTaken: take})
		outstanding -= take
	}
	return lines, nil
}

// OpenBalance suma el saldo de los lotes abiertos.
func OpenBalance(lots []entity.StorageLot) int64 {
	var total int64
	for _, lot := range lots {
		if lot.IsOpen() {
			total += lot.BagsRemaining
		}
	}
	return total
}
