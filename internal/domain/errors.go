package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrDuplicate     = errors.New("recurso duplicado")
	ErrUnauthorized  = errors.New("no autorizado")
	ErrForbidden     = errors.New("acceso denegado")
	ErrConflict      = errors.New("conflicto con el estado actual")
	ErrAIUnavailable = errors.New("servicio de IA no configurado")

	// Ledger de lotes.
	ErrInsufficientSupply  = errors.New("saldo insuficiente en lotes abiertos")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente desde una lectura nueva")
	ErrRateScheduleMissing = errors.New("tarifa no configurada para la bodega")
	ErrLotClosed           = errors.New("el lote está cerrado")
	ErrDuplicateSettlement = errors.New("la liquidación ya fue aplicada para este request_id")
)

// InsufficientSupplyError detalle de un retiro que excede el saldo abierto.
// errors.Is(err, ErrInsufficientSupply) es true.
type InsufficientSupplyError struct {
	Requested int64
	Available int64
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("%s: solicitado %d, disponible %d", ErrInsufficientSupply.Error(), e.Requested, e.Available)
}

// Is permite comparar contra el sentinel ErrInsufficientSupply.
func (e *InsufficientSupplyError) Is(target error) bool {
	return target == ErrInsufficientSupply
}
