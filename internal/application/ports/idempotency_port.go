package ports

import "context"

// IdempotencyGuard reserva claves de liquidación antes de abrir la transacción.
// Es solo un atajo: la garantía real es el índice único (company_id, request_id).
type IdempotencyGuard interface {
	// Acquire devuelve false si la clave ya estaba reservada.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release libera una clave cuya liquidación no llegó a confirmarse.
	Release(ctx context.Context, key string) error
}

// NoopGuard reserva siempre; se usa cuando Redis no está configurado.
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NoopGuard) Release(context.Context, string) error         { return nil }
