package ports

import "time"

// Resultados posibles de una liquidación, usados como etiqueta de métricas.
const (
	OutcomeSettled      = "settled"
	OutcomeInsufficient = "insufficient_supply"
	OutcomeDuplicate    = "duplicate"
	OutcomeConflict     = "conflict"
	OutcomeError        = "error"
)

// LedgerMetrics recibe las mediciones del ledger.
type LedgerMetrics interface {
	ObserveSettlement(outcome string, elapsed time.Duration, lines int)
	IncConflictRetry()
	IncLotsCreated(bags int64)
	IncLotsClosed(n int)
}

// NoopMetrics descarta las mediciones (tests).
type NoopMetrics struct{}

func (NoopMetrics) ObserveSettlement(string, time.Duration, int) {}
func (NoopMetrics) IncConflictRetry()                            {}
func (NoopMetrics) IncLotsCreated(int64)                         {}
func (NoopMetrics) IncLotsClosed(int)                            {}
