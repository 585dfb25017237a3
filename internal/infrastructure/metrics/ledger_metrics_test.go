package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
)

func TestLedgerMetrics_Contadores(t *testing.T) {
	m := NewLedgerMetrics()

	m.ObserveSettlement(ports.OutcomeSettled, 20*time.Millisecond, 2)
	m.ObserveSettlement(ports.OutcomeSettled, 5*time.Millisecond, 1)
	m.ObserveSettlement(ports.OutcomeInsufficient, time.Millisecond, 0)
	m.IncConflictRetry()
	m.IncLotsCreated(100)
	m.IncLotsCreated(50)
	m.IncLotsClosed(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.settlements.WithLabelValues(ports.OutcomeSettled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues(ports.OutcomeInsufficient)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflictRetries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.lotsCreated))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.bagsReceived))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.lotsClosed))
}

func TestLedgerMetrics_Handler(t *testing.T) {
	m := NewLedgerMetrics()
	m.IncLotsCreated(10)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ledger_lots_created_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
