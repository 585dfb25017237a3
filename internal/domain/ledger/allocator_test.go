package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
)

// Lotes A (día 1, 100) y B (día 5, 50): retirar 120 produce [A:100, B:20].
func TestAllocate_FIFO_AgotaElMasAntiguoPrimero(t *testing.T) {
	a := lot("lot-a", day(2024, time.January, 1), 100)
	b := lot("lot-b", day(2024, time.January, 5), 50)

	// Entrada desordenada a propósito: el allocator impone el orden.
	lines, err := ledger.Allocate([]entityLot{b, a}, 120)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, "lot-a", lines[0].LotID)
	assert.EqualValues(t, 100, lines[0].QuantityTaken)
	assert.Equal(t, "lot-b", lines[1].LotID)
	assert.EqualValues(t, 20, lines[1].QuantityTaken)
}

func TestAllocate_NoTocaLotesPosteriores(t *testing.T) {
	a := lot("lot-a", day(2024, time.January, 1), 100)
	b := lot("lot-b", day(2024, time.January, 5), 50)

	lines, err := ledger.Allocate([]entityLot{a, b}, 60)
	require.NoError(t, err)
	require.Len(t, lines, 1, "B no debe tocarse mientras A tenga saldo")
	assert.Equal(t, "lot-a", lines[0].LotID)
	assert.EqualValues(t, 60, lines[0].QuantityTaken)
}

func TestAllocate_DesempateMismaFecha_GanaIDMenor(t *testing.T) {
	same := day(2024, time.February, 1)
	x := lot("lot-b", same, 10)
	y := lot("lot-a", same, 10)

	lines, err := ledger.Allocate([]entityLot{x, y}, 15)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "lot-a", lines[0].LotID)
	assert.EqualValues(t, 10, lines[0].QuantityTaken)
	assert.Equal(t, "lot-b", lines[1].LotID)
	assert.EqualValues(t, 5, lines[1].QuantityTaken)
}

// Saldo abierto 100, solicitud 101: falla y no modifica ningún lote.
func TestAllocate_SobreRetiro_RetornaInsufficientSupply(t *testing.T) {
	a := lot("lot-a", day(2024, time.January, 1), 60)
	b := lot("lot-b", day(2024, time.January, 5), 40)
	lots := []entityLot{a, b}

	lines, err := ledger.Allocate(lots, 101)
	assert.Nil(t, lines)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientSupply)

	var supplyErr *domain.InsufficientSupplyError
	require.True(t, errors.As(err, &supplyErr))
	assert.EqualValues(t, 101, supplyErr.Requested)
	assert.EqualValues(t, 100, supplyErr.Available)

	assert.EqualValues(t, 60, lots[0].BagsRemaining)
	assert.EqualValues(t, 40, lots[1].BagsRemaining)
}

func TestAllocate_IgnoraLotesCerradosYAnulados(t *testing.T) {
	closedAt := day(2024, time.January, 20)
	closed := lot("lot-a", day(2024, time.January, 1), 10)
	closed.StorageEndDate = &closedAt
	voided := lot("lot-b", day(2024, time.January, 2), 10)
	voided.DeletedAt = &closedAt
	empty := lot("lot-c", day(2024, time.January, 3), 10)
	empty.BagsRemaining = 0
	open := lot("lot-d", day(2024, time.January, 4), 10)

	lines, err := ledger.Allocate([]entityLot{closed, voided, empty, open}, 10)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "lot-d", lines[0].LotID)

	_, err = ledger.Allocate([]entityLot{closed, voided, empty, open}, 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientSupply)
}

func TestAllocate_CantidadNoPositiva_RetornaErrInvalidInput(t *testing.T) {
	a := lot("lot-a", day(2024, time.January, 1), 10)
	_, err := ledger.Allocate([]entityLot{a}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Allocate([]entityLot{a}, -5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAllocate_SumaDeLineasIgualASolicitado(t *testing.T) {
	lots := []entityLot{
		lot("lot-1", day(2024, time.January, 1), 7),
		lot("lot-2", day(2024, time.January, 2), 13),
		lot("lot-3", day(2024, time.January, 3), 21),
	}
	for requested := int64(1); requested <= 41; requested++ {
		lines, err := ledger.Allocate(lots, requested)
		require.NoError(t, err)
		var sum int64
		for _, l := range lines {
			sum += l.QuantityTaken
		}
		assert.Equal(t, requested, sum)
	}
}
