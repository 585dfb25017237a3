package repository

import (
	"context"

	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// RateScheduleRepository define el puerto de persistencia para las tarifas por bodega.
type RateScheduleRepository interface {
	// Get devuelve nil, nil si la bodega no tiene tarifa.
	Get(ctx context.Context, warehouseID string) (*entity.RateSchedule, error)
	// Put reemplaza todos los tramos de la bodega.
	Put(ctx context.Context, schedule *entity.RateSchedule) error
}
