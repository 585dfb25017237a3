package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// RateScheduleUseCase configura la tarifa escalonada de cada bodega.
type RateScheduleUseCase struct {
	repo          repository.RateScheduleRepository
	warehouseRepo repository.WarehouseRepository
	log           zerolog.Logger
}

// NewRateScheduleUseCase construye el caso de uso.
func NewRateScheduleUseCase(repo repository.RateScheduleRepository, warehouseRepo repository.WarehouseRepository, log zerolog.Logger) *RateScheduleUseCase {
	return &RateScheduleUseCase{repo: repo, warehouseRepo: warehouseRepo, log: log.With().Str("component", "rates").Logger()}
}

// Put reemplaza la tarifa de la bodega. Los cambios aplican a liquidaciones futuras;
// las líneas ya liquidadas conservan la tarifa con que se cobraron.
func (uc *RateScheduleUseCase) Put(ctx context.Context, companyID, warehouseID string, in dto.PutRateScheduleRequest) (*dto.RateScheduleResponse, error) {
	if err := uc.checkWarehouse(ctx, companyID, warehouseID); err != nil {
		return nil, err
	}
	tiers := make([]entity.RateTier, 0, len(in.Tiers))
	for _, t := range in.Tiers {
		tiers = append(tiers, entity.RateTier{
			ThresholdDays:        t.ThresholdDays,
			PeriodDays:           t.PeriodDays,
			RatePerUnitPerPeriod: t.RatePerUnitPerPeriod,
		})
	}
	if err := ledger.ValidateSchedule(tiers); err != nil {
		return nil, err
	}
	schedule := &entity.RateSchedule{
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		Tiers:       ledger.SortedTiers(tiers),
		UpdatedAt:   time.Now(),
	}
	if err := uc.repo.Put(ctx, schedule); err != nil {
		return nil, err
	}
	uc.log.Info().Str("warehouse_id", warehouseID).Int("tiers", len(tiers)).Msg("tarifa actualizada")
	return toRateScheduleResponse(schedule), nil
}

// Get devuelve la tarifa vigente; domain.ErrRateScheduleMissing si la bodega no tiene.
func (uc *RateScheduleUseCase) Get(ctx context.Context, companyID, warehouseID string) (*dto.RateScheduleResponse, error) {
	if err := uc.checkWarehouse(ctx, companyID, warehouseID); err != nil {
		return nil, err
	}
	schedule, err := uc.repo.Get(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, domain.ErrRateScheduleMissing
	}
	return toRateScheduleResponse(schedule), nil
}

func (uc *RateScheduleUseCase) checkWarehouse(ctx context.Context, companyID, warehouseID string) error {
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func toRateScheduleResponse(s *entity.RateSchedule) *dto.RateScheduleResponse {
	out := &dto.RateScheduleResponse{
		WarehouseID: s.WarehouseID,
		Tiers:       make([]dto.RateTierDTO, 0, len(s.Tiers)),
		UpdatedAt:   s.UpdatedAt,
	}
	for _, t := range s.Tiers {
		out.Tiers = append(out.Tiers, dto.RateTierDTO{
			ThresholdDays:        t.ThresholdDays,
			PeriodDays:           t.PeriodDays,
			RatePerUnitPerPeriod: t.RatePerUnitPerPeriod,
		})
	}
	return out
}
