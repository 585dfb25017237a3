package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// LotUseCase registra entradas de mercancía y consulta lotes.
type LotUseCase struct {
	lotRepo        repository.LotRepository
	rateRepo       repository.RateScheduleRepository
	withdrawalRepo repository.WithdrawalRepository
	refs           References
	publisher      ports.EventPublisher
	metrics        ports.LedgerMetrics
	log            zerolog.Logger
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(
	lotRepo repository.LotRepository,
	rateRepo repository.RateScheduleRepository,
	withdrawalRepo repository.WithdrawalRepository,
	refs References,
	publisher ports.EventPublisher,
	metrics ports.LedgerMetrics,
	log zerolog.Logger,
) *LotUseCase {
	return &LotUseCase{
		lotRepo:        lotRepo,
		rateRepo:       rateRepo,
		withdrawalRepo: withdrawalRepo,
		refs:           refs,
		publisher:      publisher,
		metrics:        metrics,
		log:            log.With().Str("component", "lots").Logger(),
	}
}

// CreateLotInput entrada para registrar un lote.
type CreateLotInput struct {
	CompanyID   string
	UserID      string
	CustomerID  string
	CommodityID string
	WarehouseID string
	Quantity    int64
	RatePerUnit *decimal.Decimal
	StartDate   *time.Time // nil = hoy
}

// CreateLot valida referencias y persiste el lote con BagsRemaining = Quantity.
func (uc *LotUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*dto.LotResponse, error) {
	if in.CustomerID == "" || in.CommodityID == "" || in.WarehouseID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.RatePerUnit != nil && in.RatePerUnit.IsNegative() {
		return nil, fmt.Errorf("%w: tarifa negativa", domain.ErrInvalidInput)
	}
	if err := uc.refs.Check(ctx, in.CompanyID, in.CustomerID, in.CommodityID, in.WarehouseID); err != nil {
		return nil, err
	}

	now := time.Now()
	start := now
	if in.StartDate != nil {
		start = *in.StartDate
	}
	lot := &entity.StorageLot{
		ID:               uuid.New().String(),
		CompanyID:        in.CompanyID,
		CustomerID:       in.CustomerID,
		CommodityID:      in.CommodityID,
		WarehouseID:      in.WarehouseID,
		BagsStored:       in.Quantity,
		BagsRemaining:    in.Quantity,
		StorageStartDate: start,
		RatePerUnit:      in.RatePerUnit,
		Version:          1,
		CreatedBy:        in.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.lotRepo.Create(ctx, lot); err != nil {
		return nil, err
	}
	uc.metrics.IncLotsCreated(lot.BagsStored)

	event := ports.LotCreatedEvent{
		LotID:       lot.ID,
		CompanyID:   lot.CompanyID,
		CustomerID:  lot.CustomerID,
		CommodityID: lot.CommodityID,
		WarehouseID: lot.WarehouseID,
		Quantity:    lot.BagsStored,
		StartDate:   lot.StorageStartDate,
	}
	if err := uc.publisher.Publish(ctx, ports.EventLotCreated, event); err != nil {
		uc.log.Warn().Err(err).Str("lot_id", lot.ID).Msg("no se pudo publicar lot.created")
	}
	return lotToResponse(*lot), nil
}

// ListOpenLots devuelve los lotes abiertos de un cliente para una mercancía en una bodega, en orden FIFO.
func (uc *LotUseCase) ListOpenLots(ctx context.Context, companyID, customerID, commodityID, warehouseID string) (*dto.LotListResponse, error) {
	if customerID == "" || commodityID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.refs.Check(ctx, companyID, customerID, commodityID, warehouseID); err != nil {
		return nil, err
	}
	lots, err := uc.lotRepo.ListOpen(ctx, repository.LotKey{
		CompanyID:   companyID,
		CustomerID:  customerID,
		CommodityID: commodityID,
		WarehouseID: warehouseID,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.LotResponse, 0, len(lots))
	for _, l := range lots {
		items = append(items, *lotToResponse(l))
	}
	return &dto.LotListResponse{Items: items, OpenBalance: ledger.OpenBalance(lots)}, nil
}

// GetLot obtiene un lote de la empresa.
func (uc *LotUseCase) GetLot(ctx context.Context, companyID, id string) (*dto.LotResponse, error) {
	lot, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return lotToResponse(*lot), nil
}

// Movements devuelve los débitos de un lote en orden de liquidación.
func (uc *LotUseCase) Movements(ctx context.Context, companyID, id string) (*dto.LotMovementsResponse, error) {
	lot, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	lines, err := uc.withdrawalRepo.ListLinesByLot(ctx, lot.ID)
	if err != nil {
		return nil, fmt.Errorf("movimientos del lote %s: %w", id, err)
	}
	out := &dto.LotMovementsResponse{
		LotID:         lot.ID,
		BagsStored:    lot.BagsStored,
		BagsRemaining: lot.BagsRemaining,
		RentCharged:   decimal.Zero,
		Items:         make([]dto.LotMovementDTO, 0, len(lines)),
	}
	for _, l := range lines {
		out.BagsWithdrawn += l.QuantityTaken
		out.RentCharged = out.RentCharged.Add(l.RentCharged)
		out.Items = append(out.Items, dto.LotMovementDTO{
			WithdrawalID:  l.WithdrawalID,
			QuantityTaken: l.QuantityTaken,
			DaysStored:    l.DaysStored,
			Periods:       l.Periods,
			RatePerUnit:   l.RatePerUnit,
			RentCharged:   l.RentCharged,
		})
	}
	if out.BagsStored-out.BagsWithdrawn != out.BagsRemaining {
		uc.log.Error().
			Str("lot_id", lot.ID).
			Int64("stored", out.BagsStored).
			Int64("withdrawn", out.BagsWithdrawn).
			Int64("remaining", out.BagsRemaining).
			Msg("saldo del lote no cuadra con sus débitos")
	}
	return out, nil
}

// VoidLot anula (soft delete) un lote registrado por error. Solo se permite si nunca
// fue debitado; un lote con retiros forma parte del historial de liquidaciones.
func (uc *LotUseCase) VoidLot(ctx context.Context, companyID, id string) error {
	lot, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return err
	}
	if lot.DeletedAt != nil {
		return nil
	}
	if !lot.IsOpen() || lot.BagsRemaining != lot.BagsStored {
		return fmt.Errorf("%w: el lote %s ya tiene retiros", domain.ErrConflict, id)
	}
	now := time.Now()
	lot.DeletedAt = &now
	lot.UpdatedAt = now
	if err := uc.lotRepo.Update(ctx, lot); err != nil {
		return err
	}
	uc.log.Info().Str("lot_id", id).Int64("bags", lot.BagsStored).Msg("lote anulado")
	return nil
}

// QuoteRent calcula el arriendo causado de un lote abierto a la fecha asOf, sin modificarlo.
func (uc *LotUseCase) QuoteRent(ctx context.Context, companyID, id string, asOf time.Time) (*dto.RentQuoteResponse, error) {
	lot, err := uc.getOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !lot.IsOpen() {
		return nil, fmt.Errorf("%w: %s", domain.ErrLotClosed, id)
	}
	schedule, err := uc.rateRepo.Get(ctx, lot.WarehouseID)
	if err != nil {
		return nil, err
	}
	quote, err := ledger.QuoteRent(lot.StorageStartDate, lot.RatePerUnit, lot.BagsRemaining, asOf, schedule)
	if err != nil {
		return nil, err
	}
	return &dto.RentQuoteResponse{
		LotID:       lot.ID,
		AsOf:        asOf,
		Quantity:    quote.Quantity,
		DaysStored:  quote.DaysStored,
		Periods:     quote.Periods,
		PeriodDays:  quote.Tier.PeriodDays,
		RatePerUnit: quote.RatePerUnit,
		Amount:      quote.Amount,
	}, nil
}

func (uc *LotUseCase) getOwned(ctx context.Context, companyID, id string) (*entity.StorageLot, error) {
	lot, err := uc.lotRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil || lot.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return lot, nil
}

func lotToResponse(l entity.StorageLot) *dto.LotResponse {
	return &dto.LotResponse{
		ID:               l.ID,
		CustomerID:       l.CustomerID,
		CommodityID:      l.CommodityID,
		WarehouseID:      l.WarehouseID,
		BagsStored:       l.BagsStored,
		BagsRemaining:    l.BagsRemaining,
		StorageStartDate: l.StorageStartDate,
		StorageEndDate:   l.StorageEndDate,
		RatePerUnit:      l.RatePerUnit,
		Status:           l.Status(),
		CreatedAt:        l.CreatedAt,
	}
}
