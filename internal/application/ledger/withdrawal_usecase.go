package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// DefaultMaxConflictRetries reintentos ante ErrConcurrencyConflict si la configuración no indica otro valor.
const DefaultMaxConflictRetries = 3

// WithdrawalUseCase liquida retiros (outflows): bloquea los lotes abiertos (SELECT FOR UPDATE),
// asigna FIFO, cobra el arriendo y persiste saldos, retiro y líneas en una sola transacción.
type WithdrawalUseCase struct {
	txRunner       TxRunner
	lotRepo        repository.LotRepository
	withdrawalRepo repository.WithdrawalRepository
	rateRepo       repository.RateScheduleRepository
	refs           References
	guard          ports.IdempotencyGuard
	publisher      ports.EventPublisher
	metrics        ports.LedgerMetrics
	maxRetries     int
	log            zerolog.Logger
}

// NewWithdrawalUseCase construye el caso de uso. maxRetries <= 0 usa DefaultMaxConflictRetries.
func NewWithdrawalUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	withdrawalRepo repository.WithdrawalRepository,
	rateRepo repository.RateScheduleRepository,
	refs References,
	guard ports.IdempotencyGuard,
	publisher ports.EventPublisher,
	metrics ports.LedgerMetrics,
	maxRetries int,
	log zerolog.Logger,
) *WithdrawalUseCase {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxConflictRetries
	}
	return &WithdrawalUseCase{
		txRunner:       txRunner,
		lotRepo:        lotRepo,
		withdrawalRepo: withdrawalRepo,
		rateRepo:       rateRepo,
		refs:           refs,
		guard:          guard,
		publisher:      publisher,
		metrics:        metrics,
		maxRetries:     maxRetries,
		log:            log.With().Str("component", "withdrawals").Logger(),
	}
}

// WithdrawalInput entrada para liquidar un retiro.
type WithdrawalInput struct {
	CompanyID   string
	UserID      string
	RequestID   string // vacío = se genera uno (sin protección ante reintentos del cliente)
	CustomerID  string
	CommodityID string
	WarehouseID string
	Quantity    int64
	AsOf        time.Time // fecha de liquidación; cero = ahora
}

func (in WithdrawalInput) key() repository.LotKey {
	return repository.LotKey{
		CompanyID:   in.CompanyID,
		CustomerID:  in.CustomerID,
		CommodityID: in.CommodityID,
		WarehouseID: in.WarehouseID,
	}
}

// settled resultado confirmado de una liquidación.
type settled struct {
	withdrawal *entity.Withdrawal
	plan       *ledger.Settlement
	lots       map[string]entity.StorageLot
}

// Withdraw liquida el retiro. Un request_id ya liquidado devuelve domain.ErrDuplicateSettlement
// sin debitar de nuevo. Ante conflicto de concurrencia reintenta desde una lectura nueva hasta
// maxRetries veces; agotados los reintentos devuelve domain.ErrConcurrencyConflict.
func (uc *WithdrawalUseCase) Withdraw(ctx context.Context, in WithdrawalInput) (*dto.WithdrawalResponse, error) {
	started := time.Now()
	res, err := uc.withdraw(ctx, in)
	lines := 0
	if res != nil {
		lines = len(res.plan.Lines)
	}
	uc.metrics.ObserveSettlement(outcomeOf(err), time.Since(started), lines)
	if err != nil {
		return nil, err
	}

	closed := res.plan.ClosedLots()
	uc.metrics.IncLotsClosed(closed)
	uc.log.Info().
		Str("withdrawal_id", res.withdrawal.ID).
		Str("request_id", res.withdrawal.RequestID).
		Int64("quantity", res.withdrawal.Quantity).
		Int("lines", lines).
		Int("closed_lots", closed).
		Str("total_rent", res.withdrawal.TotalRent.String()).
		Msg("retiro liquidado")

	if err := uc.publisher.Publish(ctx, ports.EventWithdrawalSettled, settledEvent(res)); err != nil {
		uc.log.Warn().Err(err).Str("withdrawal_id", res.withdrawal.ID).Msg("no se pudo publicar withdrawal.settled")
	}
	return withdrawalToResponse(res.withdrawal, res.lots), nil
}

func (uc *WithdrawalUseCase) withdraw(ctx context.Context, in WithdrawalInput) (*settled, error) {
	if in.CustomerID == "" || in.CommodityID == "" || in.WarehouseID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.RequestID == "" {
		in.RequestID = uuid.New().String()
	}
	if in.AsOf.IsZero() {
		in.AsOf = time.Now()
	}
	if err := uc.refs.Check(ctx, in.CompanyID, in.CustomerID, in.CommodityID, in.WarehouseID); err != nil {
		return nil, err
	}
	schedule, err := uc.rateRepo.Get(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrRateScheduleMissing, in.WarehouseID)
	}

	guardKey := in.CompanyID + ":" + in.RequestID
	acquired, err := uc.guard.Acquire(ctx, guardKey)
	if err != nil {
		// Sin guard seguimos: el índice único sobre request_id sigue protegiendo.
		uc.log.Warn().Err(err).Str("request_id", in.RequestID).Msg("guard de idempotencia no disponible")
		acquired = true
	}
	if !acquired {
		return nil, domain.ErrDuplicateSettlement
	}

	res, err := uc.settleWithRetry(ctx, in, schedule)
	if err != nil && !errors.Is(err, domain.ErrDuplicateSettlement) {
		if relErr := uc.guard.Release(ctx, guardKey); relErr != nil {
			uc.log.Warn().Err(relErr).Str("request_id", in.RequestID).Msg("no se pudo liberar el guard")
		}
	}
	return res, err
}

func (uc *WithdrawalUseCase) settleWithRetry(ctx context.Context, in WithdrawalInput, schedule *entity.RateSchedule) (*settled, error) {
	var lastErr error
	for attempt := 0; attempt <= uc.maxRetries; attempt++ {
		if attempt > 0 {
			uc.metrics.IncConflictRetry()
			uc.log.Warn().Int("attempt", attempt).Str("request_id", in.RequestID).Msg("conflicto de concurrencia, reintentando")
		}
		res, err := uc.settleOnce(ctx, in, schedule)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// settleOnce una unidad completa lectura-plan-commit.
func (uc *WithdrawalUseCase) settleOnce(ctx context.Context, in WithdrawalInput, schedule *entity.RateSchedule) (*settled, error) {
	var res *settled
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		withdrawalRepo repository.WithdrawalRepository,
	) error {
		prev, err := withdrawalRepo.GetByRequestID(ctx, in.CompanyID, in.RequestID)
		if err != nil {
			return err
		}
		if prev != nil {
			return domain.ErrDuplicateSettlement
		}

		// Bloquea los lotes abiertos en orden FIFO
		lots, err := lotRepo.ListOpenForUpdate(ctx, in.key())
		if err != nil {
			return err
		}
		lines, err := ledger.Allocate(lots, in.Quantity)
		if err != nil {
			return err
		}
		plan, err := ledger.Settle(lines, lots, in.AsOf, schedule)
		if err != nil {
			return err
		}

		now := time.Now()
		updated := make(map[string]entity.StorageLot, len(plan.UpdatedLots))
		for _, lot := range plan.UpdatedLots {
			lot.UpdatedAt = now
			if err := lotRepo.Update(ctx, &lot); err != nil {
				return err
			}
			updated[lot.ID] = lot
		}

		w := &entity.Withdrawal{
			ID:          uuid.New().String(),
			CompanyID:   in.CompanyID,
			RequestID:   in.RequestID,
			CustomerID:  in.CustomerID,
			CommodityID: in.CommodityID,
			WarehouseID: in.WarehouseID,
			Quantity:    in.Quantity,
			TotalRent:   plan.TotalRent,
			RequestedAt: now,
			SettledAt:   in.AsOf,
			CreatedBy:   in.UserID,
			CreatedAt:   now,
			Lines:       make([]entity.AllocationLine, 0, len(plan.Lines)),
		}
		for _, line := range plan.Lines {
			line.ID = uuid.New().String()
			line.WithdrawalID = w.ID
			w.Lines = append(w.Lines, line)
		}
		if err := withdrawalRepo.Create(ctx, w); err != nil {
			return err
		}
		res = &settled{withdrawal: w, plan: plan, lots: updated}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PreviewWithdrawal calcula asignación y arriendo sin bloquear ni escribir nada.
func (uc *WithdrawalUseCase) PreviewWithdrawal(ctx context.Context, in WithdrawalInput) (*dto.WithdrawalResponse, error) {
	if in.CustomerID == "" || in.CommodityID == "" || in.WarehouseID == "" || in.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.AsOf.IsZero() {
		in.AsOf = time.Now()
	}
	if err := uc.refs.Check(ctx, in.CompanyID, in.CustomerID, in.CommodityID, in.WarehouseID); err != nil {
		return nil, err
	}
	schedule, err := uc.rateRepo.Get(ctx, in.WarehouseID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrRateScheduleMissing, in.WarehouseID)
	}
	lots, err := uc.lotRepo.ListOpen(ctx, in.key())
	if err != nil {
		return nil, err
	}
	lines, err := ledger.Allocate(lots, in.Quantity)
	if err != nil {
		return nil, err
	}
	plan, err := ledger.Settle(lines, lots, in.AsOf, schedule)
	if err != nil {
		return nil, err
	}
	updated := make(map[string]entity.StorageLot, len(plan.UpdatedLots))
	for _, l := range plan.UpdatedLots {
		updated[l.ID] = l
	}
	w := &entity.Withdrawal{
		CustomerID:  in.CustomerID,
		CommodityID: in.CommodityID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		TotalRent:   plan.TotalRent,
		SettledAt:   in.AsOf,
		Lines:       plan.Lines,
	}
	resp := withdrawalToResponse(w, updated)
	resp.Preview = true
	return resp, nil
}

// GetWithdrawal obtiene un retiro liquidado con sus líneas.
func (uc *WithdrawalUseCase) GetWithdrawal(ctx context.Context, companyID, id string) (*dto.WithdrawalResponse, error) {
	w, err := uc.GetWithdrawalEntity(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return withdrawalToResponse(w, nil), nil
}

// GetWithdrawalEntity igual que GetWithdrawal pero devuelve la entidad (recibos PDF).
func (uc *WithdrawalUseCase) GetWithdrawalEntity(ctx context.Context, companyID, id string) (*entity.Withdrawal, error) {
	w, err := uc.withdrawalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil || w.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return w, nil
}

// ListWithdrawals lista retiros de la empresa con filtros opcionales.
func (uc *WithdrawalUseCase) ListWithdrawals(ctx context.Context, filter repository.WithdrawalFilter) (*dto.WithdrawalListResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	list, err := uc.withdrawalRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WithdrawalResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *withdrawalToResponse(w, nil))
	}
	return &dto.WithdrawalListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ports.OutcomeSettled
	case errors.Is(err, domain.ErrInsufficientSupply):
		return ports.OutcomeInsufficient
	case errors.Is(err, domain.ErrDuplicateSettlement):
		return ports.OutcomeDuplicate
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return ports.OutcomeConflict
	default:
		return ports.OutcomeError
	}
}

func settledEvent(res *settled) ports.WithdrawalSettledEvent {
	w := res.withdrawal
	ev := ports.WithdrawalSettledEvent{
		WithdrawalID: w.ID,
		RequestID:    w.RequestID,
		CompanyID:    w.CompanyID,
		CustomerID:   w.CustomerID,
		CommodityID:  w.CommodityID,
		WarehouseID:  w.WarehouseID,
		Quantity:     w.Quantity,
		TotalRent:    w.TotalRent,
		SettledAt:    w.SettledAt,
		Lines:        make([]ports.SettledLine, 0, len(w.Lines)),
	}
	for _, l := range w.Lines {
		lot := res.lots[l.LotID]
		ev.Lines = append(ev.Lines, ports.SettledLine{
			LotID:         l.LotID,
			QuantityTaken: l.QuantityTaken,
			RentCharged:   l.RentCharged,
			LotClosed:     lot.StorageEndDate != nil,
		})
	}
	return ev
}

// withdrawalToResponse lots opcional: estado de los lotes tras la liquidación.
func withdrawalToResponse(w *entity.Withdrawal, lots map[string]entity.StorageLot) *dto.WithdrawalResponse {
	resp := &dto.WithdrawalResponse{
		ID:          w.ID,
		RequestID:   w.RequestID,
		CustomerID:  w.CustomerID,
		CommodityID: w.CommodityID,
		WarehouseID: w.WarehouseID,
		Quantity:    w.Quantity,
		TotalRent:   w.TotalRent,
		SettledAt:   w.SettledAt,
		Lines:       make([]dto.AllocationLineResponse, 0, len(w.Lines)),
	}
	for _, l := range w.Lines {
		line := dto.AllocationLineResponse{
			LotID:         l.LotID,
			QuantityTaken: l.QuantityTaken,
			DaysStored:    l.DaysStored,
			Periods:       l.Periods,
			RatePerUnit:   l.RatePerUnit,
			RentCharged:   l.RentCharged,
		}
		if lot, ok := lots[l.LotID]; ok {
			start := lot.StorageStartDate
			remaining := lot.BagsRemaining
			line.LotStartDate = &start
			line.LotBagsRemaining = &remaining
			line.LotClosed = lot.StorageEndDate != nil
		}
		resp.Lines = append(resp.Lines, line)
	}
	return resp
}
