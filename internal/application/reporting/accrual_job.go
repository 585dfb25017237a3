package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// DefaultAccrualSpec todos los días a las 23:55.
const DefaultAccrualSpec = "55 23 * * *"

// AccrualJob calcula el arriendo causado de los lotes abiertos y guarda una foto por bodega.
// No toca saldos ni liquida: es solo lectura sobre el libro.
type AccrualJob struct {
	reportRepo repository.ReportRepository
	lotRepo    repository.LotRepository
	rateRepo   repository.RateScheduleRepository
	now        func() time.Time
	log        zerolog.Logger
	cron       *cron.Cron
}

// NewAccrualJob construye el job.
func NewAccrualJob(
	reportRepo repository.ReportRepository,
	lotRepo repository.LotRepository,
	rateRepo repository.RateScheduleRepository,
	log zerolog.Logger,
) *AccrualJob {
	return &AccrualJob{
		reportRepo: reportRepo,
		lotRepo:    lotRepo,
		rateRepo:   rateRepo,
		now:        time.Now,
		log:        log.With().Str("component", "accrual_job").Logger(),
	}
}

// Start programa el job con la expresión cron indicada (vacía = DefaultAccrualSpec).
func (j *AccrualJob) Start(spec string) error {
	if spec == "" {
		spec = DefaultAccrualSpec
	}
	logger := cronLogger{log: j.log}
	j.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	if _, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := j.RunOnce(ctx); err != nil {
			j.log.Error().Err(err).Msg("causación fallida")
		}
	}); err != nil {
		return fmt.Errorf("causación: expresión cron %q: %w", spec, err)
	}
	j.cron.Start()
	j.log.Info().Str("spec", spec).Msg("job de causación programado")
	return nil
}

// Stop detiene el scheduler y espera a que termine la ejecución en curso.
func (j *AccrualJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
}

// RunOnce causa el arriendo de todas las empresas con lotes abiertos a la fecha actual.
// Un error en una empresa no detiene a las demás; devuelve el número de fotos guardadas.
// Una bodega sin tarifa aplicable igual guarda su foto marcada con RateMissing y su
// ErrRateScheduleMissing viaja en el error agregado.
func (j *AccrualJob) RunOnce(ctx context.Context) (int, error) {
	asOf := j.now()
	companies, err := j.reportRepo.ListCompaniesWithOpenLots(ctx)
	if err != nil {
		return 0, fmt.Errorf("causación: listar empresas: %w", err)
	}

	saved := 0
	var errs []error
	for _, companyID := range companies {
		n, err := j.accrueCompany(ctx, companyID, asOf)
		saved += n
		if err != nil {
			j.log.Error().Err(err).Str("company_id", companyID).Msg("causación de empresa fallida")
			errs = append(errs, fmt.Errorf("empresa %s: %w", companyID, err))
		}
	}
	j.log.Info().Int("companies", len(companies)).Int("snapshots", saved).Msg("causación completada")
	return saved, errors.Join(errs...)
}

func (j *AccrualJob) accrueCompany(ctx context.Context, companyID string, asOf time.Time) (int, error) {
	lots, err := j.lotRepo.List(ctx, repository.LotFilter{CompanyID: companyID, OnlyOpen: true})
	if err != nil {
		return 0, err
	}

	byWarehouse := map[string]*entity.AccrualSnapshot{}
	order := []string{}
	schedules := map[string]*entity.RateSchedule{}
	var missing []error
	for _, lot := range lots {
		schedule, ok := schedules[lot.WarehouseID]
		if !ok {
			if schedule, err = j.rateRepo.Get(ctx, lot.WarehouseID); err != nil {
				return 0, err
			}
			schedules[lot.WarehouseID] = schedule
		}

		snap, ok := byWarehouse[lot.WarehouseID]
		if !ok {
			snap = &entity.AccrualSnapshot{
				ID:          uuid.New().String(),
				CompanyID:   companyID,
				WarehouseID: lot.WarehouseID,
				AsOf:        asOf,
				AccruedRent: decimal.Zero,
				CreatedAt:   asOf,
			}
			byWarehouse[lot.WarehouseID] = snap
			order = append(order, lot.WarehouseID)
		}
		snap.OpenLots++
		snap.BagsInStock += lot.BagsRemaining

		rent, err := ledger.ComputeRent(lot, asOf, schedule)
		if errors.Is(err, domain.ErrRateScheduleMissing) {
			if !snap.RateMissing {
				j.log.Error().Err(err).
					Str("company_id", companyID).
					Str("warehouse_id", lot.WarehouseID).
					Str("lot_id", lot.ID).
					Msg("bodega sin tarifa aplicable, causación incompleta")
				missing = append(missing, fmt.Errorf("bodega %s: %w", lot.WarehouseID, err))
			}
			snap.RateMissing = true
			continue
		}
		if err != nil {
			return 0, err
		}
		snap.AccruedRent = snap.AccruedRent.Add(rent)
	}

	saved := 0
	for _, wh := range order {
		if err := j.reportRepo.SaveAccrualSnapshot(ctx, byWarehouse[wh]); err != nil {
			return saved, errors.Join(append(missing, fmt.Errorf("guardar foto %s: %w", wh, err))...)
		}
		saved++
	}
	return saved, errors.Join(missing...)
}

// cronLogger adapta zerolog a cron.Logger. Los Info del scheduler van a Debug.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
