package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

// statementHistory movimientos recientes incluidos en el estado de cuenta.
const statementHistory = 50

// StatementUseCase arma el estado de cuenta de un cliente y sus documentos PDF.
type StatementUseCase struct {
	customerRepo   repository.CustomerRepository
	companyRepo    repository.CompanyRepository
	warehouseRepo  repository.WarehouseRepository
	commodityRepo  repository.CommodityRepository
	lotRepo        repository.LotRepository
	withdrawalRepo repository.WithdrawalRepository
	paymentRepo    repository.PaymentRepository
	rateRepo       repository.RateScheduleRepository
	generator      DocumentPDFGenerator
	log            zerolog.Logger
}

// StatementDeps dependencias del caso de uso.
type StatementDeps struct {
	Customers   repository.CustomerRepository
	Companies   repository.CompanyRepository
	Warehouses  repository.WarehouseRepository
	Commodities repository.CommodityRepository
	Lots        repository.LotRepository
	Withdrawals repository.WithdrawalRepository
	Payments    repository.PaymentRepository
	Rates       repository.RateScheduleRepository
	Generator   DocumentPDFGenerator
}

// NewStatementUseCase construye el caso de uso.
func NewStatementUseCase(deps StatementDeps, log zerolog.Logger) *StatementUseCase {
	return &StatementUseCase{
		customerRepo:   deps.Customers,
		companyRepo:    deps.Companies,
		warehouseRepo:  deps.Warehouses,
		commodityRepo:  deps.Commodities,
		lotRepo:        deps.Lots,
		withdrawalRepo: deps.Withdrawals,
		paymentRepo:    deps.Payments,
		rateRepo:       deps.Rates,
		generator:      deps.Generator,
		log:            log.With().Str("component", "statements").Logger(),
	}
}

// CustomerStatement arriendo liquidado, abonos y saldo a la fecha asOf, más el arriendo
// causado (aún no liquidado) de los lotes abiertos.
func (uc *StatementUseCase) CustomerStatement(ctx context.Context, companyID, customerID string, asOf time.Time) (*dto.CustomerStatementResponse, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	billed, err := uc.withdrawalRepo.SumRentByCustomer(ctx, companyID, customerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("estado de cuenta: arriendo liquidado: %w", err)
	}
	paid, err := uc.paymentRepo.SumByCustomer(ctx, companyID, customerID, asOf)
	if err != nil {
		return nil, fmt.Errorf("estado de cuenta: abonos: %w", err)
	}

	open, accrued, err := uc.accruals(ctx, companyID, customerID, asOf)
	if err != nil {
		return nil, err
	}

	withdrawals, err := uc.withdrawalRepo.List(ctx, repository.WithdrawalFilter{
		CompanyID: companyID, CustomerID: customerID, To: &asOf, Limit: statementHistory,
	})
	if err != nil {
		return nil, err
	}
	payments, err := uc.paymentRepo.ListByCustomer(ctx, companyID, customerID, statementHistory, 0)
	if err != nil {
		return nil, err
	}

	st := &dto.CustomerStatementResponse{
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		AsOf:         asOf,
		RentBilled:   billed,
		Payments:     paid,
		Balance:      billed.Sub(paid),
		AccruedRent:  accrued,
		OpenLots:     open,
		Withdrawals:  make([]dto.WithdrawalResponse, 0, len(withdrawals)),
		PaymentList:  make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, l := range open {
		if l.RateMissing {
			st.AccrualIncomplete = true
		}
	}
	for _, w := range withdrawals {
		st.Withdrawals = append(st.Withdrawals, withdrawalSummary(w))
	}
	for _, p := range payments {
		if !p.PaidAt.After(asOf) {
			st.PaymentList = append(st.PaymentList, *toPaymentResponse(p))
		}
	}
	return st, nil
}

// accruals arriendo causado por lote abierto. Un lote en bodega sin tarifa queda con
// RateMissing y no aporta al total.
func (uc *StatementUseCase) accruals(ctx context.Context, companyID, customerID string, asOf time.Time) ([]dto.OpenLotAccrualDTO, decimal.Decimal, error) {
	lots, err := uc.lotRepo.List(ctx, repository.LotFilter{CompanyID: companyID, CustomerID: customerID, OnlyOpen: true})
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("estado de cuenta: lotes abiertos: %w", err)
	}
	schedules := map[string]*entity.RateSchedule{}
	total := decimal.Zero
	out := make([]dto.OpenLotAccrualDTO, 0, len(lots))
	for _, lot := range lots {
		schedule, ok := schedules[lot.WarehouseID]
		if !ok {
			schedule, err = uc.rateRepo.Get(ctx, lot.WarehouseID)
			if err != nil {
				return nil, decimal.Zero, err
			}
			schedules[lot.WarehouseID] = schedule
		}
		item := dto.OpenLotAccrualDTO{
			LotID:         lot.ID,
			WarehouseID:   lot.WarehouseID,
			CommodityID:   lot.CommodityID,
			BagsRemaining: lot.BagsRemaining,
			DaysStored:    ledger.DaysStored(lot.StorageStartDate, asOf),
			AccruedRent:   decimal.Zero,
		}
		amount, err := ledger.ComputeRent(lot, asOf, schedule)
		switch {
		case err == nil:
			item.AccruedRent = amount
			total = total.Add(amount)
		case errors.Is(err, domain.ErrRateScheduleMissing):
			item.RateMissing = true
			uc.log.Error().Err(err).
				Str("company_id", companyID).
				Str("warehouse_id", lot.WarehouseID).
				Str("lot_id", lot.ID).
				Msg("bodega sin tarifa aplicable, lote sin causación")
		default:
			return nil, decimal.Zero, err
		}
		out = append(out, item)
	}
	return out, total, nil
}

// StatementPDF genera el PDF del estado de cuenta.
func (uc *StatementUseCase) StatementPDF(ctx context.Context, companyID, customerID string, asOf time.Time) ([]byte, string, error) {
	st, err := uc.CustomerStatement(ctx, companyID, customerID, asOf)
	if err != nil {
		return nil, "", err
	}
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil || customer == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	pdf, err := uc.generator.GenerateCustomerStatement(ctx, StatementData{Company: company, Customer: customer, Statement: st})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("estado_cuenta_%s_%s.pdf", customer.TaxID, asOf.Format("20060102")), nil
}

// ReceiptPDF genera el recibo de un retiro liquidado con el detalle por lote.
//
// Retorna domain.ErrNotFound si el retiro no existe o es de otra empresa.
func (uc *StatementUseCase) ReceiptPDF(ctx context.Context, companyID, withdrawalID string) ([]byte, string, error) {
	// ── 1. Cargar retiro ──────────────────────────────────────────────────────
	w, err := uc.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener retiro: %w", err)
	}
	if w == nil || w.CompanyID != companyID {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. Empresa, cliente y nombres ─────────────────────────────────────────
	company, err := uc.companyRepo.GetByID(ctx, companyID)
	if err != nil || company == nil {
		return nil, "", fmt.Errorf("pdf: obtener empresa: %w", err)
	}
	customer, err := uc.customerRepo.GetByID(ctx, w.CustomerID)
	if err != nil || customer == nil {
		return nil, "", fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	data := ReceiptData{Withdrawal: w, Company: company, Customer: customer}
	if wh, err := uc.warehouseRepo.GetByID(ctx, w.WarehouseID); err == nil && wh != nil {
		data.WarehouseName = wh.Name
	}
	if com, err := uc.commodityRepo.GetByID(ctx, w.CommodityID); err == nil && com != nil {
		data.CommodityName = com.Name
	}

	// ── 3. Enriquecer líneas con la fecha de ingreso del lote ─────────────────
	for _, l := range w.Lines {
		line := ReceiptLine{AllocationLine: l}
		if lot, err := uc.lotRepo.GetByID(ctx, l.LotID); err == nil && lot != nil {
			line.LotStartDate = lot.StorageStartDate
		}
		data.Lines = append(data.Lines, line)
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdf, err := uc.generator.GenerateWithdrawalReceipt(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("recibo_retiro_%s.pdf", w.ID[:min(8, len(w.ID))]), nil
}

func withdrawalSummary(w *entity.Withdrawal) dto.WithdrawalResponse {
	resp := dto.WithdrawalResponse{
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
		resp.Lines = append(resp.Lines, dto.AllocationLineResponse{
			LotID:         l.LotID,
			QuantityTaken: l.QuantityTaken,
			DaysStored:    l.DaysStored,
			Periods:       l.Periods,
			RatePerUnit:   l.RatePerUnit,
			RentCharged:   l.RentCharged,
		})
	}
	return resp
}
