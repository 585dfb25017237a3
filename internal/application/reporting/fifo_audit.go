package reporting

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/domain/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

const auditPageSize = 100

// FIFOAuditor recorre el libro de cada empresa y reporta hallazgos de conservación,
// cierre y orden FIFO. Solo lectura.
type FIFOAuditor struct {
	companyRepo    repository.CompanyRepository
	lotRepo        repository.LotRepository
	withdrawalRepo repository.WithdrawalRepository
	log            zerolog.Logger
}

// NewFIFOAuditor construye el auditor.
func NewFIFOAuditor(
	companyRepo repository.CompanyRepository,
	lotRepo repository.LotRepository,
	withdrawalRepo repository.WithdrawalRepository,
	log zerolog.Logger,
) *FIFOAuditor {
	return &FIFOAuditor{
		companyRepo:    companyRepo,
		lotRepo:        lotRepo,
		withdrawalRepo: withdrawalRepo,
		log:            log.With().Str("component", "fifo_audit").Logger(),
	}
}

// AuditReport hallazgos por empresa.
type AuditReport struct {
	Companies   int
	Lots        int
	Withdrawals int
	Violations  map[string][]ledger.Violation // company_id -> hallazgos
}

// Clean informa si no hubo hallazgos.
func (r *AuditReport) Clean() bool {
	return len(r.Violations) == 0
}

// AuditCompany audita el libro completo de una empresa, lotes anulados incluidos.
func (a *FIFOAuditor) AuditCompany(ctx context.Context, companyID string) ([]ledger.Violation, int, int, error) {
	lots, err := a.lotRepo.List(ctx, repository.LotFilter{CompanyID: companyID})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("auditoría: lotes de %s: %w", companyID, err)
	}
	withdrawals, err := a.withdrawalRepo.List(ctx, repository.WithdrawalFilter{CompanyID: companyID})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("auditoría: retiros de %s: %w", companyID, err)
	}
	return ledger.Audit(lots, withdrawals), len(lots), len(withdrawals), nil
}

// AuditAll audita todas las empresas; companyID no vacío limita a una.
func (a *FIFOAuditor) AuditAll(ctx context.Context, companyID string) (*AuditReport, error) {
	ids := []string{companyID}
	if companyID == "" {
		var err error
		if ids, err = a.companyIDs(ctx); err != nil {
			return nil, err
		}
	}

	report := &AuditReport{Violations: map[string][]ledger.Violation{}}
	for _, id := range ids {
		violations, lots, withdrawals, err := a.AuditCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		report.Companies++
		report.Lots += lots
		report.Withdrawals += withdrawals
		if len(violations) > 0 {
			report.Violations[id] = violations
			a.log.Warn().Str("company_id", id).Int("violations", len(violations)).Msg("libro inconsistente")
		}
	}
	a.log.Info().
		Int("companies", report.Companies).
		Int("lots", report.Lots).
		Int("withdrawals", report.Withdrawals).
		Msg("auditoría completada")
	return report, nil
}

func (a *FIFOAuditor) companyIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += auditPageSize {
		page, err := a.companyRepo.List(ctx, auditPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("auditoría: listar empresas: %w", err)
		}
		for _, c := range page {
			ids = append(ids, c.ID)
		}
		if len(page) < auditPageSize {
			return ids, nil
		}
	}
}
