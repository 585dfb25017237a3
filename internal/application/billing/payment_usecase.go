package billing

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/domain/repository"
)

var paymentMethods = []string{entity.PaymentMethodCash, entity.PaymentMethodTransfer, entity.PaymentMethodCard}

// PaymentUseCase registra abonos de clientes contra su saldo de arriendo.
type PaymentUseCase struct {
	repo         repository.PaymentRepository
	customerRepo repository.CustomerRepository
	log          zerolog.Logger
}

// NewPaymentUseCase construye el caso de uso.
func NewPaymentUseCase(repo repository.PaymentRepository, customerRepo repository.CustomerRepository, log zerolog.Logger) *PaymentUseCase {
	return &PaymentUseCase{repo: repo, customerRepo: customerRepo, log: log.With().Str("component", "payments").Logger()}
}

// RecordPayment registra un abono. El monto debe ser positivo.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, companyID, userID string, in dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if in.CustomerID == "" || !in.Amount.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	if !slices.Contains(paymentMethods, in.Method) {
		return nil, fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, in.Method)
	}
	customer, err := uc.customerRepo.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	paidAt := now
	if in.PaidAt != nil {
		paidAt = *in.PaidAt
	}
	p := &entity.Payment{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		CustomerID: in.CustomerID,
		Amount:     in.Amount,
		Method:     in.Method,
		Reference:  in.Reference,
		PaidAt:     paidAt,
		CreatedBy:  userID,
		CreatedAt:  now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.Info().Str("customer_id", p.CustomerID).Str("amount", p.Amount.String()).Msg("abono registrado")
	return toPaymentResponse(p), nil
}

func toPaymentResponse(p *entity.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:         p.ID,
		CustomerID: p.CustomerID,
		Amount:     p.Amount,
		Method:     p.Method,
		Reference:  p.Reference,
		PaidAt:     p.PaidAt,
	}
}
