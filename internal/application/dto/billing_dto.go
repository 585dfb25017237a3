package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// CustomerListResponse lista paginada de clientes.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RecordPaymentRequest body para POST /api/payments.
type RecordPaymentRequest struct {
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"` // nil = ahora
}

// PaymentResponse abono registrado.
type PaymentResponse struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
}

// OpenLotAccrualDTO arriendo causado de un lote abierto a la fecha del estado de cuenta.
type OpenLotAccrualDTO struct {
	LotID         string          `json:"lot_id"`
	WarehouseID   string          `json:"warehouse_id"`
	CommodityID   string          `json:"commodity_id"`
	BagsRemaining int64           `json:"bags_remaining"`
	DaysStored    int             `json:"days_stored"`
	AccruedRent   decimal.Decimal `json:"accrued_rent"`
	RateMissing   bool            `json:"rate_missing,omitempty"`
}

// CustomerStatementResponse estado de cuenta: arriendo liquidado, causado y abonos.
// Balance = RentBilled - Payments; AccruedRent es informativo (aún no liquidado).
type CustomerStatementResponse struct {
	CustomerID   string               `json:"customer_id"`
	CustomerName string               `json:"customer_name"`
	AsOf         time.Time            `json:"as_of"`
	RentBilled   decimal.Decimal      `json:"rent_billed"`
	Payments     decimal.Decimal      `json:"payments"`
	Balance      decimal.Decimal      `json:"balance"`
	AccruedRent  decimal.Decimal      `json:"accrued_rent"`
	OpenLots     []OpenLotAccrualDTO  `json:"open_lots"`
	Withdrawals  []WithdrawalResponse `json:"withdrawals"`
	PaymentList  []PaymentResponse    `json:"payment_list"`

	// AccrualIncomplete algún lote abierto está en una bodega sin tarifa aplicable.
	AccrualIncomplete bool `json:"accrual_incomplete,omitempty"`
}
