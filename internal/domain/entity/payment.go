package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
	PaymentMethodCard     = "card"
)

// Payment abono de un cliente contra su saldo de arriendo.
type Payment struct {
	ID         string
	CompanyID  string
	CustomerID string
	Amount     decimal.Decimal
	Method     string
	Reference  string
	PaidAt     time.Time
	CreatedBy  string
	CreatedAt  time.Time
}
