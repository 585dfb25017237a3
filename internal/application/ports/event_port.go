package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys de los eventos del ledger.
const (
	EventWithdrawalSettled = "withdrawal.settled"
	EventLotCreated        = "lot.created"
)

// SettledLine línea de un retiro en el evento publicado.
type SettledLine struct {
	LotID         string          `json:"lot_id"`
	QuantityTaken int64           `json:"quantity_taken"`
	RentCharged   decimal.Decimal `json:"rent_charged"`
	LotClosed     bool            `json:"lot_closed"`
}

// WithdrawalSettledEvent payload de withdrawal.settled.
type WithdrawalSettledEvent struct {
	WithdrawalID string          `json:"withdrawal_id"`
	RequestID    string          `json:"request_id"`
	CompanyID    string          `json:"company_id"`
	CustomerID   string          `json:"customer_id"`
	CommodityID  string          `json:"commodity_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Quantity     int64           `json:"quantity"`
	TotalRent    decimal.Decimal `json:"total_rent"`
	SettledAt    time.Time       `json:"settled_at"`
	Lines        []SettledLine   `json:"lines"`
}

// LotCreatedEvent payload de lot.created.
type LotCreatedEvent struct {
	LotID       string    `json:"lot_id"`
	CompanyID   string    `json:"company_id"`
	CustomerID  string    `json:"customer_id"`
	CommodityID string    `json:"commodity_id"`
	WarehouseID string    `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	StartDate   time.Time `json:"start_date"`
}

// EventPublisher publica eventos de dominio después del commit.
// Un fallo al publicar no revierte la operación ya confirmada.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// NoopPublisher descarta los eventos; se usa cuando AMQP no está configurado.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
