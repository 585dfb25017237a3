package dto

import "time"

// AnomalyRequest body para POST /api/ai/anomalies.
type AnomalyRequest struct {
	WarehouseID string    `json:"warehouse_id,omitempty"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

// WithdrawalSummaryDTO resumen de un retiro enviado al modelo.
type WithdrawalSummaryDTO struct {
	WithdrawalID string    `json:"withdrawal_id"`
	CustomerID   string    `json:"customer_id"`
	WarehouseID  string    `json:"warehouse_id"`
	CommodityID  string    `json:"commodity_id"`
	Quantity     int64     `json:"quantity"`
	TotalRent    string    `json:"total_rent"`
	LotsTouched  int       `json:"lots_touched"`
	MaxDays      int       `json:"max_days_stored"`
	SettledAt    time.Time `json:"settled_at"`
}

// AnomalyDTO retiro marcado por el modelo.
type AnomalyDTO struct {
	WithdrawalID string  `json:"withdrawal_id"`
	Reason       string  `json:"reason"`
	RiskScore    float64 `json:"risk_score"` // 0..1
}

// AnomalyReportDTO respuesta del análisis de anomalías.
type AnomalyReportDTO struct {
	Analyzed  int          `json:"analyzed"`
	Anomalies []AnomalyDTO `json:"anomalies"`
	Summary   string       `json:"summary"`
}
