package billing

import (
	"context"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// ReceiptLine línea del recibo enriquecida con la fecha de ingreso del lote.
type ReceiptLine struct {
	entity.AllocationLine
	LotStartDate time.Time
}

// ReceiptData todo lo necesario para dibujar el recibo de un retiro.
type ReceiptData struct {
	Withdrawal    *entity.Withdrawal
	Company       *entity.Company
	Customer      *entity.Customer
	WarehouseName string
	CommodityName string
	Lines         []ReceiptLine
}

// StatementData estado de cuenta listo para imprimir.
type StatementData struct {
	Company   *entity.Company
	Customer  *entity.Customer
	Statement *dto.CustomerStatementResponse
}

// DocumentPDFGenerator puerto de salida para los documentos PDF (recibos y estados de cuenta).
type DocumentPDFGenerator interface {
	GenerateWithdrawalReceipt(ctx context.Context, data ReceiptData) ([]byte, error)
	GenerateCustomerStatement(ctx context.Context, data StatementData) ([]byte, error)
}
