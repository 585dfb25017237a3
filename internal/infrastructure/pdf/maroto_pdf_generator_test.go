package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$0,00", money(decimal.Zero))
	assert.Equal(t, "$250,00", money(decimal.RequireFromString("250")))
	assert.Equal(t, "$1.234.567,50", money(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-$1.500,00", money(decimal.RequireFromString("-1500")))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "999", formatMoney("999"))
	assert.Equal(t, "25.000", formatMoney("25000"))
	assert.Equal(t, "1.000.000", formatMoney("1000000"))
}

func TestGenerateWithdrawalReceipt_ProducePDF(t *testing.T) {
	settled := time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)
	data := billing.ReceiptData{
		Withdrawal: &entity.Withdrawal{
			ID: "9b2f6a1e-0000-4000-8000-000000000001", RequestID: "req-1",
			Quantity: 120, TotalRent: decimal.RequireFromString("550"), SettledAt: settled,
		},
		Company:       &entity.Company{Name: "Bodegas del Llano", TaxID: "900123456"},
		Customer:      &entity.Customer{Name: "Arrocera San Juan", TaxID: "800555111"},
		WarehouseName: "Bodega Norte",
		CommodityName: "Arroz Paddy",
		Lines: []billing.ReceiptLine{
			{AllocationLine: entity.AllocationLine{LotID: "lot-a", QuantityTaken: 100, DaysStored: 45, Periods: 2,
				RatePerUnit: decimal.RequireFromString("2.5"), RentCharged: decimal.RequireFromString("500")},
				LotStartDate: settled.AddDate(0, 0, -44)},
			{AllocationLine: entity.AllocationLine{LotID: "lot-b", QuantityTaken: 20, DaysStored: 14, Periods: 1,
				RatePerUnit: decimal.RequireFromString("2.5"), RentCharged: decimal.RequireFromString("50")},
				LotStartDate: settled.AddDate(0, 0, -13)},
		},
	}

	out, err := NewMarotoPDFGenerator().GenerateWithdrawalReceipt(context.Background(), data)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerateCustomerStatement_ProducePDF(t *testing.T) {
	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	data := billing.StatementData{
		Company:  &entity.Company{Name: "Bodegas del Llano", TaxID: "900123456"},
		Customer: &entity.Customer{Name: "Arrocera San Juan", TaxID: "800555111"},
		Statement: &dto.CustomerStatementResponse{
			AsOf:        asOf,
			RentBilled:  decimal.RequireFromString("200"),
			Payments:    decimal.RequireFromString("150"),
			Balance:     decimal.RequireFromString("50"),
			AccruedRent: decimal.RequireFromString("450"),
			OpenLots:    []dto.OpenLotAccrualDTO{{LotID: "lot-a", BagsRemaining: 60, DaysStored: 60, AccruedRent: decimal.RequireFromString("300")}},
			Withdrawals: []dto.WithdrawalResponse{{ID: "wd-1", Quantity: 40, TotalRent: decimal.RequireFromString("200"), SettledAt: asOf.AddDate(0, 0, -16)}},
			PaymentList: []dto.PaymentResponse{{ID: "pay-1", Amount: decimal.RequireFromString("150"), Method: "transfer", PaidAt: asOf.AddDate(0, 0, -10)}},
		},
	}

	out, err := NewMarotoPDFGenerator().GenerateCustomerStatement(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestGenerate_DatosIncompletos(t *testing.T) {
	g := NewMarotoPDFGenerator()
	_, err := g.GenerateWithdrawalReceipt(context.Background(), billing.ReceiptData{})
	assert.Error(t, err)
	_, err = g.GenerateCustomerStatement(context.Background(), billing.StatementData{})
	assert.Error(t, err)
}
