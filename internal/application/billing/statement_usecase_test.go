package billing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakePDF struct {
	receipt   *billing.ReceiptData
	statement *billing.StatementData
}

func (f *fakePDF) GenerateWithdrawalReceipt(_ context.Context, data billing.ReceiptData) ([]byte, error) {
	f.receipt = &data
	return []byte("%PDF-recibo"), nil
}

func (f *fakePDF) GenerateCustomerStatement(_ context.Context, data billing.StatementData) ([]byte, error) {
	f.statement = &data
	return []byte("%PDF-estado"), nil
}

func seed(t *testing.T) (*memory.Store, *billing.StatementUseCase, *fakePDF) {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Companies().Create(ctx, &entity.Company{ID: "co-1", Name: "Bodegas Unidas", TaxID: "800"}))
	require.NoError(t, s.Customers().Create(ctx, &entity.Customer{ID: "cust-1", CompanyID: "co-1", Name: "Molinos del Sur", TaxID: "900"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: "co-1", Name: "Central"}))
	require.NoError(t, s.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-2", CompanyID: "co-1", Name: "Sin tarifa"}))
	require.NoError(t, s.Commodities().Create(ctx, &entity.Commodity{ID: "com-1", CompanyID: "co-1", Name: "Arroz", Unit: "bag"}))
	require.NoError(t, s.RateSchedules().Put(ctx, &entity.RateSchedule{
		CompanyID: "co-1", WarehouseID: "wh-1",
		Tiers: []entity.RateTier{{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("2.50")}},
	}))

	lots := []entity.StorageLot{
		{ID: "lot-a", BagsStored: 100, BagsRemaining: 60, WarehouseID: "wh-1", StorageStartDate: day(time.January, 1)},
		{ID: "lot-b", BagsStored: 10, BagsRemaining: 10, WarehouseID: "wh-2", StorageStartDate: day(time.January, 1)},
	}
	for _, l := range lots {
		l.CompanyID, l.CustomerID, l.CommodityID, l.Version = "co-1", "cust-1", "com-1", 1
		require.NoError(t, s.Lots().Create(ctx, &l))
	}
	require.NoError(t, s.Withdrawals().Create(ctx, &entity.Withdrawal{
		ID: "wd-1", CompanyID: "co-1", RequestID: "req-1", CustomerID: "cust-1", CommodityID: "com-1", WarehouseID: "wh-1",
		Quantity: 40, TotalRent: dec("200"), SettledAt: day(time.February, 14),
		Lines: []entity.AllocationLine{{ID: "ln-1", WithdrawalID: "wd-1", LotID: "lot-a", QuantityTaken: 40, RentCharged: dec("200"), DaysStored: 45, Periods: 2, RatePerUnit: dec("2.50")}},
	}))
	require.NoError(t, s.Payments().Create(ctx, &entity.Payment{
		ID: "pay-1", CompanyID: "co-1", CustomerID: "cust-1", Amount: dec("150"), Method: entity.PaymentMethodCash, PaidAt: day(time.February, 20),
	}))

	gen := &fakePDF{}
	uc := billing.NewStatementUseCase(billing.StatementDeps{
		Customers:   s.Customers(),
		Companies:   s.Companies(),
		Warehouses:  s.Warehouses(),
		Commodities: s.Commodities(),
		Lots:        s.Lots(),
		Withdrawals: s.Withdrawals(),
		Payments:    s.Payments(),
		Rates:       s.RateSchedules(),
		Generator:   gen,
	}, zerolog.Nop())
	return s, uc, gen
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado de cuenta
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomerStatement_SaldoYCausacion(t *testing.T) {
	_, uc, _ := seed(t)

	st, err := uc.CustomerStatement(context.Background(), "co-1", "cust-1", day(time.March, 1))
	require.NoError(t, err)

	assert.True(t, dec("200").Equal(st.RentBilled), "obtuvo %s", st.RentBilled)
	assert.True(t, dec("150").Equal(st.Payments))
	assert.True(t, dec("50").Equal(st.Balance))

	// lot-a: 60 bultos, 61 días = 3 períodos de 30: 60 * 2.5 * 3 = 450.
	// lot-b está en una bodega sin tarifa y no causa.
	assert.True(t, dec("450").Equal(st.AccruedRent), "obtuvo %s", st.AccruedRent)
	require.Len(t, st.OpenLots, 2)
	assert.Len(t, st.Withdrawals, 1)
	assert.Len(t, st.PaymentList, 1)
}

func TestCustomerStatement_BodegaSinTarifaQuedaMarcada(t *testing.T) {
	s, _, _ := seed(t)
	var buf bytes.Buffer
	uc := billing.NewStatementUseCase(billing.StatementDeps{
		Customers:   s.Customers(),
		Companies:   s.Companies(),
		Warehouses:  s.Warehouses(),
		Commodities: s.Commodities(),
		Lots:        s.Lots(),
		Withdrawals: s.Withdrawals(),
		Payments:    s.Payments(),
		Rates:       s.RateSchedules(),
		Generator:   &fakePDF{},
	}, zerolog.New(&buf))

	st, err := uc.CustomerStatement(context.Background(), "co-1", "cust-1", day(time.March, 1))
	require.NoError(t, err)
	assert.True(t, st.AccrualIncomplete)

	byLot := map[string]dto.OpenLotAccrualDTO{}
	for _, l := range st.OpenLots {
		byLot[l.LotID] = l
	}
	assert.False(t, byLot["lot-a"].RateMissing)
	assert.True(t, byLot["lot-b"].RateMissing)
	assert.True(t, byLot["lot-b"].AccruedRent.IsZero())

	assert.Contains(t, buf.String(), `"level":"error"`)
	assert.Contains(t, buf.String(), `"warehouse_id":"wh-2"`)
}

func TestCustomerStatement_TodasConTarifaNoEsIncompleto(t *testing.T) {
	s, uc, _ := seed(t)
	require.NoError(t, s.RateSchedules().Put(context.Background(), &entity.RateSchedule{
		CompanyID: "co-1", WarehouseID: "wh-2",
		Tiers: []entity.RateTier{{ThresholdDays: 1, PeriodDays: 30, RatePerUnitPerPeriod: dec("1.00")}},
	}))

	st, err := uc.CustomerStatement(context.Background(), "co-1", "cust-1", day(time.March, 1))
	require.NoError(t, err)
	assert.False(t, st.AccrualIncomplete)
	// 450 de lot-a + 10 * 1.00 * 3 de lot-b.
	assert.True(t, dec("480").Equal(st.AccruedRent), "obtuvo %s", st.AccruedRent)
}

func TestCustomerStatement_CorteAnteriorExcluyeMovimientos(t *testing.T) {
	_, uc, _ := seed(t)

	st, err := uc.CustomerStatement(context.Background(), "co-1", "cust-1", day(time.February, 1))
	require.NoError(t, err)
	assert.True(t, st.RentBilled.IsZero())
	assert.True(t, st.Payments.IsZero())
	assert.Empty(t, st.Withdrawals)
	assert.Empty(t, st.PaymentList)
}

func TestCustomerStatement_ClienteDeOtraEmpresa(t *testing.T) {
	_, uc, _ := seed(t)
	_, err := uc.CustomerStatement(context.Background(), "co-2", "cust-1", day(time.March, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStatementPDF_NombreDeArchivo(t *testing.T) {
	_, uc, gen := seed(t)
	pdf, name, err := uc.StatementPDF(context.Background(), "co-1", "cust-1", day(time.March, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "estado_cuenta_900_20240301.pdf", name)
	require.NotNil(t, gen.statement)
	assert.Equal(t, "Bodegas Unidas", gen.statement.Company.Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Recibo
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiptPDF_EnriqueceLineas(t *testing.T) {
	_, uc, gen := seed(t)
	_, name, err := uc.ReceiptPDF(context.Background(), "co-1", "wd-1")
	require.NoError(t, err)
	assert.Equal(t, "recibo_retiro_wd-1.pdf", name)

	require.NotNil(t, gen.receipt)
	assert.Equal(t, "Central", gen.receipt.WarehouseName)
	assert.Equal(t, "Arroz", gen.receipt.CommodityName)
	require.Len(t, gen.receipt.Lines, 1)
	assert.True(t, gen.receipt.Lines[0].LotStartDate.Equal(day(time.January, 1)))
}

func TestReceiptPDF_RetiroDeOtraEmpresa(t *testing.T) {
	_, uc, _ := seed(t)
	_, _, err := uc.ReceiptPDF(context.Background(), "co-2", "wd-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Abonos
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordPayment_Validaciones(t *testing.T) {
	s, _, _ := seed(t)
	uc := billing.NewPaymentUseCase(s.Payments(), s.Customers(), zerolog.Nop())
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, "co-1", "u-1", dto.RecordPaymentRequest{CustomerID: "cust-1", Amount: dec("0"), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordPayment(ctx, "co-1", "u-1", dto.RecordPaymentRequest{CustomerID: "cust-1", Amount: dec("10"), Method: "cheque"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordPayment(ctx, "co-2", "u-1", dto.RecordPaymentRequest{CustomerID: "cust-1", Amount: dec("10"), Method: "cash"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	resp, err := uc.RecordPayment(ctx, "co-1", "u-1", dto.RecordPaymentRequest{CustomerID: "cust-1", Amount: dec("10"), Method: "transfer", Reference: "TRX-1"})
	require.NoError(t, err)
	assert.Equal(t, "transfer", resp.Method)

	total, err := s.Payments().SumByCustomer(ctx, "co-1", "cust-1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, dec("160").Equal(total))
}

func TestCustomerUseCase_NITDuplicado(t *testing.T) {
	s, _, _ := seed(t)
	uc := billing.NewCustomerUseCase(s.Customers())
	_, err := uc.Create(context.Background(), "co-1", dto.CreateCustomerRequest{Name: "Otro", TaxID: "900"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(context.Background(), "co-2", dto.CreateCustomerRequest{Name: "Otro", TaxID: "900"})
	assert.NoError(t, err, "el NIT es único por empresa")
}
