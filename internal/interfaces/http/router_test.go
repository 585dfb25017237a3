package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ledger"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/application/reporting"
	"github.com/jhoicas/Rentabodega-api/internal/application/usecase"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/memory"
	"github.com/jhoicas/Rentabodega-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Rentabodega-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Rentabodega-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

func buildLedgerApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	log := zerolog.Nop()

	require.NoError(t, store.Companies().Create(ctx, &entity.Company{ID: testCompanyID, Name: "Bodegas del Llano", TaxID: "900123456", Status: "active"}))
	require.NoError(t, store.Companies().ActivateModules(ctx, testCompanyID, []string{entity.ModuleStorage, entity.ModuleBilling}))
	require.NoError(t, store.Customers().Create(ctx, &entity.Customer{ID: "cust-1", CompanyID: testCompanyID, Name: "Arrocera San Juan", TaxID: "800555111"}))
	require.NoError(t, store.Commodities().Create(ctx, &entity.Commodity{ID: "com-1", CompanyID: testCompanyID, Name: "Arroz Paddy", Unit: "bulto"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: "wh-1", CompanyID: testCompanyID, Name: "Bodega Norte"}))

	refs := ledger.References{Customers: store.Customers(), Commodities: store.Commodities(), Warehouses: store.Warehouses()}
	m := metrics.NewLedgerMetrics()
	publisher := ports.NoopPublisher{}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AppName:        "rentabodega-test",
		CompanyUC:      usecase.NewCompanyUseCase(store.Companies()),
		WarehouseUC:    usecase.NewWarehouseUseCase(store.Warehouses()),
		RateScheduleUC: usecase.NewRateScheduleUseCase(store.RateSchedules(), store.Warehouses(), log),
		CommodityUC:    usecase.NewCommodityUseCase(store.Commodities()),
		CustomerUC:     billing.NewCustomerUseCase(store.Customers()),
		PaymentUC:      billing.NewPaymentUseCase(store.Payments(), store.Customers(), log),
		StatementUC: billing.NewStatementUseCase(billing.StatementDeps{
			Customers:   store.Customers(),
			Companies:   store.Companies(),
			Warehouses:  store.Warehouses(),
			Commodities: store.Commodities(),
			Lots:        store.Lots(),
			Withdrawals: store.Withdrawals(),
			Payments:    store.Payments(),
			Rates:       store.RateSchedules(),
			Generator:   infrapdf.NewMarotoPDFGenerator(),
		}, log),
		LotUC: ledger.NewLotUseCase(store.Lots(), store.RateSchedules(), store.Withdrawals(), refs, publisher, m, log),
		WithdrawalUC: ledger.NewWithdrawalUseCase(store, store.Lots(), store.Withdrawals(), store.RateSchedules(),
			refs, ports.NoopGuard{}, publisher, m, 3, log),
		OccupancyUC:   reporting.NewOccupancyUseCase(store.Reports()),
		AIUC:          usecase.NewAIUseCase(nil, store.Withdrawals()),
		ModuleService: usecase.NewModuleService(store.Companies()),
		Metrics:       m.Handler(),
		JWTSecret:     testJWTSecret,
		JWTIssuer:     testIssuer,
		Log:           log,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func seedLotsAndRates(t *testing.T, app *fiber.App) {
	t.Helper()
	resp := call(t, app, http.MethodPut, "/api/warehouses/wh-1/rate-schedule", "admin", map[string]any{
		"tiers": []map[string]any{{"threshold_days": 1, "period_days": 30, "rate_per_unit_per_period": "2.50"}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	for _, lot := range []map[string]any{
		{"customer_id": "cust-1", "commodity_id": "com-1", "warehouse_id": "wh-1", "quantity": 100, "storage_start_date": "2024-01-01T00:00:00Z"},
		{"customer_id": "cust-1", "commodity_id": "com-1", "warehouse_id": "wh-1", "quantity": 50, "storage_start_date": "2024-02-01T00:00:00Z"},
	} {
		resp := call(t, app, http.MethodPost, "/api/lots", "operator", lot)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
}

func withdrawal(requestID string, qty int64) map[string]any {
	return map[string]any{
		"request_id":   requestID,
		"customer_id":  "cust-1",
		"commodity_id": "com-1",
		"warehouse_id": "wh-1",
		"quantity":     qty,
		"as_of":        "2024-02-14T00:00:00Z",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestWithdrawals_LiquidaFIFOYRechazaReplay(t *testing.T) {
	app := buildLedgerApp(t)
	seedLotsAndRates(t, app)

	resp := call(t, app, http.MethodPost, "/api/withdrawals", "operator", withdrawal("req-1", 120))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[dto.WithdrawalResponse](t, resp)

	require.Len(t, out.Lines, 2)
	assert.EqualValues(t, 100, out.Lines[0].QuantityTaken)
	assert.EqualValues(t, 20, out.Lines[1].QuantityTaken)
	assert.Equal(t, "550", out.TotalRent.String(), "100*2.5*2 + 20*2.5*1")

	resp = call(t, app, http.MethodPost, "/api/withdrawals", "operator", withdrawal("req-1", 120))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "DUPLICATE_SETTLEMENT", errBody.Code)

	resp = call(t, app, http.MethodGet, "/api/lots/open?customer_id=cust-1&commodity_id=com-1&warehouse_id=wh-1", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	open := decode[dto.LotListResponse](t, resp)
	assert.EqualValues(t, 30, open.OpenBalance, "el replay no debitó otra vez")

	resp = call(t, app, http.MethodGet, "/api/lots/"+out.Lines[0].LotID+"/movements", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	mv := decode[dto.LotMovementsResponse](t, resp)
	require.Len(t, mv.Items, 1, "una sola línea pese al replay")
	assert.Equal(t, out.ID, mv.Items[0].WithdrawalID)
	assert.EqualValues(t, 100, mv.BagsWithdrawn)
	assert.EqualValues(t, 0, mv.BagsRemaining)

	resp = call(t, app, http.MethodGet, "/api/withdrawals/"+out.ID+"/receipt.pdf", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

func TestWithdrawals_SobreRetiro_Retorna422(t *testing.T) {
	app := buildLedgerApp(t)
	seedLotsAndRates(t, app)

	resp := call(t, app, http.MethodPost, "/api/withdrawals", "operator", withdrawal("req-2", 151))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_SUPPLY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestWithdrawals_PreviewNoConfirma(t *testing.T) {
	app := buildLedgerApp(t)
	seedLotsAndRates(t, app)

	resp := call(t, app, http.MethodPost, "/api/withdrawals/preview", "viewer", withdrawal("", 120))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.WithdrawalResponse](t, resp).Preview)

	resp = call(t, app, http.MethodGet, "/api/lots/open?customer_id=cust-1&commodity_id=com-1&warehouse_id=wh-1", "viewer", nil)
	assert.EqualValues(t, 150, decode[dto.LotListResponse](t, resp).OpenBalance)
}

func TestLotsOpen_ClienteInexistente_Retorna404(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodGet, "/api/lots/open?customer_id=cliente-inexistente&commodity_id=com-1&warehouse_id=wh-1", "viewer", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithdrawals_ViewerNoPuedeLiquidar(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodPost, "/api/withdrawals", "viewer", withdrawal("req-3", 1))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRouter_ModuloInactivo_Retorna403(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodPost, "/api/ai/anomalies", "admin", map[string]any{
		"from": "2024-01-01T00:00:00Z", "to": "2024-02-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "MODULE_DISABLED", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_RateScheduleFaltante_Retorna422(t *testing.T) {
	app := buildLedgerApp(t)
	resp := call(t, app, http.MethodGet, "/api/warehouses/wh-1/rate-schedule", "viewer", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "RATE_SCHEDULE_MISSING", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRouter_EstadoDeCuenta(t *testing.T) {
	app := buildLedgerApp(t)
	seedLotsAndRates(t, app)

	resp := call(t, app, http.MethodPost, "/api/withdrawals", "operator", withdrawal("req-4", 40))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodPost, "/api/payments", "operator", map[string]any{
		"customer_id": "cust-1", "amount": "150", "method": "transfer", "paid_at": "2024-02-20T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/customers/cust-1/statement?as_of=2024-03-01", "viewer", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.CustomerStatementResponse](t, resp)
	assert.Equal(t, "200", st.RentBilled.String(), "40*2.5*2")
	assert.Equal(t, "50", st.Balance.String())
}

func TestRouter_HealthYMetricsSonPublicos(t *testing.T) {
	app := buildLedgerApp(t)

	resp := call(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "ledger_settlements_total")

	resp = call(t, app, http.MethodGet, "/api/warehouses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
