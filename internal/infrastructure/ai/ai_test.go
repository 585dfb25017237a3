package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

func sampleWithdrawals() []dto.WithdrawalSummaryDTO {
	return []dto.WithdrawalSummaryDTO{
		{WithdrawalID: "wd-1", Quantity: 10, TotalRent: "25.00", LotsTouched: 1, MaxDays: 3, SettledAt: time.Now()},
		{WithdrawalID: "wd-2", Quantity: 900, TotalRent: "2.50", LotsTouched: 4, MaxDays: 400, SettledAt: time.Now()},
	}
}

func TestExtractJSON_QuitaMarkdown(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON(`Claro, aquí está: {"a":1} saludos`))
	assert.Equal(t, "", extractJSON("sin json"))
}

func TestParseAnomalyReport_FiltraIDsYAcotaRiesgo(t *testing.T) {
	raw := `{"anomalies":[
		{"withdrawal_id":"wd-2","reason":"arriendo bajo para 400 días","risk_score":1.7},
		{"withdrawal_id":"inventado","reason":"x","risk_score":0.5}
	],"summary":"1 retiro sospechoso"}`

	report, err := parseAnomalyReport(raw, sampleWithdrawals())
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, "wd-2", report.Anomalies[0].WithdrawalID)
	assert.Equal(t, 1.0, report.Anomalies[0].RiskScore)
	assert.Equal(t, "1 retiro sospechoso", report.Summary)
}

func TestParseAnomalyReport_RespuestaSinJSON(t *testing.T) {
	_, err := parseAnomalyReport("no puedo ayudar", sampleWithdrawals())
	assert.Error(t, err)
}

func TestAnthropicService_SinAPIKey(t *testing.T) {
	_, err := NewAnthropicService("", "").DetectWithdrawalAnomalies(context.Background(), sampleWithdrawals())
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestGeminiService_SinAPIKey(t *testing.T) {
	_, err := NewGeminiService("", "").DetectWithdrawalAnomalies(context.Background(), sampleWithdrawals())
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestAnthropicService_RespuestaDelServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("x-api-key"))
		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Messages[0].Content, "wd-2")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"` +
			"```json\\n{\\\"anomalies\\\":[{\\\"withdrawal_id\\\":\\\"wd-2\\\",\\\"reason\\\":\\\"atípico\\\",\\\"risk_score\\\":0.8}],\\\"summary\\\":\\\"ok\\\"}\\n```" +
			`"}]}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("key-1", "")
	svc.url = srv.URL
	report, err := svc.DetectWithdrawalAnomalies(context.Background(), sampleWithdrawals())
	require.NoError(t, err)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, 0.8, report.Anomalies[0].RiskScore)
}

func TestAnthropicService_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"despacio"}}`))
	}))
	defer srv.Close()

	svc := NewAnthropicService("key-1", "")
	svc.url = srv.URL
	_, err := svc.DetectWithdrawalAnomalies(context.Background(), sampleWithdrawals())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_error")
}

func TestGeminiService_RespuestaDelServidor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-2", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"anomalies\":[],\"summary\":\"sin hallazgos\"}"}]}}]}`))
	}))
	defer srv.Close()

	svc := NewGeminiService("key-2", "")
	svc.urlFormat = srv.URL + "/%s?key=%s"
	report, err := svc.DetectWithdrawalAnomalies(context.Background(), sampleWithdrawals())
	require.NoError(t, err)
	assert.Empty(t, report.Anomalies)
	assert.Equal(t, "sin hallazgos", report.Summary)
}
