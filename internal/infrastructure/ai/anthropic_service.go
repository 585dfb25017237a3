package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/application/ports"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

// Verificar en tiempo de compilación que AnthropicService implementa LLMService.
var _ ports.LLMService = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	anthropicModel       = "claude-3-5-haiku-20241022"
)

// AnthropicService adaptador que implementa LLMService usando la API REST de Anthropic (Claude).
// Usa net/http de la librería estándar de Go; no requiere el SDK oficial.
type AnthropicService struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador. model vacío = claude-3-5-haiku.
// Si apiKey está vacío las llamadas devuelven domain.ErrAIUnavailable.
func NewAnthropicService(apiKey, model string) *AnthropicService {
	if model == "" {
		model = anthropicModel
	}
	return &AnthropicService{
		apiKey: apiKey,
		model:  model,
		url:    anthropicMessagesURL,
		httpClient: &http.Client{
			// Timeout de red de 25 s; el use case impone además un context.WithTimeout de 15 s.
			Timeout: 25 * time.Second,
		},
	}
}

// ── Estructuras internas del protocolo Anthropic Messages API ─────────────────

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// DetectWithdrawalAnomalies envía el resumen de retiros a Claude y devuelve los marcados.
func (s *AnthropicService) DetectWithdrawalAnomalies(
	ctx context.Context,
	withdrawals []dto.WithdrawalSummaryDTO,
) (*dto.AnomalyReportDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY vacío", domain.ErrAIUnavailable)
	}

	content, err := userContent(withdrawals)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     s.model,
		MaxTokens: 2048,
		System:    anomalySystemPrompt,
		Messages:  []anthropicMessage{{Role: "user", Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return nil, fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Anthropic error (%s): %s", errResp.Error.Type, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Anthropic HTTP %d: %s", resp.StatusCode, string(rawBody))
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if len(anthResp.Content) == 0 {
		return nil, fmt.Errorf("AI: Claude devolvió respuesta vacía")
	}
	return parseAnomalyReport(anthResp.Content[0].Text, withdrawals)
}
