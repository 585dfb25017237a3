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

// Verificar en tiempo de compilación que GeminiService implementa LLMService.
var _ ports.LLMService = (*GeminiService)(nil)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"
	geminiModel   = "gemini-1.5-flash"
)

// GeminiService adaptador que implementa LLMService llamando a la API REST de Google Gemini.
// Usa únicamente la librería estándar de Go (net/http) para no añadir dependencias externas.
type GeminiService struct {
	apiKey     string
	model      string
	urlFormat  string
	httpClient *http.Client
}

// NewGeminiService construye el adaptador. model vacío = gemini-1.5-flash.
func NewGeminiService(apiKey, model string) *GeminiService {
	if model == "" {
		model = geminiModel
	}
	return &GeminiService{
		apiKey:    apiKey,
		model:     model,
		urlFormat: geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Second, // timeout de red; el caller también pone WithTimeout
		},
	}
}

// ── Estructuras internas para la API de Gemini ────────────────────────────────

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  genConfig       `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	ResponseMIMEType string  `json:"responseMimeType"` // "application/json" → JSON puro garantizado
	Temperature      float32 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// DetectWithdrawalAnomalies llama a Gemini con el resumen de retiros.
func (s *GeminiService) DetectWithdrawalAnomalies(
	ctx context.Context,
	withdrawals []dto.WithdrawalSummaryDTO,
) (*dto.AnomalyReportDTO, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY vacío", domain.ErrAIUnavailable)
	}

	content, err := userContent(withdrawals)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: anomalySystemPrompt}}},
		Contents:          []geminiContent{{Role: "user", Parts: []geminiPart{{Text: content}}}},
		GenerationConfig: genConfig{
			ResponseMIMEType: "application/json",
			Temperature:      0.2, // baja temperatura para respuestas más deterministas
			MaxOutputTokens:  2048,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI: serializar request: %w", err)
	}

	url := fmt.Sprintf(s.urlFormat, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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
		var errResp geminiResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return nil, fmt.Errorf("AI: Gemini error %d: %s", errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("AI: Gemini HTTP %d", resp.StatusCode)
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(rawBody, &gemResp); err != nil {
		return nil, fmt.Errorf("AI: deserializar respuesta Gemini: %w", err)
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("AI: Gemini devolvió respuesta vacía")
	}
	return parseAnomalyReport(gemResp.Candidates[0].Content.Parts[0].Text, withdrawals)
}
