package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
)

// anomalySystemPrompt define el rol del modelo y el formato exacto de salida.
const anomalySystemPrompt = `Eres un auditor de bodegas de almacenamiento de granos en Colombia.
Recibes una lista JSON de retiros liquidados (cantidad en bultos, arriendo cobrado, lotes tocados,
máximo de días almacenados). Marca los retiros sospechosos: cantidades atípicas para el cliente,
retiros fraccionados seguidos que evitan un período de cobro, arriendos muy bajos para los días
almacenados o patrones repetidos fuera de lo normal.
Devuelve ÚNICAMENTE un objeto JSON válido (sin markdown) con esta estructura exacta:
{
  "anomalies": [
    {"withdrawal_id": "<id del retiro>", "reason": "<motivo conciso en español, máximo 160 caracteres>", "risk_score": <número entre 0.0 y 1.0>}
  ],
  "summary": "<resumen en español, máximo 300 caracteres>"
}
Si no hay anomalías devuelve "anomalies": [].`

// jsonBlockRe extrae el primer objeto JSON del texto aunque el modelo lo envuelva en markdown.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// userContent serializa los retiros como mensaje de usuario.
func userContent(withdrawals []dto.WithdrawalSummaryDTO) (string, error) {
	b, err := json.Marshal(withdrawals)
	if err != nil {
		return "", fmt.Errorf("AI: serializar retiros: %w", err)
	}
	return "Retiros liquidados:\n" + string(b), nil
}

// parseAnomalyReport interpreta la respuesta del modelo. Descarta ids que no estaban
// en la entrada y acota risk_score a [0, 1].
func parseAnomalyReport(raw string, withdrawals []dto.WithdrawalSummaryDTO) (*dto.AnomalyReportDTO, error) {
	clean := extractJSON(raw)
	if clean == "" {
		return nil, fmt.Errorf("AI: no se encontró JSON válido en la respuesta del modelo (respuesta: %s)", raw)
	}
	var report dto.AnomalyReportDTO
	if err := json.Unmarshal([]byte(clean), &report); err != nil {
		return nil, fmt.Errorf("AI: parsear JSON de anomalías: %w (JSON extraído: %s)", err, clean)
	}

	known := make([]string, 0, len(withdrawals))
	for _, w := range withdrawals {
		known = append(known, w.WithdrawalID)
	}
	out := make([]dto.AnomalyDTO, 0, len(report.Anomalies))
	for _, a := range report.Anomalies {
		if !slices.Contains(known, a.WithdrawalID) {
			continue
		}
		a.RiskScore = min(max(a.RiskScore, 0), 1)
		out = append(out, a)
	}
	report.Anomalies = out
	return &report, nil
}

// extractJSON extrae el primer objeto JSON bien formado de un texto libre.
// Estrategia en dos pasos:
//  1. Eliminar bloques de código markdown (```json … ``` o ``` … ```).
//  2. Usar regex para capturar el primer bloque { … }.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx != -1 {
		after := text[idx+3:]
		if nl := strings.Index(after, "\n"); nl != -1 {
			after = after[nl+1:]
		}
		if end := strings.LastIndex(after, "```"); end != -1 {
			after = after[:end]
		}
		text = strings.TrimSpace(after)
	}
	if strings.HasPrefix(text, "{") {
		return text
	}
	return strings.TrimSpace(jsonBlockRe.FindString(text))
}
