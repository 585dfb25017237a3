// Package pdf genera los documentos imprimibles del ledger: el recibo de un
// retiro liquidado y el estado de cuenta del cliente.
//
// Layout del recibo (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Recibo + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  BODEGA / MERCANCÍA / CLIENTE                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Lote | Ingreso | Bultos | Días | Tarifa | Arriendo  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Bultos retirados / TOTAL ARRIENDO                 │
//	│  QR con el id del retiro                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Rentabodega-api/internal/application/billing"
	"github.com/jhoicas/Rentabodega-api/internal/domain/entity"
)

// Verificar en tiempo de compilación que MarotoPDFGenerator implementa el puerto.
var _ billing.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

func newDocument(title string, company *entity.Company) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(company.Name, true).
		Build()
	return maroto.New(cfg)
}

func render(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// GenerateWithdrawalReceipt dibuja el recibo de un retiro con el detalle por lote.
func (g *MarotoPDFGenerator) GenerateWithdrawalReceipt(_ context.Context, data billing.ReceiptData) ([]byte, error) {
	if data.Withdrawal == nil || data.Company == nil || data.Customer == nil {
		return nil, fmt.Errorf("pdf: datos de recibo incompletos")
	}
	w := data.Withdrawal
	m := newDocument("Recibo de retiro", data.Company)

	m.AddRows(headerRow(data.Company, "RECIBO DE RETIRO", shortID(w.ID), w.SettledAt.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow("BODEGA Y MERCANCÍA", data.WarehouseName,
		fmt.Sprintf("Mercancía: %s   |   Solicitud: %s", nonEmpty(data.CommodityName, "-"), nonEmpty(w.RequestID, "-"))))
	m.AddRows(customerRow(data.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(
		header{"Lote", 2, align.Left},
		header{"Ingreso", 2, align.Center},
		header{"Bultos", 2, align.Right},
		header{"Días", 1, align.Center},
		header{"Tarifa", 2, align.Right},
		header{"Arriendo", 3, align.Right},
	))
	for _, l := range data.Lines {
		m.AddRows(row.New(7).Add(
			cell(shortID(l.LotID), 2, align.Left),
			cell(l.LotStartDate.Format("02/01/2006"), 2, align.Center),
			cell(formatMoney(fmt.Sprint(l.QuantityTaken)), 2, align.Right),
			cell(fmt.Sprint(l.DaysStored), 1, align.Center),
			cell(money(l.RatePerUnit)+fmt.Sprintf(" x%d", l.Periods), 2, align.Right),
			cell(money(l.RentCharged), 3, align.Right),
		))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(
		[2]string{"Bultos retirados:", formatMoney(fmt.Sprint(w.Quantity))},
		[2]string{"TOTAL ARRIENDO:", money(w.TotalRent)},
	))

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(40).Add(
		col.New(3).Add(code.NewQr(w.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Identificador del retiro:", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(w.ID, props.Text{Style: fontstyle.Bold, Size: 8, Top: 9, Left: 3}),
			text.New("El arriendo se liquida por período iniciado sobre los bultos retirados de cada lote, "+
				"el lote más antiguo primero.", props.Text{Size: 7, Top: 16, Left: 3, Color: colorGray}),
		),
	))
	return render(m)
}

// GenerateCustomerStatement dibuja el estado de cuenta del cliente a la fecha de corte.
func (g *MarotoPDFGenerator) GenerateCustomerStatement(_ context.Context, data billing.StatementData) ([]byte, error) {
	if data.Statement == nil || data.Company == nil || data.Customer == nil {
		return nil, fmt.Errorf("pdf: datos de estado de cuenta incompletos")
	}
	st := data.Statement
	m := newDocument("Estado de cuenta", data.Company)

	m.AddRows(headerRow(data.Company, "ESTADO DE CUENTA", data.Customer.TaxID, "Corte: "+st.AsOf.Format("02/01/2006")))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(data.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionRow("RETIROS LIQUIDADOS"))
	m.AddRows(tableHeaderRow(
		header{"Fecha", 3, align.Left},
		header{"Retiro", 3, align.Left},
		header{"Bultos", 3, align.Right},
		header{"Arriendo", 3, align.Right},
	))
	for _, w := range st.Withdrawals {
		m.AddRows(row.New(7).Add(
			cell(w.SettledAt.Format("02/01/2006"), 3, align.Left),
			cell(shortID(w.ID), 3, align.Left),
			cell(formatMoney(fmt.Sprint(w.Quantity)), 3, align.Right),
			cell(money(w.TotalRent), 3, align.Right),
		))
	}

	m.AddRows(sectionRow("ABONOS"))
	m.AddRows(tableHeaderRow(
		header{"Fecha", 3, align.Left},
		header{"Medio", 3, align.Left},
		header{"Referencia", 3, align.Left},
		header{"Valor", 3, align.Right},
	))
	for _, p := range st.PaymentList {
		m.AddRows(row.New(7).Add(
			cell(p.PaidAt.Format("02/01/2006"), 3, align.Left),
			cell(p.Method, 3, align.Left),
			cell(nonEmpty(p.Reference, "-"), 3, align.Left),
			cell(money(p.Amount), 3, align.Right),
		))
	}

	if len(st.OpenLots) > 0 {
		m.AddRows(sectionRow("LOTES ABIERTOS (ARRIENDO CAUSADO, NO LIQUIDADO)"))
		m.AddRows(tableHeaderRow(
			header{"Lote", 3, align.Left},
			header{"Bultos", 3, align.Right},
			header{"Días", 3, align.Center},
			header{"Causado", 3, align.Right},
		))
		for _, l := range st.OpenLots {
			accrued := money(l.AccruedRent)
			if l.RateMissing {
				accrued = "Sin tarifa"
			}
			m.AddRows(row.New(7).Add(
				cell(shortID(l.LotID), 3, align.Left),
				cell(formatMoney(fmt.Sprint(l.BagsRemaining)), 3, align.Right),
				cell(fmt.Sprint(l.DaysStored), 3, align.Center),
				cell(accrued, 3, align.Right),
			))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(
		[2]string{"Arriendo liquidado:", money(st.RentBilled)},
		[2]string{"Abonos:", money(st.Payments)},
		[2]string{"SALDO:", money(st.Balance)},
	))
	m.AddRows(row.New(8).Add(col.New(12).Add(
		text.New("Arriendo causado en lotes abiertos: "+money(st.AccruedRent)+
			". Se cobra al retirar la mercancía.", props.Text{Size: 7, Color: colorGray, Top: 2}),
	)))
	return render(m)
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: Razón social + NIT (izq) y título + número + fecha (der).
func headerRow(company *entity.Company, title, number, date string) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+company.TaxID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(date, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func infoRow(label, title, detail string) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(title, "-"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// customerRow: datos del depositante.
func customerRow(customer *entity.Customer) core.Row {
	return infoRow("CLIENTE / DEPOSITANTE", customer.Name, fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
		customer.TaxID,
		nonEmpty(customer.Email, "-"),
		nonEmpty(customer.Phone, "-"),
	))
}

func sectionRow(label string) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 3}),
	))
}

type header struct {
	label string
	size  int
	align align.Type
}

// tableHeaderRow: cabecera de tabla con texto blanco sobre fondo primario.
func tableHeaderRow(cols ...header) core.Row {
	out := make([]core.Col, 0, len(cols))
	for _, h := range cols {
		out = append(out, col.New(h.size).Add(text.New(h.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: h.align,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(out...)
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

// totalsRow: pares etiqueta/valor alineados a la derecha; el último va resaltado.
func totalsRow(pairs ...[2]string) core.Row {
	labels := make([]core.Component, 0, len(pairs))
	values := make([]core.Component, 0, len(pairs))
	for i, p := range pairs {
		style := props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: float64(i * 6)}
		valueStyle := props.Text{Size: 9, Align: align.Right, Right: 1, Top: float64(i * 6)}
		if i == len(pairs)-1 {
			style.Size, style.Color = 10, colorPrimary
			valueStyle.Style, valueStyle.Size, valueStyle.Color = fontstyle.Bold, 10, colorPrimary
		}
		labels = append(labels, text.New(p[0], style))
		values = append(values, text.New(p[1], valueStyle))
	}
	return row.New(float64(6*len(pairs)+4)).Add(
		col.New(4),
		col.New(4).Add(labels...),
		col.New(4).Add(values...),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// money formatea un valor en pesos con puntos de miles y coma decimal.
// Ej: 1234567.5 → "$1.234.567,50"
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + "$" + formatMoney(intPart) + "," + frac
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
