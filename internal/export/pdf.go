package export

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/ciceromayk/parametrico/internal/calc"
	"github.com/ciceromayk/parametrico/pkg/format"
)

const pdfFont = "Helvetica"

// PDF renders a plain A4 report: header, viability figures, cost
// composition, per-m² indicators and the floor table.
func PDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle("Estudo de Viabilidade", true)
	pdf.AddPage()

	// Core fonts are cp1252; translate the UTF-8 text.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p, s := r.Project, r.Summary

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr("Estudo de Viabilidade: "+p.Name), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", 10)
	if p.Address != "" {
		pdf.CellFormat(0, 6, tr(p.Address), "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Terreno %s | Área privativa %s | %d unidades",
		format.Area(p.LandArea), format.Area(p.PrivateArea), p.UnitCount)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr, "Indicadores de Viabilidade")
	keyValueTable(pdf, tr, [][2]string{
		{"VGV", format.Currency(s.VGV)},
		{"Custo Total", format.Currency(s.GrandTotalCost)},
		{"Lucro Bruto", format.Currency(s.GrossProfit)},
		{"Margem", format.Percent(s.MarginPct)},
	})

	section(pdf, tr, "Composição do Custo")
	keyValueTable(pdf, tr, [][2]string{
		{"Custo Direto", format.Currency(s.Totals.DirectCost) + " (" + format.Percent(s.Indicators.DirectShareOfTotalPct) + ")"},
		{"Custo Indireto", format.Currency(s.IndirectCostTotal) + " (" + format.Percent(s.Indicators.IndirectShareOfTotalPct) + ")"},
		{"Custo do Terreno", format.Currency(s.LandCostTotal) + " (" + format.Percent(s.Indicators.LandShareOfTotalPct) + ")"},
		{"Administração da Obra", format.Currency(s.SiteAdminTotal)},
	})

	section(pdf, tr, "Indicadores por m² Construído")
	keyValueTable(pdf, tr, [][2]string{
		{"Área Construída", format.Area(s.Totals.ConstructedArea)},
		{"Custo Direto / m²", format.Currency(s.Indicators.DirectCostPerBuiltM2)},
		{"Custo Indireto / m²", format.Currency(s.Indicators.IndirectCostPerBuiltM2)},
		{"Custo Total / m²", format.Currency(s.Indicators.TotalCostPerBuiltM2)},
		{"Área Construída / Privativa", format.Number(s.Indicators.BuiltToPrivateRatio, 2)},
		{"Custo Direto por Unidade", format.Currency(s.Indicators.AvgDirectCostPerUnit)},
	})

	section(pdf, tr, "Pavimentos")
	floorTable(pdf, tr, s)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.Ln(2)
	pdf.SetFont(pdfFont, "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
}

func keyValueTable(pdf *gofpdf.Fpdf, tr func(string) string, rows [][2]string) {
	pdf.SetFont(pdfFont, "", 10)
	for _, row := range rows {
		pdf.CellFormat(80, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(row[1]), "1", 1, "R", false, 0, "")
	}
}

func floorTable(pdf *gofpdf.Fpdf, tr func(string) string, s calc.Summary) {
	headers := []string{"Nome", "Tipo", "Rep.", "Coef.", "Área (m²)", "Área Eq. (m²)", "Custo (R$)"}
	widths := []float64{32, 48, 12, 14, 24, 24, 26}

	drawRow := func(cols []string, style string) {
		pdf.SetFont(pdfFont, style, 8)
		for i, col := range cols {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(col), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	drawRow(headers, "B")
	for _, f := range s.Floors {
		drawRow([]string{
			f.Floor.Name,
			f.Floor.Type,
			strconv.Itoa(f.Floor.Repetition),
			format.Number(f.Floor.Coefficient, 2),
			format.Number(f.TotalArea, 2),
			format.Number(f.EquivalentArea, 2),
			format.Number(f.DirectCost, 2),
		}, "")
	}
	drawRow([]string{
		"Total", "", "", "",
		format.Number(s.Totals.TotalArea, 2),
		format.Number(s.Totals.EquivalentArea, 2),
		format.Number(s.Totals.DirectCost, 2),
	}, "B")
}
