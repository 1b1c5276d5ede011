// Package output provides utilities for formatting and displaying budget results.
package output

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ciceromayk/parametrico/internal/calc"
)

// PrettyFormat writes a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, projectName string, s calc.Summary) {
	p := message.NewPrinter(language.BrazilianPortuguese)

	fmt.Fprintf(w, "--- Orçamento paramétrico: %s ---\n", projectName)
	fmt.Fprintf(w, "Pavimento                | Tipo                                  | Rep. | Coef. | Área Eq. (m²) | Custo Direto\n")
	fmt.Fprintf(w, "_________                | ____                                  | ____ | _____ | _____________ | ____________\n")
	for _, f := range s.Floors {
		_, _ = p.Fprintf(w, "%-24s | %-37s | %4d | %5.2f | %13.2f | R$ %.2f\n",
			f.Floor.Name, f.Floor.Type, f.Floor.Repetition, f.Floor.Coefficient, f.EquivalentArea, f.DirectCost)
	}
	fmt.Fprintln(w)

	for _, row := range summaryRows(s) {
		_, _ = p.Fprintf(w, "%-34s %s\n", row.label+":", row.pretty(p))
	}

	if len(s.Stages) > 0 {
		fmt.Fprintf(w, "\nEtapas da obra\n")
		for _, line := range s.Stages {
			_, _ = p.Fprintf(w, "  %-40s %6.2f%%  R$ %.2f\n", line.Name, line.Percentage, line.Amount)
		}
	}
	if len(s.IndirectItems)+len(s.FixedIndirect) > 0 {
		fmt.Fprintf(w, "\nCustos indiretos\n")
		for _, line := range s.IndirectItems {
			_, _ = p.Fprintf(w, "  %-40s %6.2f%%  R$ %.2f\n", line.Name, line.Percentage, line.Amount)
		}
		for _, line := range s.FixedIndirect {
			_, _ = p.Fprintf(w, "  %-40s   fixo   R$ %.2f\n", line.Name, line.Amount)
		}
	}
}

// CsvFormat writes the key figures in comma-separated value format.
func CsvFormat(w io.Writer, s calc.Summary) {
	fmt.Fprint(w, CsvString(s))
}

// CsvString returns the CsvFormat output as a string.
func CsvString(s calc.Summary) string {
	var b strings.Builder
	b.WriteString(`"metric","value"` + "\n")
	for _, row := range summaryRows(s) {
		fmt.Fprintf(&b, `"%s","%.2f"`+"\n", row.key, row.value)
	}
	return b.String()
}

type summaryRow struct {
	key     string
	label   string
	value   float64
	percent bool
	area    bool
}

func (r summaryRow) pretty(p *message.Printer) string {
	switch {
	case r.percent:
		return p.Sprintf("%.2f%%", r.value)
	case r.area:
		return p.Sprintf("%.2f m²", r.value)
	default:
		return p.Sprintf("R$ %.2f", r.value)
	}
}

func summaryRows(s calc.Summary) []summaryRow {
	return []summaryRow{
		{key: "equivalent_area", label: "Área equivalente", value: s.Totals.EquivalentArea, area: true},
		{key: "constructed_area", label: "Área construída", value: s.Totals.ConstructedArea, area: true},
		{key: "vgv", label: "VGV", value: s.VGV},
		{key: "direct_cost", label: "Custo direto", value: s.Totals.DirectCost},
		{key: "indirect_cost", label: "Custo indireto", value: s.IndirectCostTotal},
		{key: "land_cost", label: "Custo do terreno", value: s.LandCostTotal},
		{key: "total_cost", label: "Custo total", value: s.GrandTotalCost},
		{key: "gross_profit", label: "Lucro bruto", value: s.GrossProfit},
		{key: "margin_pct", label: "Margem", value: s.MarginPct, percent: true},
		{key: "total_cost_per_built_m2", label: "Custo total por m² construído", value: s.Indicators.TotalCostPerBuiltM2},
		{key: "site_admin_total", label: "Administração da obra", value: s.SiteAdminTotal},
	}
}
