package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/calc"
)

func sampleSummary(t *testing.T) calc.Summary {
	t.Helper()
	s, err := calc.Aggregate(calc.Input{
		Floors: []budget.Floor{
			{Name: "Tipo", Type: budget.DefaultFloorType, Repetition: 1, Coefficient: 1, Area: 100, CountsAsBuilt: true},
		},
		UnitCost:            4500,
		IndirectPercentages: map[string]float64{"Corretagem": 3.61},
		FixedIndirectCosts:  map[string]float64{"Stand de Vendas": 50000},
		StagePercentages:    map[string]float64{"Pintura": 100},
		PrivateArea:         200,
		AvgSalePricePerM2:   10000,
	})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	return s
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, "Aurora", sampleSummary(t))
	output := buf.String()

	expected := []string{
		"--- Orçamento paramétrico: Aurora ---",
		"Pavimento                | Tipo",
		"Tipo",
		"Custo total:",
		"Margem:",
		"Etapas da obra",
		"Pintura",
		"Custos indiretos",
		"Corretagem",
		"Stand de Vendas",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
}

func TestPrettyFormatEmptySummary(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, "Vazio", calc.Summary{})
	output := buf.String()

	if strings.Contains(output, "Etapas da obra") || strings.Contains(output, "Custos indiretos") {
		t.Errorf("expected empty sections to be omitted:\n%s", output)
	}
}

func TestCsvString(t *testing.T) {
	csv := CsvString(sampleSummary(t))
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if lines[0] != `"metric","value"` {
		t.Fatalf("unexpected header %q", lines[0])
	}
	expected := map[string]bool{
		`"direct_cost","450000.00"`:   false,
		`"vgv","2000000.00"`:          false,
		`"indirect_cost","122200.00"`: false,
		`"margin_pct","71.39"`:        false,
	}
	for _, line := range lines[1:] {
		if _, ok := expected[line]; ok {
			expected[line] = true
		}
	}
	for line, found := range expected {
		if !found {
			t.Errorf("CsvString missing line %s:\n%s", line, csv)
		}
	}
}

func TestCsvFormatMatchesCsvString(t *testing.T) {
	s := sampleSummary(t)
	var buf bytes.Buffer
	CsvFormat(&buf, s)
	if buf.String() != CsvString(s) {
		t.Errorf("CsvFormat and CsvString differ")
	}
}
