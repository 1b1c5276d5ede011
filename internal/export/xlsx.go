package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook.
const (
	SheetSummary  = "Resumo"
	SheetFloors   = "Pavimentos"
	SheetStages   = "Etapas"
	SheetIndirect = "Indiretos"
)

// XLSX renders the budget as a workbook with summary, floor, stage and
// indirect cost sheets.
func XLSX(r Report) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, sheet := range []string{SheetFloors, SheetStages, SheetIndirect} {
		if _, err := file.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	writers := []func(*excelize.File, Report, int) error{writeSummary, writeFloors, writeStages, writeIndirect}
	for _, write := range writers {
		if err := write(file, r, bold); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(file *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeSummary(file *excelize.File, r Report, bold int) error {
	p, s := r.Project, r.Summary
	rows := [][]any{
		{"Projeto", p.Name},
		{"Endereço", p.Address},
		{"Área do Terreno (m²)", p.LandArea},
		{"Área Privativa (m²)", p.PrivateArea},
		{"Nº de Unidades", p.UnitCount},
		{"Área Construída (m²)", s.Totals.ConstructedArea},
		{"Área Equivalente (m²)", s.Totals.EquivalentArea},
		{"VGV (R$)", s.VGV},
		{"Custo Direto (R$)", s.Totals.DirectCost},
		{"Custo Indireto (R$)", s.IndirectCostTotal},
		{"Custo do Terreno (R$)", s.LandCostTotal},
		{"Custo Total (R$)", s.GrandTotalCost},
		{"Lucro Bruto (R$)", s.GrossProfit},
		{"Margem (%)", s.MarginPct},
		{"Custo Total por m² Construído (R$)", s.Indicators.TotalCostPerBuiltM2},
		{"Administração da Obra (R$)", s.SiteAdminTotal},
	}
	if err := writeRows(file, SheetSummary, rows); err != nil {
		return err
	}
	if err := file.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", len(rows)), bold); err != nil {
		return err
	}
	return file.SetColWidth(SheetSummary, "A", "A", 38)
}

func writeFloors(file *excelize.File, r Report, bold int) error {
	header := make([]any, len(FloorHeader))
	for i, h := range FloorHeader {
		header[i] = h
	}
	rows := [][]any{header}
	for _, f := range r.Summary.Floors {
		rows = append(rows, []any{
			f.Floor.Name, f.Floor.Type, f.Floor.Repetition, f.Floor.Coefficient,
			f.Floor.Area, f.EquivalentArea, f.ConstructedArea, f.DirectCost,
		})
	}
	t := r.Summary.Totals
	rows = append(rows, []any{"Total", "", "", "", "", t.EquivalentArea, t.ConstructedArea, t.DirectCost})

	if err := writeRows(file, SheetFloors, rows); err != nil {
		return err
	}
	if err := file.SetCellStyle(SheetFloors, "A1", "H1", bold); err != nil {
		return err
	}
	if err := file.SetColWidth(SheetFloors, "A", "A", 24); err != nil {
		return err
	}
	return file.SetColWidth(SheetFloors, "B", "B", 36)
}

func writeStages(file *excelize.File, r Report, bold int) error {
	rows := [][]any{{"Etapa", "Fonte", "Percentual (%)", "Custo (R$)"}}
	for _, line := range r.Summary.Stages {
		rows = append(rows, []any{line.Name, r.Project.StagePercentages[line.Name].Source, line.Percentage, line.Amount})
	}
	if err := writeRows(file, SheetStages, rows); err != nil {
		return err
	}
	if err := file.SetCellStyle(SheetStages, "A1", "D1", bold); err != nil {
		return err
	}
	return file.SetColWidth(SheetStages, "A", "A", 40)
}

func writeIndirect(file *excelize.File, r Report, bold int) error {
	rows := [][]any{{"Item", "Fonte", "Percentual do VGV (%)", "Custo (R$)"}}
	for _, line := range r.Summary.IndirectItems {
		rows = append(rows, []any{line.Name, r.Project.IndirectCostPercentages[line.Name].Source, line.Percentage, line.Amount})
	}
	for _, line := range r.Summary.FixedIndirect {
		rows = append(rows, []any{line.Name, "Fixo", "", line.Amount})
	}
	rows = append(rows, []any{"Total", "", "", r.Summary.IndirectCostTotal})

	if err := writeRows(file, SheetIndirect, rows); err != nil {
		return err
	}
	if err := file.SetCellStyle(SheetIndirect, "A1", "D1", bold); err != nil {
		return err
	}
	return file.SetColWidth(SheetIndirect, "A", "A", 36)
}
