package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/ciceromayk/parametrico/pkg/format"
)

// FloorHeader is the header row of the floor table.
var FloorHeader = []string{
	"Nome", "Tipo", "Rep.", "Coef.", "Área (m²)", "Área Eq. Total (m²)", "Área Constr. (m²)", "Custo Direto (R$)",
}

// CSV renders the floor table, one row per floor, separated by ';'.
func CSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(FloorHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, f := range r.Summary.Floors {
		row := []string{
			f.Floor.Name,
			f.Floor.Type,
			strconv.Itoa(f.Floor.Repetition),
			format.Decimal(f.Floor.Coefficient, 2),
			format.Decimal(f.Floor.Area, 2),
			format.Decimal(f.EquivalentArea, 2),
			format.Decimal(f.ConstructedArea, 2),
			format.Decimal(f.DirectCost, 2),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
