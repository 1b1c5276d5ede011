package testutil

import (
	"testing"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/calc"
)

func TestFindLine(t *testing.T) {
	lines := []calc.Line{
		{Name: "Fundação", Percentage: 4, Amount: 4000},
		{Name: "Pintura", Percentage: 5, Amount: 5000},
		{Name: "IRPJ/ CS/ PIS/ COFINS", Percentage: 4, Amount: 80000},
	}

	tests := []struct {
		name         string
		searchName   string
		expectFound  bool
		expectedData float64
	}{
		{"Find first line", "Fundação", true, 4000},
		{"Find line with slash", "IRPJ/ CS/ PIS/ COFINS", true, 80000},
		{"Search for non-existent line", "Elevadores", false, 0},
		{"Empty search name", "", false, 0},
		{"Case sensitive search", "pintura", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindLine(lines, tt.searchName)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("Expected not to find line '%s', but found %+v", tt.searchName, result)
				}
				return
			}
			if result == nil {
				t.Fatalf("Expected to find line '%s', but got nil", tt.searchName)
			}
			if result.Amount != tt.expectedData {
				t.Errorf("Expected amount %.2f, got %.2f", tt.expectedData, result.Amount)
			}
		})
	}
}

func TestFindLineReturnsPointerIntoSlice(t *testing.T) {
	lines := []calc.Line{{Name: "Pintura", Amount: 1}}
	FindLine(lines, "Pintura").Amount = 2
	if lines[0].Amount != 2 {
		t.Errorf("Expected FindLine to point into the slice, amount is %.2f", lines[0].Amount)
	}
	if FindLine(nil, "Pintura") != nil {
		t.Error("Expected nil for an empty slice")
	}
}

func TestFindFloor(t *testing.T) {
	floors := []calc.FloorResult{
		{Floor: budget.Floor{Name: "Térreo"}, DirectCost: 100},
		{Floor: budget.Floor{Name: "Tipo"}, DirectCost: 200},
		{Floor: budget.Floor{Name: "Tipo"}, DirectCost: 300},
	}

	if got := FindFloor(floors, "Tipo"); got == nil || got.DirectCost != 200 {
		t.Errorf("Expected the first 'Tipo' floor, got %+v", got)
	}
	if got := FindFloor(floors, "Cobertura"); got != nil {
		t.Errorf("Expected nil, got %+v", got)
	}
}
