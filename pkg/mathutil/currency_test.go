package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 1.0, 1.0, 0.1, true},
		{"Within tolerance", 1.0, 1.05, 0.1, true},
		{"Outside tolerance", 1.0, 1.15, 0.1, false},
		{"Zero tolerance exact match", 1.0, 1.0, 0.0, true},
		{"Zero tolerance no match", 1.0, 1.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      float64
		lo       float64
		hi       float64
		expected float64
	}{
		{"Inside range", 5, 0, 10, 5},
		{"Below range", -1, 0, 10, 0},
		{"Above range", 11, 0, 10, 10},
		{"Degenerate range", 3, 2, 2, 2},
		{"At lower bound", 0, 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := Clamp(tt.val, tt.lo, tt.hi); result != tt.expected {
				t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tt.val, tt.lo, tt.hi, result, tt.expected)
			}
		})
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(10, 4); got != 2.5 {
		t.Errorf("SafeDivide(10, 4) = %v, expected 2.5", got)
	}
	if got := SafeDivide(10, 0); got != 0 {
		t.Errorf("SafeDivide(10, 0) = %v, expected 0", got)
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"50% of 100", 50.0, 100.0, 50.0},
		{"25% of 200", 50.0, 200.0, 25.0},
		{"Zero total", 50.0, 0.0, 0.0},
		{"Both zero", 0.0, 0.0, 0.0},
		{"Negative value", -50.0, 100.0, -50.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v",
					tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"50% of 100", 100.0, 50.0, 50.0},
		{"Brokerage on VGV", 2000000.0, 3.61, 72200.0},
		{"0% of value", 100.0, 0.0, 0.0},
		{"Percentage of zero", 0.0, 50.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v",
					tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}
