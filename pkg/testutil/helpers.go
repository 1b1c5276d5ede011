// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/ciceromayk/parametrico/internal/calc"
)

// FindLine finds a line by name in a summary section such as Stages or
// IndirectItems. Returns a pointer to the line if found, nil otherwise.
func FindLine(lines []calc.Line, name string) *calc.Line {
	for i := range lines {
		if lines[i].Name == name {
			return &lines[i]
		}
	}
	return nil
}

// FindFloor finds the first floor result with the given floor name.
func FindFloor(floors []calc.FloorResult, name string) *calc.FloorResult {
	for i := range floors {
		if floors[i].Floor.Name == name {
			return &floors[i]
		}
	}
	return nil
}
