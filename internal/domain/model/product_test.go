package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductFilterWindow(t *testing.T) {
	tests := []struct {
		name      string
		filter    ProductFilter
		total     int
		wantStart int
		wantEnd   int
	}{
		{"no paging", ProductFilter{}, 25, 0, 25},
		{"first page default limit", ProductFilter{Page: 1}, 25, 0, 10},
		{"last partial page", ProductFilter{Page: 3, Limit: 10}, 25, 20, 25},
		{"past end", ProductFilter{Page: 4, Limit: 10}, 25, 25, 25},
		{"limit without page", ProductFilter{Limit: 5}, 25, 0, 5},
		{"empty set", ProductFilter{Page: 1, Limit: 10}, 0, 0, 0},
		{"huge page", ProductFilter{Page: 100000000000000000, Limit: 100}, 1, 1, 1},
		{"max page", ProductFilter{Page: math.MaxInt, Limit: math.MaxInt}, 3, 3, 3},
		{"max limit", ProductFilter{Page: 1, Limit: math.MaxInt}, 3, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.filter.Window(tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
