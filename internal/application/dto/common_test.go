package dto

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		name        string
		in          PageRequest
		page, limit int
		offset      int
	}{
		{"valores por defecto", PageRequest{}, 1, DefaultLimit, 0},
		{"page negativa", PageRequest{Page: -3, Limit: 5}, 1, 5, 0},
		{"limit por encima del máximo", PageRequest{Page: 2, Limit: 500}, 2, MaxLimit, MaxLimit},
		{"page enorme no desborda", PageRequest{Page: math.MaxInt, Limit: MaxLimit}, math.MaxInt / MaxLimit, MaxLimit, (math.MaxInt/MaxLimit - 1) * MaxLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.in
			p.Normalize()
			assert.Equal(t, tc.page, p.Page)
			assert.Equal(t, tc.limit, p.Limit)
			assert.Equal(t, tc.offset, p.Offset())
			assert.GreaterOrEqual(t, p.Offset(), 0)
		})
	}
}
