package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketlane/storefront/app/services"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		name   string
		amount float64
		want   int64
	}{
		{"whole dollars", 25, 2500},
		{"cents exact", 19.99, 1999},
		{"half cent rounds away from zero", 19.995, 2000},
		{"third of a cent rounds down", 10.003, 1000},
		{"zero passes through", 0, 0},
		{"negative passes through", -5.50, -550},
		{"negative half cent rounds away from zero", -19.995, -2000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, services.MinorUnits(tc.amount))
		})
	}
}
