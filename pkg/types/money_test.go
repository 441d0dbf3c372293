package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsMoney(t *testing.T) {
	cases := map[string]bool{
		"0":           true,
		"1000000":     true,
		"12.5":        true,
		"12.50":       true,
		"12.500":      true,
		"1000000.004": false,
		"0.005":       false,
		"-1":          false,
	}
	for in, want := range cases {
		if got := IsMoney(decimal.RequireFromString(in)); got != want {
			t.Fatalf("IsMoney(%s) = %v, want %v", in, got, want)
		}
	}
}
