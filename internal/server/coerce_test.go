package server

import (
	"math"
	"testing"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{float64(7), 7},
		{2.9, 2},
		{-2.9, -2},
		{1e300, math.MaxInt32},
		{"12", 12},
		{"  +8 pages", 8},
		{"-4", -4},
		{"2.5", 2},
		{"abc", 0},
		{"", 0},
		{"99999999999999999999", math.MaxInt32},
		{true, 0},
		{[]any{float64(3)}, 0},
	}
	for _, tt := range tests {
		if got := coerceInt(tt.in); got != tt.want {
			t.Errorf("coerceInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCoerceString(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"さっぽろ", "さっぽろ"},
		{float64(123), "123"},
		{1.5, "1.5"},
		{false, "false"},
		{[]any{"a"}, `["a"]`},
	}
	for _, tt := range tests {
		if got := coerceString(tt.in); got != tt.want {
			t.Errorf("coerceString(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
