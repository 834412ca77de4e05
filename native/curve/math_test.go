package curve

import (
	"math/big"
	"testing"
)

func TestIcbrt(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1"},
		{"7", "1"},
		{"8", "2"},
		{"26", "2"},
		{"27", "3"},
		{"1000000000000000000", "1000000"},
		{"999999999999999999", "999999"},
	}
	for _, tc := range cases {
		n, _ := new(big.Int).SetString(tc.in, 10)
		if got := icbrt(n).String(); got != tc.want {
			t.Fatalf("icbrt(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}

	// Exact cubes round-trip for widths past the 128-bit boundary.
	root, _ := new(big.Int).SetString("123456789123456789123456789", 10)
	if got := icbrt(cube(root)); got.Cmp(root) != 0 {
		t.Fatalf("icbrt of exact cube = %s, want %s", got, root)
	}
	below := new(big.Int).Sub(cube(root), big.NewInt(1))
	wantBelow := new(big.Int).Sub(root, big.NewInt(1))
	if got := icbrt(below); got.Cmp(wantBelow) != 0 {
		t.Fatalf("icbrt just below cube = %s, want %s", got, wantBelow)
	}
}

func TestDecimalString(t *testing.T) {
	wad := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatalf("bad literal %s", s)
		}
		return v
	}
	cases := []struct {
		in   *big.Int
		want string
	}{
		{nil, "0"},
		{big.NewInt(0), "0"},
		{wad("1000000000000000000"), "1"},
		{wad("1500000000000000000"), "1.5"},
		{wad("2000000000000000000"), "2"},
		{wad("100000000000000000"), "0.1"},
		{wad("1"), "0.000000000000000001"},
		{wad("2500000000000000000123"), "2500.000000000000000123"},
	}
	for _, tc := range cases {
		if got := DecimalString(tc.in); got != tc.want {
			t.Fatalf("DecimalString(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}
