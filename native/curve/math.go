package curve

import "math/big"

// All curve arithmetic happens in a canonical fixed-point basis scaled by
// 10^18 ("wad"), regardless of the native decimal precision of the supply and
// reserve tokens. Intermediate products are unbounded big integers, so the
// only rounding points are the explicit floor divisions and roots below.
// Raw token amounts are bounded to the unsigned 128-bit range.

var (
	oneWad     = pow10(18)
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

	two   = big.NewInt(2)
	three = big.NewInt(3)
)

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CheckAmount rejects raw amounts outside the unsigned 128-bit range the
// token ledger operates in.
func CheckAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return ErrDomain
	}
	if v.Cmp(maxUint128) > 0 {
		return ErrOverflow
	}
	return nil
}

// isqrt returns the floor square root of n. Negative inputs clamp to zero.
func isqrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return big.NewInt(0)
	}
	return new(big.Int).Sqrt(n)
}

// icbrt returns the floor cube root of n using Newton iteration with a final
// floor correction. The result is deterministic for every input.
func icbrt(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return big.NewInt(0)
	}
	x := new(big.Int).Lsh(big.NewInt(1), uint(n.BitLen())/3+1)
	for {
		x2 := new(big.Int).Mul(x, x)
		next := new(big.Int).Div(n, x2)
		next.Add(next, new(big.Int).Lsh(x, 1))
		next.Div(next, three)
		if next.Cmp(x) >= 0 {
			break
		}
		x = next
	}
	for cube(x).Cmp(n) > 0 {
		x.Sub(x, big.NewInt(1))
	}
	bump := new(big.Int).Add(x, big.NewInt(1))
	for cube(bump).Cmp(n) <= 0 {
		x.Set(bump)
		bump.Add(bump, big.NewInt(1))
	}
	return x
}

func cube(x *big.Int) *big.Int {
	return new(big.Int).Exp(x, three, nil)
}

// DecimalString renders a wad-scaled fixed-point value as a plain decimal
// string, trimming trailing zeroes from the fractional part.
func DecimalString(wad *big.Int) string {
	if wad == nil || wad.Sign() == 0 {
		return "0"
	}
	quo, rem := new(big.Int).QuoRem(new(big.Int).Set(wad), oneWad, new(big.Int))
	if rem.Sign() == 0 {
		return quo.String()
	}
	frac := rem.Text(10)
	for len(frac) < 18 {
		frac = "0" + frac
	}
	for len(frac) > 0 && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}
	return quo.String() + "." + frac
}
