package curve

import "math/big"

// constantCurve sells every token at the same flat price m.
//
//	price(s)   = m
//	reserve(s) = m*s
//	supply(r)  = r/m
type constantCurve struct {
	m      *big.Int
	places DecimalPlaces
}

func (c *constantCurve) SpotPrice(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	return new(big.Int).Set(c.m), nil
}

func (c *constantCurve) Reserve(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	sWad := c.places.fromSupply(supply)
	rWad := new(big.Int).Div(new(big.Int).Mul(c.m, sWad), oneWad)
	raw := c.places.toReserve(rWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *constantCurve) Supply(reserve *big.Int) (*big.Int, error) {
	if err := CheckAmount(reserve); err != nil {
		return nil, err
	}
	rWad := c.places.fromReserve(reserve)
	sWad := new(big.Int).Div(new(big.Int).Mul(rWad, oneWad), c.m)
	raw := c.places.toSupply(sWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// linearCurve prices the next token proportionally to the supply already
// outstanding.
//
//	price(s)   = m*s
//	reserve(s) = m*s^2/2
//	supply(r)  = sqrt(2r/m)
type linearCurve struct {
	m      *big.Int
	places DecimalPlaces
}

func (c *linearCurve) SpotPrice(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	sWad := c.places.fromSupply(supply)
	price := new(big.Int).Div(new(big.Int).Mul(c.m, sWad), oneWad)
	if err := CheckAmount(price); err != nil {
		return nil, err
	}
	return price, nil
}

func (c *linearCurve) Reserve(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	sWad := c.places.fromSupply(supply)
	// Single floor division at the end keeps the rounding error to one unit.
	num := new(big.Int).Mul(c.m, new(big.Int).Mul(sWad, sWad))
	den := new(big.Int).Mul(two, new(big.Int).Mul(oneWad, oneWad))
	rWad := num.Div(num, den)
	raw := c.places.toReserve(rWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *linearCurve) Supply(reserve *big.Int) (*big.Int, error) {
	if err := CheckAmount(reserve); err != nil {
		return nil, err
	}
	rWad := c.places.fromReserve(reserve)
	num := new(big.Int).Mul(two, new(big.Int).Mul(rWad, new(big.Int).Mul(oneWad, oneWad)))
	sWad := isqrt(num.Div(num, c.m))
	raw := c.places.toSupply(sWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// squareRootCurve grows the price with the square root of supply, flattening
// out as the sale matures.
//
//	price(s)   = m*sqrt(s)
//	reserve(s) = (2/3)*m*s^(3/2)
//	supply(r)  = ((3r)/(2m))^(2/3)
type squareRootCurve struct {
	m      *big.Int
	places DecimalPlaces
}

func (c *squareRootCurve) SpotPrice(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	sWad := c.places.fromSupply(supply)
	// sqrt of a wad-scaled value, still in the wad basis.
	root := isqrt(new(big.Int).Mul(sWad, oneWad))
	price := new(big.Int).Div(new(big.Int).Mul(c.m, root), oneWad)
	if err := CheckAmount(price); err != nil {
		return nil, err
	}
	return price, nil
}

func (c *squareRootCurve) Reserve(supply *big.Int) (*big.Int, error) {
	if err := CheckAmount(supply); err != nil {
		return nil, err
	}
	sWad := c.places.fromSupply(supply)
	// s^(3/2) in the wad basis: sqrt(s^3 / wad).
	pow := new(big.Int).Mul(sWad, new(big.Int).Mul(sWad, sWad))
	pow32 := isqrt(pow.Div(pow, oneWad))
	num := new(big.Int).Mul(two, new(big.Int).Mul(c.m, pow32))
	den := new(big.Int).Mul(three, oneWad)
	rWad := num.Div(num, den)
	raw := c.places.toReserve(rWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *squareRootCurve) Supply(reserve *big.Int) (*big.Int, error) {
	if err := CheckAmount(reserve); err != nil {
		return nil, err
	}
	rWad := c.places.fromReserve(reserve)
	num := new(big.Int).Mul(three, new(big.Int).Mul(rWad, oneWad))
	k := num.Div(num, new(big.Int).Mul(two, c.m))
	// k^(2/3) in the wad basis: cbrt(k^2 * wad).
	sWad := icbrt(new(big.Int).Mul(k, new(big.Int).Mul(k, oneWad)))
	raw := c.places.toSupply(sWad)
	if err := CheckAmount(raw); err != nil {
		return nil, err
	}
	return raw, nil
}
