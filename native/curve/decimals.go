package curve

import (
	"fmt"
	"math/big"
)

// MaxDecimalPlaces caps token precision so that wad-scaled intermediates stay
// within the widths the fixed-point math was sized for.
const MaxDecimalPlaces = 18

// DecimalPlaces reconciles the supply and reserve tokens' native decimal
// precisions. It is immutable once set at sale creation and is the only piece
// of token metadata the curve math depends on.
type DecimalPlaces struct {
	Supply  uint8 `json:"supply"`
	Reserve uint8 `json:"reserve"`
}

// NewDecimalPlaces validates both precisions against the supported maximum.
func NewDecimalPlaces(supply, reserve uint8) (DecimalPlaces, error) {
	if supply > MaxDecimalPlaces {
		return DecimalPlaces{}, fmt.Errorf("%w: supply decimals %d > %d", ErrInvalidDecimals, supply, MaxDecimalPlaces)
	}
	if reserve > MaxDecimalPlaces {
		return DecimalPlaces{}, fmt.Errorf("%w: reserve decimals %d > %d", ErrInvalidDecimals, reserve, MaxDecimalPlaces)
	}
	return DecimalPlaces{Supply: supply, Reserve: reserve}, nil
}

// fromSupply lifts a raw supply amount into the wad basis.
func (d DecimalPlaces) fromSupply(raw *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(raw, oneWad), pow10(d.Supply))
}

// toSupply floors a wad value back to raw supply units.
func (d DecimalPlaces) toSupply(wad *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(wad, pow10(d.Supply)), oneWad)
}

// fromReserve lifts a raw reserve amount into the wad basis.
func (d DecimalPlaces) fromReserve(raw *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(raw, oneWad), pow10(d.Reserve))
}

// toReserve floors a wad value back to raw reserve units.
func (d DecimalPlaces) toReserve(wad *big.Int) *big.Int {
	return new(big.Int).Div(new(big.Int).Mul(wad, pow10(d.Reserve)), oneWad)
}
