package commons

import (
	"fmt"
	"math/big"
)

// mustPay validates that exactly one coin of the expected denomination with a
// positive amount is attached and returns a defensive copy of that amount.
func mustPay(funds []Coin, denom string) (*big.Int, error) {
	switch len(funds) {
	case 0:
		return nil, ErrNoFunds
	case 1:
	default:
		return nil, ErrMultipleDenoms
	}
	coin := funds[0]
	if coin.Denom != denom {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongDenom, denom, coin.Denom)
	}
	if coin.Amount == nil || coin.Amount.Sign() <= 0 {
		return nil, ErrZeroPayment
	}
	return new(big.Int).Set(coin.Amount), nil
}
