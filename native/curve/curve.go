package curve

import (
	"fmt"
	"math/big"
)

// Curve is the pure numeric mapping between token supply, backing reserve and
// spot price. All three functions operate on raw integer token amounts and
// are monotonically non-decreasing; Reserve and Supply are mutual inverses
// within one minimal supply unit of rounding. No floating point is involved
// anywhere, so results are bit-identical across machines.
type Curve interface {
	// SpotPrice returns the instantaneous marginal price (reserve per
	// supply token) at the given raw supply, scaled by 10^18.
	SpotPrice(supply *big.Int) (*big.Int, error)
	// Reserve returns the raw reserve amount required to back the given
	// raw supply under the curve.
	Reserve(supply *big.Int) (*big.Int, error)
	// Supply returns the raw supply obtainable for the given raw reserve.
	Supply(reserve *big.Int) (*big.Int, error)
}

// Kind enumerates the closed set of supported curve shapes.
type Kind uint8

const (
	KindConstant Kind = iota
	KindLinear
	KindSquareRoot
)

// Valid reports whether the kind is within the supported set.
func (k Kind) Valid() bool {
	switch k {
	case KindConstant, KindLinear, KindSquareRoot:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindLinear:
		return "linear"
	case KindSquareRoot:
		return "square-root"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a configuration string onto a curve kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "constant":
		return KindConstant, nil
	case "linear":
		return KindLinear, nil
	case "square-root", "sqrt":
		return KindSquareRoot, nil
	default:
		return 0, fmt.Errorf("%w: unknown curve kind %q", ErrInvalidCurve, s)
	}
}

// Type is the persisted description of a curve: a kind plus its coefficient.
// The effective coefficient is Slope / 10^Scale, so integer configuration can
// express fractional slopes (Slope=1, Scale=1 means 0.1).
type Type struct {
	Kind  Kind
	Slope *big.Int
	Scale uint8
}

// Validate checks the curve description without constructing it.
func (t Type) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidCurve, uint8(t.Kind))
	}
	if t.Slope == nil || t.Slope.Sign() <= 0 {
		return fmt.Errorf("%w: slope must be positive", ErrInvalidCurve)
	}
	if t.Scale > MaxDecimalPlaces {
		return fmt.Errorf("%w: scale %d > %d", ErrInvalidCurve, t.Scale, MaxDecimalPlaces)
	}
	return nil
}

// Clone returns a deep copy of the curve description.
func (t Type) Clone() Type {
	clone := t
	if t.Slope != nil {
		clone.Slope = new(big.Int).Set(t.Slope)
	}
	return clone
}

// New constructs the curve implementation for this description. The kind set
// is closed, so dispatch is an exhaustive switch rather than open-ended
// registration.
func (t Type) New(places DecimalPlaces) (Curve, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	// Coefficient lifted into the wad basis once at construction.
	m := new(big.Int).Div(new(big.Int).Mul(t.Slope, oneWad), pow10(t.Scale))
	if m.Sign() == 0 {
		return nil, fmt.Errorf("%w: slope underflows scale %d", ErrInvalidCurve, t.Scale)
	}
	switch t.Kind {
	case KindConstant:
		return &constantCurve{m: m, places: places}, nil
	case KindLinear:
		return &linearCurve{m: m, places: places}, nil
	case KindSquareRoot:
		return &squareRootCurve{m: m, places: places}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidCurve, uint8(t.Kind))
	}
}
