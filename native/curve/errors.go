package curve

import "errors"

var (
	// ErrOverflow is returned when a curve input or result exceeds the
	// unsigned 128-bit range raw token amounts live in.
	ErrOverflow = errors.New("curve: amount outside the representable range")
	// ErrDomain is returned for inputs outside the curve's valid domain,
	// such as nil or negative amounts.
	ErrDomain = errors.New("curve: input outside the curve domain")
	// ErrInvalidDecimals is returned when a token's decimal precision
	// exceeds the supported maximum.
	ErrInvalidDecimals = errors.New("curve: decimal places exceed supported maximum")
	// ErrInvalidCurve is returned for malformed curve parameters.
	ErrInvalidCurve = errors.New("curve: invalid curve parameters")
)
