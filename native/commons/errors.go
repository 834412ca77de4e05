package commons

import (
	"errors"
	"fmt"
)

var (
	errNilState = errors.New("commons engine: state not configured")

	// ErrConfig covers invalid instantiation or configuration parameters.
	ErrConfig = errors.New("commons: invalid configuration")
	// ErrNotInitialized is returned when an operation runs before the sale
	// has been instantiated.
	ErrNotInitialized = errors.New("commons: sale not instantiated")
	// ErrAlreadyInitialized guards against instantiating twice.
	ErrAlreadyInitialized = errors.New("commons: sale already instantiated")

	// ErrPayment is the base class for malformed attached funds; the
	// variants below all match it via errors.Is.
	ErrPayment        = errors.New("commons: invalid payment")
	ErrNoFunds        = fmt.Errorf("%w: no funds attached", ErrPayment)
	ErrMultipleDenoms = fmt.Errorf("%w: more than one denomination attached", ErrPayment)
	ErrWrongDenom     = fmt.Errorf("%w: wrong denomination", ErrPayment)
	ErrZeroPayment    = fmt.Errorf("%w: amount must be positive", ErrPayment)
	// ErrPaymentMismatch fires when the attached supply-token payment does
	// not equal the requested burn amount. The two are reconciled by
	// asserting equality rather than trusting either side alone.
	ErrPaymentMismatch = fmt.Errorf("%w: attached amount does not match burn amount", ErrPayment)

	// ErrNotAllowlisted rejects hatch-phase buyers outside the allowlist.
	ErrNotAllowlisted = errors.New("commons: buyer not in hatch allowlist")
	// ErrSaleClosed rejects buys once the sale has closed. A closed sale
	// never accepts payment, so no funds can get stranded without minting.
	ErrSaleClosed = errors.New("commons: sale is closed")
	// ErrInvalidAmount rejects nil or non-positive operation amounts.
	ErrInvalidAmount = errors.New("commons: amount must be positive")
	// ErrAddress rejects blank caller addresses.
	ErrAddress = errors.New("commons: address required")
)
