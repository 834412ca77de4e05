package commons

import (
	"fmt"
	"math/big"
	"sort"
)

// Phase enumerates the sale lifecycle. The hatch is the private, allowlisted
// raise; the sale opens to everyone once the raise cap is met; closed is a
// terminal state triggered outside the engine.
type Phase uint8

const (
	PhaseHatch Phase = iota
	PhaseOpen
	PhaseClosed
)

// Valid reports whether the phase value is within the supported range.
func (p Phase) Valid() bool {
	switch p {
	case PhaseHatch, PhaseOpen, PhaseClosed:
		return true
	default:
		return false
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseHatch:
		return "hatch"
	case PhaseOpen:
		return "open"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// PhaseState tracks the current phase plus the set of addresses that bought
// during the hatch. Hatchers stays sorted and duplicate-free so the persisted
// encoding is canonical.
type PhaseState struct {
	Phase    Phase    `json:"phase"`
	Hatchers []string `json:"hatchers,omitempty"`
}

// NewPhaseState returns the initial state: hatch with no hatchers.
func NewPhaseState() *PhaseState {
	return &PhaseState{Phase: PhaseHatch}
}

// Clone returns a deep copy of the phase state.
func (p *PhaseState) Clone() *PhaseState {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Hatchers = append([]string(nil), p.Hatchers...)
	return &clone
}

// AssertBuyAllowed gates the buy path by phase: hatch buys must come from an
// allowlisted address (when an allowlist is configured), open buys are
// unrestricted, and closed buys are rejected outright.
func (p *PhaseState) AssertBuyAllowed(cfg *PhaseConfig, buyer string) error {
	switch p.Phase {
	case PhaseHatch:
		if !cfg.Hatch.allowlisted(buyer) {
			return fmt.Errorf("%w: %s", ErrNotAllowlisted, buyer)
		}
		return nil
	case PhaseOpen:
		return nil
	case PhaseClosed:
		return ErrSaleClosed
	default:
		return fmt.Errorf("%w: unknown phase %d", ErrConfig, uint8(p.Phase))
	}
}

// RecordHatcher inserts the buyer into the hatcher set. Set semantics make
// the insert idempotent.
func (p *PhaseState) RecordHatcher(buyer string) {
	idx := sort.SearchStrings(p.Hatchers, buyer)
	if idx < len(p.Hatchers) && p.Hatchers[idx] == buyer {
		return
	}
	p.Hatchers = append(p.Hatchers, "")
	copy(p.Hatchers[idx+1:], p.Hatchers[idx:])
	p.Hatchers[idx] = buyer
}

// IsHatcher reports whether the address bought during the hatch.
func (p *PhaseState) IsHatcher(addr string) bool {
	idx := sort.SearchStrings(p.Hatchers, addr)
	return idx < len(p.Hatchers) && p.Hatchers[idx] == addr
}

// MaybeTransition moves the sale from hatch to open once the post-payment
// reserve total reaches the configured raise cap. It fires at most once over
// the sale's life and reports whether the phase changed.
func (p *PhaseState) MaybeTransition(cfg *PhaseConfig, newReserveTotal *big.Int) bool {
	if p.Phase != PhaseHatch {
		return false
	}
	if newReserveTotal == nil || cfg.Hatch.InitialRaise.Max == nil {
		return false
	}
	if newReserveTotal.Cmp(cfg.Hatch.InitialRaise.Max) >= 0 {
		p.Phase = PhaseOpen
		return true
	}
	return false
}
