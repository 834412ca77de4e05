package commons

import (
	"abcommons/core/events"
	"abcommons/core/types"
)

const (
	// EventTypeSaleInstantiated is emitted once when the sale is created.
	EventTypeSaleInstantiated = "commons.sale.instantiated"
	// EventTypeBuy is emitted on every successful purchase.
	EventTypeBuy = "commons.curve.buy"
	// EventTypeBurn is emitted on every successful redemption.
	EventTypeBurn = "commons.curve.burn"
	// EventTypePhaseTransitioned is emitted when the hatch opens.
	EventTypePhaseTransitioned = "commons.phase.transitioned"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func saleInstantiatedEvent(denom, reserveDenom, curveKind string) events.Event {
	return WrapEvent(&types.Event{
		Type: EventTypeSaleInstantiated,
		Attributes: map[string]string{
			"denom":        denom,
			"reserveDenom": reserveDenom,
			"curve":        curveKind,
		},
	})
}

func buyEvent(buyer, reserve, minted, phase string) events.Event {
	return WrapEvent(&types.Event{
		Type: EventTypeBuy,
		Attributes: map[string]string{
			"from":    buyer,
			"reserve": reserve,
			"supply":  minted,
			"phase":   phase,
		},
	})
}

func burnEvent(seller, burned, released string) events.Event {
	return WrapEvent(&types.Event{
		Type: EventTypeBurn,
		Attributes: map[string]string{
			"from":    seller,
			"supply":  burned,
			"reserve": released,
		},
	})
}

func phaseTransitionedEvent(from, to, reserve string) events.Event {
	return WrapEvent(&types.Event{
		Type: EventTypePhaseTransitioned,
		Attributes: map[string]string{
			"from":    from,
			"to":      to,
			"reserve": reserve,
		},
	})
}
