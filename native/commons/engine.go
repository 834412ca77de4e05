package commons

import (
	"fmt"
	"math/big"
	"strings"

	"abcommons/core/events"
	"abcommons/native/curve"
)

// The supply token lives under the token-factory namespace.
const denomPrefix = "factory"

// saleUpdate stages the slot writes of one operation. Only non-nil fields are
// written, and the backend persists the whole set in one atomic write.
type saleUpdate struct {
	curveState  *CurveState
	curveType   *curve.Type
	phase       *PhaseState
	phaseConfig *PhaseConfig
	supplyDenom *string
}

// engineState is the persistence boundary: four logical slots plus the
// derived supply denom, each loaded at operation entry and committed together
// at most once. Implementations return deep copies so the engine can compute
// against a private snapshot, and apply a Commit all-or-nothing.
type engineState interface {
	CurveStateGet() (*CurveState, bool, error)
	CurveTypeGet() (curve.Type, bool, error)
	PhaseGet() (*PhaseState, bool, error)
	PhaseConfigGet() (*PhaseConfig, bool, error)
	SupplyDenomGet() (string, bool, error)
	Commit(*saleUpdate) error
}

// Engine wires the bonding-curve sale logic with persistence and event
// emission. Every operation computes against a snapshot of the persisted
// slots and commits all of its writes in one atomic batch only after
// validation and arithmetic succeeded, so a failed call leaves no partial
// mutation behind.
type Engine struct {
	state   engineState
	emitter events.Emitter
}

// NewEngine constructs a sale engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

// InstantiateResult reports the supply denom the sale now controls and the
// intent registering it with the token system.
type InstantiateResult struct {
	Denom   string
	Intents []Intent
}

// Instantiate validates the sale parameters, seeds the four state slots and
// returns the denom-registration intent. It fails if the sale already exists.
func (e *Engine) Instantiate(msg *InstantiateMsg) (*InstantiateResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: instantiate message required", ErrConfig)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if _, ok, err := e.state.CurveStateGet(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	places, err := curve.NewDecimalPlaces(msg.Supply.Decimals, msg.Reserve.Decimals)
	if err != nil {
		return nil, err
	}
	// Construct once up front so malformed curve parameters surface now
	// rather than on the first buy.
	if _, err := msg.CurveType.New(places); err != nil {
		return nil, err
	}

	denom := fmt.Sprintf("%s/%s/%s", denomPrefix, strings.TrimSpace(msg.Issuer), strings.TrimSpace(msg.Supply.Subdenom))
	cfg := msg.PhaseConfig.Clone()
	curveType := msg.CurveType.Clone()

	if err := e.state.Commit(&saleUpdate{
		curveState:  NewCurveState(strings.TrimSpace(msg.Reserve.Denom), places),
		curveType:   &curveType,
		phase:       NewPhaseState(),
		phaseConfig: cfg,
		supplyDenom: &denom,
	}); err != nil {
		return nil, err
	}

	e.emit(saleInstantiatedEvent(denom, msg.Reserve.Denom, msg.CurveType.Kind.String()))
	return &InstantiateResult{
		Denom: denom,
		Intents: []Intent{CreateDenomIntent{
			Subdenom: msg.Supply.Subdenom,
			Name:     msg.Supply.Name,
			Symbol:   msg.Supply.Symbol,
		}},
	}, nil
}

// BuyResult reports the outcome of a purchase.
type BuyResult struct {
	Minted       *big.Int
	Reserve      *big.Int
	Supply       *big.Int
	Phase        Phase
	PhaseChanged bool
	Intents      []Intent
}

// Buy deposits the attached reserve payment into the curve and mints as many
// supply tokens as the curve grants for it. During the hatch the buyer must
// be allowlisted and is recorded as a hatcher; the buy that lifts the reserve
// total to the raise cap flips the sale open.
func (e *Engine) Buy(buyer string, funds []Coin) (*BuyResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	buyer = strings.TrimSpace(buyer)
	if buyer == "" {
		return nil, fmt.Errorf("%w: buyer", ErrAddress)
	}
	state, cfg, phase, curveType, denom, err := e.loadSale()
	if err != nil {
		return nil, err
	}

	payment, err := mustPay(funds, state.ReserveDenom)
	if err != nil {
		return nil, err
	}

	if err := phase.AssertBuyAllowed(cfg, buyer); err != nil {
		return nil, err
	}
	phaseDirty := false
	if phase.Phase == PhaseHatch {
		phase.RecordHatcher(buyer)
		phaseDirty = true
	}

	crv, err := curveType.New(state.Decimals)
	if err != nil {
		return nil, err
	}

	newReserve := new(big.Int).Add(state.Reserve, payment)
	if err := curve.CheckAmount(newReserve); err != nil {
		return nil, err
	}
	newSupply, err := crv.Supply(newReserve)
	if err != nil {
		return nil, err
	}
	minted := new(big.Int).Sub(newSupply, state.Supply)
	if minted.Sign() < 0 {
		// Supply must be monotone in reserve; a shrink here means the
		// curve and ledger disagree.
		return nil, fmt.Errorf("%w: supply shrank on buy", curve.ErrOverflow)
	}

	state.Reserve = newReserve
	state.Supply = newSupply
	if phase.MaybeTransition(cfg, newReserve) {
		phaseDirty = true
	}

	update := &saleUpdate{curveState: state}
	if phaseDirty {
		update.phase = phase
	}
	if err := e.state.Commit(update); err != nil {
		return nil, err
	}

	e.emit(buyEvent(buyer, payment.String(), minted.String(), phase.Phase.String()))
	if phaseDirty && phase.Phase == PhaseOpen {
		e.emit(phaseTransitionedEvent(PhaseHatch.String(), PhaseOpen.String(), newReserve.String()))
	}

	return &BuyResult{
		Minted:       minted,
		Reserve:      new(big.Int).Set(newReserve),
		Supply:       new(big.Int).Set(newSupply),
		Phase:        phase.Phase,
		PhaseChanged: phaseDirty && phase.Phase == PhaseOpen,
		Intents: []Intent{MintIntent{
			Denom:     denom,
			Amount:    new(big.Int).Set(minted),
			Recipient: buyer,
		}},
	}, nil
}

// BurnResult reports the outcome of a redemption.
type BurnResult struct {
	Burned   *big.Int
	Released *big.Int
	Reserve  *big.Int
	Supply   *big.Int
	Intents  []Intent
}

// Burn retires the attached supply tokens and pays the curve's released
// reserve back to the seller. The attached payment must equal amount exactly;
// the engine refuses to guess which of the two the seller meant.
func (e *Engine) Burn(seller string, amount *big.Int, funds []Coin) (*BurnResult, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	seller = strings.TrimSpace(seller)
	if seller == "" {
		return nil, fmt.Errorf("%w: seller", ErrAddress)
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	state, _, _, curveType, denom, err := e.loadSale()
	if err != nil {
		return nil, err
	}

	payment, err := mustPay(funds, denom)
	if err != nil {
		return nil, err
	}
	if payment.Cmp(amount) != 0 {
		return nil, fmt.Errorf("%w: burn %s, attached %s", ErrPaymentMismatch, amount, payment)
	}

	crv, err := curveType.New(state.Decimals)
	if err != nil {
		return nil, err
	}

	newSupply := new(big.Int).Sub(state.Supply, amount)
	if newSupply.Sign() < 0 {
		return nil, fmt.Errorf("%w: cannot burn more than the outstanding supply", curve.ErrOverflow)
	}
	newReserve, err := crv.Reserve(newSupply)
	if err != nil {
		return nil, err
	}
	released := new(big.Int).Sub(state.Reserve, newReserve)
	if released.Sign() < 0 {
		// Reserve must be monotone in supply.
		return nil, fmt.Errorf("%w: reserve grew on burn", curve.ErrOverflow)
	}

	state.Reserve = newReserve
	state.Supply = newSupply
	if err := e.state.Commit(&saleUpdate{curveState: state}); err != nil {
		return nil, err
	}

	e.emit(burnEvent(seller, amount.String(), released.String()))
	return &BurnResult{
		Burned:   new(big.Int).Set(amount),
		Released: new(big.Int).Set(released),
		Reserve:  new(big.Int).Set(newReserve),
		Supply:   new(big.Int).Set(newSupply),
		Intents: []Intent{
			BurnIntent{Denom: denom, Amount: new(big.Int).Set(amount), From: seller},
			SendIntent{Denom: state.ReserveDenom, Amount: new(big.Int).Set(released), Recipient: seller},
		},
	}, nil
}

// CurveInfoResponse is the read-only view of the sale's ledger.
type CurveInfoResponse struct {
	Reserve      *big.Int
	Supply       *big.Int
	SpotPrice    *big.Int // wad-scaled, 18 decimals
	ReserveDenom string
}

// CurveInfo returns the current reserve and supply totals plus the spot price
// at the outstanding supply. No side effects.
func (e *Engine) CurveInfo() (*CurveInfoResponse, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	state, ok, err := e.state.CurveStateGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	curveType, ok, err := e.state.CurveTypeGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	crv, err := curveType.New(state.Decimals)
	if err != nil {
		return nil, err
	}
	spot, err := crv.SpotPrice(state.Supply)
	if err != nil {
		return nil, err
	}
	return &CurveInfoResponse{
		Reserve:      new(big.Int).Set(state.Reserve),
		Supply:       new(big.Int).Set(state.Supply),
		SpotPrice:    spot,
		ReserveDenom: state.ReserveDenom,
	}, nil
}

// PhaseInfoResponse is the read-only view of the sale's phase machine.
type PhaseInfoResponse struct {
	Phase        Phase
	HatcherCount int
	Config       *PhaseConfig
}

// PhaseInfo returns the current phase, how many distinct hatchers have
// bought, and the immutable phase configuration. No side effects.
func (e *Engine) PhaseInfo() (*PhaseInfoResponse, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	phase, ok, err := e.state.PhaseGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	cfg, ok, err := e.state.PhaseConfigGet()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	return &PhaseInfoResponse{
		Phase:        phase.Phase,
		HatcherCount: len(phase.Hatchers),
		Config:       cfg,
	}, nil
}

// loadSale snapshots every slot a mutating operation needs. All returned
// values are private copies.
func (e *Engine) loadSale() (*CurveState, *PhaseConfig, *PhaseState, curve.Type, string, error) {
	state, ok, err := e.state.CurveStateGet()
	if err != nil {
		return nil, nil, nil, curve.Type{}, "", err
	}
	if !ok {
		return nil, nil, nil, curve.Type{}, "", ErrNotInitialized
	}
	cfg, ok, err := e.state.PhaseConfigGet()
	if err != nil {
		return nil, nil, nil, curve.Type{}, "", err
	}
	if !ok {
		return nil, nil, nil, curve.Type{}, "", ErrNotInitialized
	}
	phase, ok, err := e.state.PhaseGet()
	if err != nil {
		return nil, nil, nil, curve.Type{}, "", err
	}
	if !ok {
		return nil, nil, nil, curve.Type{}, "", ErrNotInitialized
	}
	curveType, ok, err := e.state.CurveTypeGet()
	if err != nil {
		return nil, nil, nil, curve.Type{}, "", err
	}
	if !ok {
		return nil, nil, nil, curve.Type{}, "", ErrNotInitialized
	}
	denom, ok, err := e.state.SupplyDenomGet()
	if err != nil {
		return nil, nil, nil, curve.Type{}, "", err
	}
	if !ok {
		return nil, nil, nil, curve.Type{}, "", ErrNotInitialized
	}
	return state, cfg, phase, curveType, denom, nil
}
