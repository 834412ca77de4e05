package commons

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"abcommons/native/curve"
	"abcommons/storage"
)

var (
	curveStateKey  = []byte("commons/curve-state")
	curveTypeKey   = []byte("commons/curve-type")
	phaseKey       = []byte("commons/phase")
	phaseConfigKey = []byte("commons/phase-config")
	supplyDenomKey = []byte("commons/supply-denom")
)

// Stored shapes keep big integers as decimal strings so the RLP encoding
// stays canonical and human-auditable.
type storedCurveState struct {
	Reserve         string
	Supply          string
	ReserveDenom    string
	SupplyDecimals  uint8
	ReserveDecimals uint8
}

type storedCurveType struct {
	Kind  uint8
	Slope string
	Scale uint8
}

type storedPhase struct {
	Phase    uint8
	Hatchers []string
}

type storedPhaseConfig struct {
	Allowlist         []string
	RaiseMin          string
	RaiseMax          string
	InitialPrice      string
	InitialAllocation string
	ReservePercentage uint8
}

// Store persists the sale's slots in a key-value database and satisfies the
// engine's state interface. Every Get returns a private copy.
type Store struct {
	db storage.Database
}

// NewStore constructs a Store backed by the provided database.
func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func (s *Store) getSlot(key []byte, out interface{}) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("commons store: database not configured")
	}
	raw, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("commons store: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putSlot(key []byte, value interface{}) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("commons store: database not configured")
	}
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("commons store: encode %s: %w", key, err)
	}
	return s.db.Put(key, raw)
}

// Commit persists every staged slot in one atomic batch write, so an
// operation's mutations land together or not at all.
func (s *Store) Commit(update *saleUpdate) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("commons store: database not configured")
	}
	if update == nil {
		return nil
	}
	ops := make([]storage.BatchOp, 0, 5)
	stage := func(key []byte, value interface{}) error {
		raw, err := rlp.EncodeToBytes(value)
		if err != nil {
			return fmt.Errorf("commons store: encode %s: %w", key, err)
		}
		ops = append(ops, storage.BatchOp{Key: key, Value: raw})
		return nil
	}
	if update.curveState != nil {
		if err := stage(curveStateKey, encodeCurveState(update.curveState)); err != nil {
			return err
		}
	}
	if update.curveType != nil {
		if err := stage(curveTypeKey, encodeCurveType(*update.curveType)); err != nil {
			return err
		}
	}
	if update.phase != nil {
		if err := stage(phaseKey, encodePhase(update.phase)); err != nil {
			return err
		}
	}
	if update.phaseConfig != nil {
		if err := stage(phaseConfigKey, encodePhaseConfig(update.phaseConfig)); err != nil {
			return err
		}
	}
	if update.supplyDenom != nil {
		if err := stage(supplyDenomKey, *update.supplyDenom); err != nil {
			return err
		}
	}
	if len(ops) == 0 {
		return nil
	}
	return s.db.Write(ops)
}

// CurveStateGet loads the ledger slot.
func (s *Store) CurveStateGet() (*CurveState, bool, error) {
	var stored storedCurveState
	ok, err := s.getSlot(curveStateKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	reserve, err := parseAmount(stored.Reserve)
	if err != nil {
		return nil, false, err
	}
	supply, err := parseAmount(stored.Supply)
	if err != nil {
		return nil, false, err
	}
	return &CurveState{
		Reserve:      reserve,
		Supply:       supply,
		ReserveDenom: stored.ReserveDenom,
		Decimals:     curve.DecimalPlaces{Supply: stored.SupplyDecimals, Reserve: stored.ReserveDecimals},
	}, true, nil
}

// CurveStatePut saves the ledger slot.
func (s *Store) CurveStatePut(state *CurveState) error {
	if state == nil {
		return fmt.Errorf("commons store: nil curve state")
	}
	return s.putSlot(curveStateKey, encodeCurveState(state))
}

func encodeCurveState(state *CurveState) *storedCurveState {
	return &storedCurveState{
		Reserve:         amountString(state.Reserve),
		Supply:          amountString(state.Supply),
		ReserveDenom:    state.ReserveDenom,
		SupplyDecimals:  state.Decimals.Supply,
		ReserveDecimals: state.Decimals.Reserve,
	}
}

// CurveTypeGet loads the curve description slot.
func (s *Store) CurveTypeGet() (curve.Type, bool, error) {
	var stored storedCurveType
	ok, err := s.getSlot(curveTypeKey, &stored)
	if err != nil || !ok {
		return curve.Type{}, false, err
	}
	slope, err := parseAmount(stored.Slope)
	if err != nil {
		return curve.Type{}, false, err
	}
	return curve.Type{Kind: curve.Kind(stored.Kind), Slope: slope, Scale: stored.Scale}, true, nil
}

// CurveTypePut saves the curve description slot.
func (s *Store) CurveTypePut(t curve.Type) error {
	return s.putSlot(curveTypeKey, encodeCurveType(t))
}

func encodeCurveType(t curve.Type) *storedCurveType {
	return &storedCurveType{
		Kind:  uint8(t.Kind),
		Slope: amountString(t.Slope),
		Scale: t.Scale,
	}
}

// PhaseGet loads the phase slot.
func (s *Store) PhaseGet() (*PhaseState, bool, error) {
	var stored storedPhase
	ok, err := s.getSlot(phaseKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &PhaseState{
		Phase:    Phase(stored.Phase),
		Hatchers: append([]string(nil), stored.Hatchers...),
	}, true, nil
}

// PhasePut saves the phase slot.
func (s *Store) PhasePut(phase *PhaseState) error {
	if phase == nil {
		return fmt.Errorf("commons store: nil phase")
	}
	return s.putSlot(phaseKey, encodePhase(phase))
}

func encodePhase(phase *PhaseState) *storedPhase {
	return &storedPhase{
		Phase:    uint8(phase.Phase),
		Hatchers: append([]string(nil), phase.Hatchers...),
	}
}

// PhaseConfigGet loads the immutable phase configuration slot.
func (s *Store) PhaseConfigGet() (*PhaseConfig, bool, error) {
	var stored storedPhaseConfig
	ok, err := s.getSlot(phaseConfigKey, &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	min, err := parseAmount(stored.RaiseMin)
	if err != nil {
		return nil, false, err
	}
	max, err := parseAmount(stored.RaiseMax)
	if err != nil {
		return nil, false, err
	}
	price, err := parseAmount(stored.InitialPrice)
	if err != nil {
		return nil, false, err
	}
	allocation, err := parseAmount(stored.InitialAllocation)
	if err != nil {
		return nil, false, err
	}
	return &PhaseConfig{Hatch: HatchConfig{
		Allowlist:         append([]string(nil), stored.Allowlist...),
		InitialRaise:      RaiseRange{Min: min, Max: max},
		InitialPrice:      price,
		InitialAllocation: allocation,
		ReservePercentage: stored.ReservePercentage,
	}}, true, nil
}

// PhaseConfigPut saves the phase configuration slot.
func (s *Store) PhaseConfigPut(cfg *PhaseConfig) error {
	if cfg == nil {
		return fmt.Errorf("commons store: nil phase config")
	}
	return s.putSlot(phaseConfigKey, encodePhaseConfig(cfg))
}

func encodePhaseConfig(cfg *PhaseConfig) *storedPhaseConfig {
	return &storedPhaseConfig{
		Allowlist:         append([]string(nil), cfg.Hatch.Allowlist...),
		RaiseMin:          amountString(cfg.Hatch.InitialRaise.Min),
		RaiseMax:          amountString(cfg.Hatch.InitialRaise.Max),
		InitialPrice:      amountString(cfg.Hatch.InitialPrice),
		InitialAllocation: amountString(cfg.Hatch.InitialAllocation),
		ReservePercentage: cfg.Hatch.ReservePercentage,
	}
}

// SupplyDenomGet loads the derived supply denom.
func (s *Store) SupplyDenomGet() (string, bool, error) {
	var stored string
	ok, err := s.getSlot(supplyDenomKey, &stored)
	if err != nil || !ok {
		return "", false, err
	}
	return stored, true, nil
}

// SupplyDenomPut saves the derived supply denom.
func (s *Store) SupplyDenomPut(denom string) error {
	return s.putSlot(supplyDenomKey, denom)
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(v string) (*big.Int, error) {
	if v == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return nil, fmt.Errorf("commons store: invalid amount %q", v)
	}
	return parsed, nil
}
