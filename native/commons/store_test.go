package commons

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"abcommons/native/curve"
	"abcommons/storage"
)

func TestStoreSlotsRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	// All slots start empty.
	_, ok, err := store.CurveStateGet()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.PhaseGet()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.SupplyDenomGet()
	require.NoError(t, err)
	require.False(t, ok)

	places, err := curve.NewDecimalPlaces(2, 8)
	require.NoError(t, err)

	state := NewCurveState("satoshi", places)
	state.Reserve = big.NewInt(2_000_000_000)
	state.Supply = big.NewInt(2000)
	require.NoError(t, store.CurveStatePut(state))

	fetched, ok, err := store.CurveStateGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, fetched.Reserve.Cmp(state.Reserve))
	require.Zero(t, fetched.Supply.Cmp(state.Supply))
	require.Equal(t, "satoshi", fetched.ReserveDenom)
	require.Equal(t, places, fetched.Decimals)

	ct := curve.Type{Kind: curve.KindSquareRoot, Slope: big.NewInt(25), Scale: 2}
	require.NoError(t, store.CurveTypePut(ct))
	fetchedType, ok, err := store.CurveTypeGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, curve.KindSquareRoot, fetchedType.Kind)
	require.Zero(t, fetchedType.Slope.Cmp(big.NewInt(25)))
	require.Equal(t, uint8(2), fetchedType.Scale)

	phase := NewPhaseState()
	phase.RecordHatcher("abc1investor")
	phase.RecordHatcher("abc1buyer")
	require.NoError(t, store.PhasePut(phase))
	fetchedPhase, ok, err := store.PhaseGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, PhaseHatch, fetchedPhase.Phase)
	require.Equal(t, []string{"abc1buyer", "abc1investor"}, fetchedPhase.Hatchers)

	cfg := &PhaseConfig{Hatch: HatchConfig{
		Allowlist:         []string{"abc1investor"},
		InitialRaise:      RaiseRange{Min: big.NewInt(1), Max: big.NewInt(100)},
		InitialPrice:      big.NewInt(1),
		InitialAllocation: big.NewInt(10),
		ReservePercentage: 10,
	}}
	require.NoError(t, store.PhaseConfigPut(cfg))
	fetchedCfg, ok, err := store.PhaseConfigGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"abc1investor"}, fetchedCfg.Hatch.Allowlist)
	require.Zero(t, fetchedCfg.Hatch.InitialRaise.Max.Cmp(big.NewInt(100)))
	require.Equal(t, uint8(10), fetchedCfg.Hatch.ReservePercentage)

	require.NoError(t, store.SupplyDenomPut("factory/abc1issuer/epoxy"))
	denom, ok, err := store.SupplyDenomGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "factory/abc1issuer/epoxy", denom)
}

func TestStoreBacksEngine(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	engine := NewEngine()
	engine.SetState(store)

	_, err := engine.Instantiate(defaultMsg(linearType(), nil, 2_000_000_000))
	require.NoError(t, err)

	res, err := engine.Buy(investor, coins(reserveDenom, 500_000_000))
	require.NoError(t, err)
	require.Zero(t, res.Minted.Cmp(big.NewInt(1000)))

	// A fresh store over the same database sees the committed state.
	reopened := NewEngine()
	reopened.SetState(NewStore(storageOf(store)))
	info, err := reopened.CurveInfo()
	require.NoError(t, err)
	require.Zero(t, info.Reserve.Cmp(big.NewInt(500_000_000)))
	require.Zero(t, info.Supply.Cmp(big.NewInt(1000)))
}

// storageOf exposes the underlying database for reopen-style tests.
func storageOf(s *Store) storage.Database { return s.db }
