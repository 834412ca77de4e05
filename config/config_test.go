package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"abcommons/native/curve"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.RPCAddress)
	require.Equal(t, "./abc-data", cfg.DataDir)
	require.NoError(t, cfg.Validate())

	// The default file is persisted and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadParsesSaleSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
RPCAddress = ":9090"
DataDir = "/tmp/sale"
Env = "staging"
Issuer = "abc1issuer"

[Supply]
Subdenom = "epoxy"
Name = "Epoxy"
Symbol = "EPX"
Decimals = 2

[Reserve]
Denom = "satoshi"
Decimals = 8

[Curve]
Kind = "square-root"
Slope = "25"
Scale = 2

[Hatch]
Allowlist = ["abc1investor"]
RaiseMin = "100"
RaiseMax = "2000000000"
InitialPrice = "1"
ReservePercentage = 10
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.RPCAddress)
	require.NoError(t, cfg.Validate())

	msg, err := cfg.InstantiateMsg()
	require.NoError(t, err)
	require.Equal(t, "abc1issuer", msg.Issuer)
	require.Equal(t, curve.KindSquareRoot, msg.CurveType.Kind)
	require.Zero(t, msg.CurveType.Slope.Cmp(big.NewInt(25)))
	require.Equal(t, uint8(2), msg.CurveType.Scale)
	require.Equal(t, []string{"abc1investor"}, msg.PhaseConfig.Hatch.Allowlist)
	require.Zero(t, msg.PhaseConfig.Hatch.InitialRaise.Max.Cmp(big.NewInt(2_000_000_000)))
	require.Zero(t, msg.PhaseConfig.Hatch.InitialPrice.Cmp(big.NewInt(1)))
	require.Nil(t, msg.PhaseConfig.Hatch.InitialAllocation)
	require.Equal(t, uint8(10), msg.PhaseConfig.Hatch.ReservePercentage)
}

func TestValidateRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.Curve.Kind = "parabolic"
	require.Error(t, cfg.Validate())

	cfg.Curve.Kind = "linear"
	cfg.Curve.Slope = "zero"
	require.Error(t, cfg.Validate())

	cfg.Curve.Slope = "1"
	cfg.Hatch.RaiseMax = ""
	require.Error(t, cfg.Validate())

	cfg.Hatch.RaiseMax = "1000"
	cfg.Issuer = " "
	require.Error(t, cfg.Validate())
}
