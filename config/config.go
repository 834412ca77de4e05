package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"abcommons/native/commons"
	"abcommons/native/curve"
)

// Config is the on-disk TOML configuration for the sale daemon. The sale
// sections are read once at first boot to instantiate the sale; after that
// only the server sections matter.
type Config struct {
	RPCAddress string `toml:"RPCAddress"`
	DataDir    string `toml:"DataDir"`
	Env        string `toml:"Env"`
	LogFile    string `toml:"LogFile"`

	Issuer  string        `toml:"Issuer"`
	Supply  SupplyConfig  `toml:"Supply"`
	Reserve ReserveConfig `toml:"Reserve"`
	Curve   CurveConfig   `toml:"Curve"`
	Hatch   HatchSettings `toml:"Hatch"`
}

type SupplyConfig struct {
	Subdenom string `toml:"Subdenom"`
	Name     string `toml:"Name"`
	Symbol   string `toml:"Symbol"`
	Decimals uint8  `toml:"Decimals"`
}

type ReserveConfig struct {
	Denom    string `toml:"Denom"`
	Decimals uint8  `toml:"Decimals"`
}

type CurveConfig struct {
	// Kind is one of "constant", "linear" or "square-root".
	Kind  string `toml:"Kind"`
	Slope string `toml:"Slope"`
	Scale uint8  `toml:"Scale"`
}

type HatchSettings struct {
	Allowlist         []string `toml:"Allowlist"`
	RaiseMin          string   `toml:"RaiseMin"`
	RaiseMax          string   `toml:"RaiseMax"`
	InitialPrice      string   `toml:"InitialPrice"`
	InitialAllocation string   `toml:"InitialAllocation"`
	ReservePercentage uint8    `toml:"ReservePercentage"`
}

// Load reads the configuration at path, writing a default file first when
// none exists yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./abc-data"
	}
	if cfg.Hatch.Allowlist == nil {
		cfg.Hatch.Allowlist = []string{}
	}
	return cfg, nil
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress: ":8080",
		DataDir:    "./abc-data",
		Env:        "local",
		Issuer:     "abc1issuer",
		Supply:     SupplyConfig{Subdenom: "epoxy", Name: "Epoxy", Symbol: "EPX", Decimals: 6},
		Reserve:    ReserveConfig{Denom: "uatom", Decimals: 6},
		Curve:      CurveConfig{Kind: "linear", Slope: "1", Scale: 0},
		Hatch: HatchSettings{
			Allowlist: []string{},
			RaiseMin:  "1",
			RaiseMax:  "1000000000",
		},
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks the server fields and, via InstantiateMsg, the sale fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("RPCAddress required")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("DataDir required")
	}
	msg, err := c.InstantiateMsg()
	if err != nil {
		return err
	}
	return msg.Validate()
}

// InstantiateMsg converts the sale sections into the engine's instantiation
// message. String amounts are base-10.
func (c *Config) InstantiateMsg() (*commons.InstantiateMsg, error) {
	kind, err := curve.ParseKind(c.Curve.Kind)
	if err != nil {
		return nil, err
	}
	slope, err := parseAmount("Curve.Slope", c.Curve.Slope)
	if err != nil {
		return nil, err
	}
	raiseMin, err := parseAmount("Hatch.RaiseMin", c.Hatch.RaiseMin)
	if err != nil {
		return nil, err
	}
	raiseMax, err := parseAmount("Hatch.RaiseMax", c.Hatch.RaiseMax)
	if err != nil {
		return nil, err
	}
	initialPrice, err := parseOptionalAmount("Hatch.InitialPrice", c.Hatch.InitialPrice)
	if err != nil {
		return nil, err
	}
	initialAllocation, err := parseOptionalAmount("Hatch.InitialAllocation", c.Hatch.InitialAllocation)
	if err != nil {
		return nil, err
	}

	return &commons.InstantiateMsg{
		Issuer: strings.TrimSpace(c.Issuer),
		Supply: commons.SupplyToken{
			Subdenom: strings.TrimSpace(c.Supply.Subdenom),
			Name:     strings.TrimSpace(c.Supply.Name),
			Symbol:   strings.TrimSpace(c.Supply.Symbol),
			Decimals: c.Supply.Decimals,
		},
		Reserve: commons.ReserveToken{
			Denom:    strings.TrimSpace(c.Reserve.Denom),
			Decimals: c.Reserve.Decimals,
		},
		CurveType: curve.Type{
			Kind:  kind,
			Slope: slope,
			Scale: c.Curve.Scale,
		},
		PhaseConfig: commons.PhaseConfig{Hatch: commons.HatchConfig{
			Allowlist:         append([]string(nil), c.Hatch.Allowlist...),
			InitialRaise:      commons.RaiseRange{Min: raiseMin, Max: raiseMax},
			InitialPrice:      initialPrice,
			InitialAllocation: initialAllocation,
			ReservePercentage: c.Hatch.ReservePercentage,
		}},
	}, nil
}

func parseAmount(field, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%s required", field)
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", field, raw)
	}
	return value, nil
}

func parseOptionalAmount(field, raw string) (*big.Int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	return parseAmount(field, raw)
}
