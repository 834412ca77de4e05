package rpc

import (
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"abcommons/native/commons"
	"abcommons/native/curve"
	"abcommons/observability"
)

type coinParam struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type buyParams struct {
	Buyer string      `json:"buyer"`
	Funds []coinParam `json:"funds"`
}

type burnParams struct {
	Seller string      `json:"seller"`
	Amount string      `json:"amount"`
	Funds  []coinParam `json:"funds"`
}

// BuyResult mirrors commons.BuyResult with string amounts for JSON consumers.
type BuyResult struct {
	Minted       string       `json:"minted"`
	Reserve      string       `json:"reserve"`
	Supply       string       `json:"supply"`
	Phase        string       `json:"phase"`
	PhaseChanged bool         `json:"phaseChanged"`
	Intents      []IntentView `json:"intents"`
}

type BurnResult struct {
	Burned   string       `json:"burned"`
	Released string       `json:"released"`
	Reserve  string       `json:"reserve"`
	Supply   string       `json:"supply"`
	Intents  []IntentView `json:"intents"`
}

type CurveInfoResult struct {
	Reserve      string `json:"reserve"`
	Supply       string `json:"supply"`
	SpotPrice    string `json:"spotPrice"`
	ReserveDenom string `json:"reserveDenom"`
}

type PhaseInfoResult struct {
	Phase        string   `json:"phase"`
	HatcherCount int      `json:"hatcherCount"`
	Allowlist    []string `json:"allowlist,omitempty"`
	RaiseMin     string   `json:"raiseMin"`
	RaiseMax     string   `json:"raiseMax"`
}

// IntentView is the JSON shape of a token-system intent produced by an
// operation. Exactly one set of fields is populated per kind.
type IntentView struct {
	Kind      string `json:"kind"`
	Denom     string `json:"denom,omitempty"`
	Amount    string `json:"amount,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	From      string `json:"from,omitempty"`
	Subdenom  string `json:"subdenom,omitempty"`
	Name      string `json:"name,omitempty"`
	Symbol    string `json:"symbol,omitempty"`
}

func intentViews(intents []commons.Intent) []IntentView {
	views := make([]IntentView, 0, len(intents))
	for _, intent := range intents {
		switch it := intent.(type) {
		case commons.CreateDenomIntent:
			views = append(views, IntentView{Kind: it.IntentKind(), Subdenom: it.Subdenom, Name: it.Name, Symbol: it.Symbol})
		case commons.MintIntent:
			views = append(views, IntentView{Kind: it.IntentKind(), Denom: it.Denom, Amount: it.Amount.String(), Recipient: it.Recipient})
		case commons.BurnIntent:
			views = append(views, IntentView{Kind: it.IntentKind(), Denom: it.Denom, Amount: it.Amount.String(), From: it.From})
		case commons.SendIntent:
			views = append(views, IntentView{Kind: it.IntentKind(), Denom: it.Denom, Amount: it.Amount.String(), Recipient: it.Recipient})
		}
	}
	return views
}

func parseAmountParam(field, raw string) (*big.Int, error) {
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

func parseFunds(params []coinParam) ([]commons.Coin, error) {
	funds := make([]commons.Coin, 0, len(params))
	for _, c := range params {
		amount, err := parseAmountParam("fund amount", c.Amount)
		if err != nil {
			return nil, err
		}
		funds = append(funds, commons.Coin{Denom: strings.TrimSpace(c.Denom), Amount: amount})
	}
	return funds, nil
}

func (s *Server) handleBuy(w http.ResponseWriter, req *RPCRequest) string {
	var params buyParams
	if !decodeSingleParam(w, req, &params) {
		return "bad_params"
	}
	funds, err := parseFunds(params.Funds)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return "bad_params"
	}

	res, err := s.engine.Buy(params.Buyer, funds)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	observability.SaleMetrics().SetTotals(res.Reserve, res.Supply)

	writeResult(w, req.ID, &BuyResult{
		Minted:       res.Minted.String(),
		Reserve:      res.Reserve.String(),
		Supply:       res.Supply.String(),
		Phase:        res.Phase.String(),
		PhaseChanged: res.PhaseChanged,
		Intents:      intentViews(res.Intents),
	})
	return "ok"
}

func (s *Server) handleBurn(w http.ResponseWriter, req *RPCRequest) string {
	var params burnParams
	if !decodeSingleParam(w, req, &params) {
		return "bad_params"
	}
	amount, err := parseAmountParam("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return "bad_params"
	}
	funds, err := parseFunds(params.Funds)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return "bad_params"
	}

	res, err := s.engine.Burn(params.Seller, amount, funds)
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	observability.SaleMetrics().SetTotals(res.Reserve, res.Supply)

	writeResult(w, req.ID, &BurnResult{
		Burned:   res.Burned.String(),
		Released: res.Released.String(),
		Reserve:  res.Reserve.String(),
		Supply:   res.Supply.String(),
		Intents:  intentViews(res.Intents),
	})
	return "ok"
}

func (s *Server) handleCurveInfo(w http.ResponseWriter, req *RPCRequest) string {
	info, err := s.engine.CurveInfo()
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, &CurveInfoResult{
		Reserve:      info.Reserve.String(),
		Supply:       info.Supply.String(),
		SpotPrice:    curve.DecimalString(info.SpotPrice),
		ReserveDenom: info.ReserveDenom,
	})
	return "ok"
}

func (s *Server) handlePhaseInfo(w http.ResponseWriter, req *RPCRequest) string {
	info, err := s.engine.PhaseInfo()
	if err != nil {
		return writeEngineError(w, req.ID, err)
	}
	writeResult(w, req.ID, &PhaseInfoResult{
		Phase:        info.Phase.String(),
		HatcherCount: info.HatcherCount,
		Allowlist:    info.Config.Hatch.Allowlist,
		RaiseMin:     info.Config.Hatch.InitialRaise.Min.String(),
		RaiseMax:     info.Config.Hatch.InitialRaise.Max.String(),
	})
	return "ok"
}

// decodeSingleParam unwraps the single-object parameter convention used by
// every mutating method. It writes the error response itself on failure.
func decodeSingleParam(w http.ResponseWriter, req *RPCRequest, out interface{}) bool {
	if len(req.Params) != 1 {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "expected a single parameter object", nil)
		return false
	}
	if err := jsonUnmarshalStrict(req.Params[0], out); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid parameter object", err.Error())
		return false
	}
	return true
}
