package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"abcommons/native/commons"
	"abcommons/native/curve"
	"abcommons/storage"
)

const testToken = "test-rpc-token"

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("ABC_RPC_TOKEN", testToken)

	engine := commons.NewEngine()
	engine.SetState(commons.NewStore(storage.NewMemDB()))
	_, err := engine.Instantiate(&commons.InstantiateMsg{
		Issuer:  "abc1issuer",
		Supply:  commons.SupplyToken{Subdenom: "epoxy", Name: "Epoxy", Symbol: "EPX", Decimals: 2},
		Reserve: commons.ReserveToken{Denom: "satoshi", Decimals: 8},
		CurveType: curve.Type{
			Kind:  curve.KindLinear,
			Slope: big.NewInt(1),
			Scale: 1,
		},
		PhaseConfig: commons.PhaseConfig{Hatch: commons.HatchConfig{
			InitialRaise: commons.RaiseRange{Min: big.NewInt(1), Max: big.NewInt(2_000_000_000)},
		}},
	})
	require.NoError(t, err)

	return NewServer(engine, nil)
}

func call(t *testing.T, srv *Server, token, method string, params ...interface{}) (*httptest.ResponseRecorder, rpcEnvelope) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"id":      1,
		"method":  method,
		"params":  params,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	var env rpcEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

func TestBuyMintsAndReports(t *testing.T) {
	srv := newTestServer(t)

	rr, env := call(t, srv, testToken, "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "500000000"}},
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Nil(t, env.Error)

	var res BuyResult
	require.NoError(t, json.Unmarshal(env.Result, &res))
	require.Equal(t, "1000", res.Minted)
	require.Equal(t, "500000000", res.Reserve)
	require.Equal(t, "1000", res.Supply)
	require.Equal(t, "hatch", res.Phase)
	require.False(t, res.PhaseChanged)
	require.Len(t, res.Intents, 1)
	require.Equal(t, "mint", res.Intents[0].Kind)
	require.Equal(t, "factory/abc1issuer/epoxy", res.Intents[0].Denom)
	require.Equal(t, "abc1investor", res.Intents[0].Recipient)

	_, env = call(t, srv, "", "abc_curveInfo")
	require.Nil(t, env.Error)
	var info CurveInfoResult
	require.NoError(t, json.Unmarshal(env.Result, &info))
	require.Equal(t, "500000000", info.Reserve)
	require.Equal(t, "1000", info.Supply)
	require.Equal(t, "1", info.SpotPrice)
	require.Equal(t, "satoshi", info.ReserveDenom)
}

func TestBuyRequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	rr, env := call(t, srv, "", "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "100"}},
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, codeUnauthorized, env.Error.Code)

	rr, env = call(t, srv, "wrong-token", "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "100"}},
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, codeUnauthorized, env.Error.Code)
}

func TestBuyRejectsWrongDenom(t *testing.T) {
	srv := newTestServer(t)

	rr, env := call(t, srv, testToken, "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "uatom", Amount: "100"}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, codePaymentError, env.Error.Code)
}

func TestBurnRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	_, env := call(t, srv, testToken, "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "2000000000"}},
	})
	require.Nil(t, env.Error)
	var bought BuyResult
	require.NoError(t, json.Unmarshal(env.Result, &bought))
	require.Equal(t, "2000", bought.Supply)
	require.True(t, bought.PhaseChanged)
	require.Equal(t, "open", bought.Phase)

	_, env = call(t, srv, testToken, "abc_burn", burnParams{
		Seller: "abc1investor",
		Amount: "1000",
		Funds:  []coinParam{{Denom: "factory/abc1issuer/epoxy", Amount: "1000"}},
	})
	require.Nil(t, env.Error)
	var burned BurnResult
	require.NoError(t, json.Unmarshal(env.Result, &burned))
	require.Equal(t, "1000", burned.Burned)
	require.Equal(t, "1500000000", burned.Released)
	require.Equal(t, "500000000", burned.Reserve)
	require.Equal(t, "1000", burned.Supply)
	require.Len(t, burned.Intents, 2)
	require.Equal(t, "burn", burned.Intents[0].Kind)
	require.Equal(t, "send", burned.Intents[1].Kind)
	require.Equal(t, "satoshi", burned.Intents[1].Denom)
	require.Equal(t, "1500000000", burned.Intents[1].Amount)
}

func TestBurnPaymentMismatch(t *testing.T) {
	srv := newTestServer(t)

	_, env := call(t, srv, testToken, "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "500000000"}},
	})
	require.Nil(t, env.Error)

	rr, env := call(t, srv, testToken, "abc_burn", burnParams{
		Seller: "abc1investor",
		Amount: "1000",
		Funds:  []coinParam{{Denom: "factory/abc1issuer/epoxy", Amount: "999"}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, codePaymentError, env.Error.Code)
}

func TestPhaseInfo(t *testing.T) {
	srv := newTestServer(t)

	_, env := call(t, srv, "", "abc_phaseInfo")
	require.Nil(t, env.Error)
	var info PhaseInfoResult
	require.NoError(t, json.Unmarshal(env.Result, &info))
	require.Equal(t, "hatch", info.Phase)
	require.Equal(t, 0, info.HatcherCount)
	require.Equal(t, "1", info.RaiseMin)
	require.Equal(t, "2000000000", info.RaiseMax)
}

func TestMethodNotFound(t *testing.T) {
	srv := newTestServer(t)

	rr, env := call(t, srv, "", "abc_unknown")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, codeMethodNotFound, env.Error.Code)
}

func TestMalformedRequests(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	var env rpcEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	require.Equal(t, codeParseError, env.Error.Code)

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(nil))
	rr = httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, codeInvalidRequest, env.Error.Code)

	_, env = call(t, srv, testToken, "abc_buy", buyParams{Buyer: "abc1investor"}, buyParams{Buyer: "abc1other"})
	require.NotNil(t, env.Error)
	require.Equal(t, codeInvalidParams, env.Error.Code)

	rr, env = call(t, srv, testToken, "abc_buy", buyParams{
		Buyer: "abc1investor",
		Funds: []coinParam{{Denom: "satoshi", Amount: "not-a-number"}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, codeInvalidParams, env.Error.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "ok")
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	// A server shut down ahead of Start refuses to serve and returns cleanly.
	require.NoError(t, srv.Start("127.0.0.1:0"))
}

func TestNotInitialized(t *testing.T) {
	t.Setenv("ABC_RPC_TOKEN", testToken)
	engine := commons.NewEngine()
	engine.SetState(commons.NewStore(storage.NewMemDB()))
	srv := NewServer(engine, nil)

	rr, env := call(t, srv, "", "abc_curveInfo")
	require.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, env.Error)
	require.Equal(t, codeNotInitialized, env.Error.Code)
}
