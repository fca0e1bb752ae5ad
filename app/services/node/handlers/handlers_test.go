package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/mining/app/services/node/handlers"
	"github.com/ardanlabs/mining/foundation/events"
	"github.com/ardanlabs/mining/foundation/mining/clock"
	"github.com/ardanlabs/mining/foundation/mining/genesis"
	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ardanlabs/mining/foundation/mining/storage/memory"
	"github.com/ardanlabs/mining/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	ownerKey  = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	keeperKey = "8dc79feefd3b86e2f9991def0e5ccd9a5128e104682407b308594bc1032ac7f0"
	owner     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
)

type api struct {
	clock *clock.Chain
	mux   http.Handler
}

func newAPI(t *testing.T) api {
	clk := clock.New(0)

	gen := genesis.Genesis{
		ChainID:  1,
		Balances: map[string]string{owner: "1000"},
		Contracts: []genesis.Contract{
			{Name: "mock", Preset: "mining-contract-mock", Owner: owner, Fund: "300000000000000000000"},
		},
	}

	st, err := state.New(state.Config{
		Genesis: gen,
		Clock:   clk,
		Storage: memory.New(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
	}

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})

	return api{clock: clk, mux: mux}
}

func (a api) do(t *testing.T, method string, path string, body []byte) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, r)
	return w
}

func signedBody(t *testing.T, hexKey string, call state.Call) []byte {
	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the private key: %v", failed, err)
	}

	sc, err := call.Sign(privateKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
	}

	data, err := json.Marshal(sc)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to marshal the call: %v", failed, err)
	}

	return data
}

// =============================================================================

func Test_Queries(t *testing.T) {
	t.Log("Given the need to query the node.")
	{
		a := newAPI(t)

		t.Log("\tWhen listing the contracts.")
		{
			w := a.do(t, http.MethodGet, "/v1/contracts/list", nil)
			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tShould receive a status code of 200: %d", failed, w.Code)
			}
			t.Logf("\t%s\tShould receive a status code of 200.", success)

			var got []struct {
				Name    string `json:"name"`
				Owner   string `json:"owner"`
				Balance string `json:"balance"`
				Gate    string `json:"gate"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatalf("\t%s\tShould be able to unmarshal the response: %v", failed, err)
			}
			if len(got) != 1 || got[0].Name != "mock" || got[0].Owner != owner || got[0].Balance != "300000000000000000000" || got[0].Gate != "owner" {
				t.Fatalf("\t%s\tShould get back the deployed contract: %+v", failed, got)
			}
			t.Logf("\t%s\tShould get back the deployed contract.", success)
		}

		t.Log("\tWhen asking for an unknown contract.")
		{
			w := a.do(t, http.MethodGet, "/v1/contracts/list/nope", nil)
			if w.Code != http.StatusNotFound {
				t.Fatalf("\t%s\tShould receive a status code of 404: %d", failed, w.Code)
			}
			t.Logf("\t%s\tShould receive a status code of 404.", success)
		}

		t.Log("\tWhen asking for the tick and an account.")
		{
			a.clock.MineTo(7)

			w := a.do(t, http.MethodGet, "/v1/chain/tick", nil)
			if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"tick":7`)) {
				t.Fatalf("\t%s\tShould get back the tick: %d %s", failed, w.Code, w.Body.String())
			}
			t.Logf("\t%s\tShould get back the tick.", success)

			w = a.do(t, http.MethodGet, "/v1/accounts/list/"+owner, nil)
			if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"balance":"1000"`)) {
				t.Fatalf("\t%s\tShould get back the account: %d %s", failed, w.Code, w.Body.String())
			}
			t.Logf("\t%s\tShould get back the account.", success)

			w = a.do(t, http.MethodGet, "/v1/accounts/list/bill", nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tShould receive a status code of 400 for an unknown name: %d", failed, w.Code)
			}
			t.Logf("\t%s\tShould receive a status code of 400 for an unknown name.", success)
		}
	}
}

func Test_SubmitCall(t *testing.T) {
	t.Log("Given the need to submit signed calls to the node.")
	{
		a := newAPI(t)

		tt := []struct {
			name   string
			mine   uint64
			body   []byte
			status int
		}{
			{"tooEarly", 0, signedBody(t, ownerKey, state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}), http.StatusConflict},
			{"unauthorized", 10, signedBody(t, keeperKey, state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}), http.StatusUnauthorized},
			{"withdraw", 10, signedBody(t, ownerKey, state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}), http.StatusOK},
			{"replay", 20, signedBody(t, ownerKey, state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodWithdraw}), http.StatusBadRequest},
			{"chainID", 20, signedBody(t, ownerKey, state.Call{ChainID: 9, Nonce: 2, Contract: "mock", Method: state.MethodWithdraw}), http.StatusBadRequest},
			{"unknownContract", 20, signedBody(t, ownerKey, state.Call{ChainID: 1, Nonce: 2, Contract: "nope", Method: state.MethodWithdraw}), http.StatusNotFound},
			{"insufficientFunds", 20, signedBody(t, keeperKey, state.Call{ChainID: 1, Nonce: 1, Contract: "mock", Method: state.MethodDeposit, Value: "5"}), http.StatusUnprocessableEntity},
			{"badMethod", 20, []byte(`{"chain_id":1,"nonce":2,"contract":"mock","method":"mint","v":29,"r":1,"s":1}`), http.StatusBadRequest},
			{"badJSON", 20, []byte(`{"chain_id":`), http.StatusBadRequest},
		}

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen submitting a %s call.", testID, tst.name)
			{
				a.clock.MineTo(tst.mine)

				w := a.do(t, http.MethodPost, "/v1/contracts/call", tst.body)
				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a status code of %d: got %d %s", failed, testID, tst.status, w.Code, w.Body.String())
				}
				t.Logf("\t%s\tTest %d:\tShould receive a status code of %d.", success, testID, tst.status)
			}
		}
	}
}
