// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/mining/business/sys/metrics"
	"github.com/ardanlabs/mining/business/sys/validate"
	"github.com/ardanlabs/mining/business/web/errs"
	"github.com/ardanlabs/mining/foundation/events"
	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ardanlabs/mining/foundation/nameservice"
	"github.com/ardanlabs/mining/foundation/web"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of mining node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide contract events to a client. The
// contract parameter limits the stream to a single contract.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	topic := web.Param(r, "contract")
	if topic != "" {
		if _, err := h.State.QueryContract(topic); err != nil {
			return errs.FromMining(err)
		}
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID, topic)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// Tick returns the current tick of the chain.
func (h Handlers) Tick(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, tick{Tick: h.State.QueryTick()}, http.StatusOK)
}

// Contracts returns the state of every contract, or the one named.
func (h Handlers) Contracts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	name := web.Param(r, "name")

	if name != "" {
		c, err := h.State.QueryContract(name)
		if err != nil {
			return errs.FromMining(err)
		}
		return web.Respond(ctx, w, toContract(c, h.NS), http.StatusOK)
	}

	contracts := h.State.QueryContracts()
	out := make([]contract, len(contracts))
	for i, c := range contracts {
		out[i] = toContract(c, h.NS)
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// SubmitCall executes a signed call against a contract.
func (h Handlers) SubmitCall(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sc signedCall
	if err := web.Decode(r, &sc); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	call := sc.toState()

	h.Log.Infow("submit call", "traceid", v.TraceID, "from:nonce:call", call, "address", call.Address, "value", call.Value)

	receipt, err := h.State.Execute(call)
	if err != nil {
		return errs.FromMining(err)
	}
	metrics.AddCall(call.Contract, call.Method)

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Accounts returns the ledger accounts. When an account is specified only
// that account is returned.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	param := web.Param(r, "account")

	var acts []account
	switch param {
	case "":
		for _, a := range h.State.QueryAccounts() {
			acts = append(acts, toAccount(a, h.NS))
		}

	default:
		addr, exists := h.NS.Address(param)
		if !exists {
			if !common.IsHexAddress(param) {
				return errs.NewTrusted(fmt.Errorf("account %q is not an address or a known name", param), http.StatusBadRequest)
			}
			addr = common.HexToAddress(param)
		}
		acts = append(acts, toAccount(h.State.QueryAccount(addr), h.NS))
	}

	ai := actInfo{
		Tick:     h.State.QueryTick(),
		Accounts: acts,
	}

	return web.Respond(ctx, w, ai, http.StatusOK)
}
