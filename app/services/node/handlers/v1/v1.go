// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/mining/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/mining/foundation/events"
	"github.com/ardanlabs/mining/foundation/mining/state"
	"github.com/ardanlabs/mining/foundation/nameservice"
	"github.com/ardanlabs/mining/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/events/:contract", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/chain/tick", pbl.Tick)
	app.Handle(http.MethodGet, version, "/contracts/list", pbl.Contracts)
	app.Handle(http.MethodGet, version, "/contracts/list/:name", pbl.Contracts)
	app.Handle(http.MethodPost, version, "/contracts/call", pbl.SubmitCall)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
}
