package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/infra"
	"github.com/MonkeyBizScott/LemonSliceDemo/internal/session"
)

// App is the presentation boundary: UIs read state from it and post user
// intents through it. It never owns state; everything flows through the
// session machine.
type App struct {
	machine  *session.Machine
	logger   infra.Logger
	upgrader websocket.Upgrader
}

func NewApp(machine *session.Machine, logger infra.Logger, allowedOrigins []string) *App {
	allow := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allow[origin] = struct{}{}
	}
	return &App{
		machine: machine,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allow[origin]
				return ok
			},
		},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]string{"error": code, "message": message})
}
