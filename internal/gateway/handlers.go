package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/MonkeyBizScott/LemonSliceDemo/internal/session"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetState returns the current UI state snapshot.
func (a *App) GetState(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.machine.Snapshot())
}

type actionRequest struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PostAction forwards a user intent into the session machine. Submitting with
// an empty input is the cancel path; no separate cancel action exists.
func (a *App) PostAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var action session.Action
	switch req.Type {
	case "text_changed":
		action = session.TextChanged{Text: req.Text}
	case "submit":
		action = session.Submit{}
	case "alert_retry":
		action = session.AlertRetry{}
	case "alert_dismiss":
		action = session.AlertDismiss{}
	default:
		a.error(w, http.StatusBadRequest, "unknown_action", "unknown action type: "+req.Type)
		return
	}

	a.machine.Dispatch(action)
	a.json(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
