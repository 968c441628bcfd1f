package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const streamKeepalive = 30 * time.Second

// StreamState pushes state snapshots over server-sent events. The first
// event is the current snapshot; subsequent events follow state changes.
func (a *App) StreamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		a.error(w, http.StatusInternalServerError, "streaming_unsupported", "response writer does not support streaming")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	states, unwatch := a.machine.Watch()
	defer unwatch()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case state := <-states:
			payload, err := json.Marshal(state)
			if err != nil {
				a.logger.Error().Err(err).Msg("gateway: encode state event")
				return
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
