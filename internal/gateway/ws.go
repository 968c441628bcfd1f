package gateway

import (
	"net/http"
	"time"
)

const wsWriteDeadline = 10 * time.Second

// StateSocket streams state snapshots over a WebSocket, one JSON message per
// change. Incoming messages are discarded; the socket exists only so
// reactive UIs can subscribe to machine output.
func (a *App) StateSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn().Err(err).Msg("gateway: websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Read pump: the client never sends anything meaningful, but close
	// frames only get processed while a read is pending.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	states, unwatch := a.machine.Watch()
	defer unwatch()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case state := <-states:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteDeadline))
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		}
	}
}
