package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// The server only listens on loopback, so cross-origin checks add nothing.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsPushInterval = 500 * time.Millisecond

// wsProgress streams batch snapshots to the progress page until the batch
// resolves or the client goes away.
func (srv *Server) wsProgress(w http.ResponseWriter, r *http.Request) {
	s, err := srv.session(w, r)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(wsPushInterval)
	defer ticker.Stop()

	for {
		batch, kind := s.CurrentBatch()
		payload := map[string]interface{}{"kind": kind}
		var finished bool
		if batch != nil {
			st := batch.Snapshot()
			payload["status"] = st
			finished = !st.Running && st.Completed == st.Total
		}
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
		if finished {
			// One final frame with everything resolved, then close.
			return
		}

		select {
		case <-ticker.C:
		case <-srv.quitCh:
			return
		}
	}
}
