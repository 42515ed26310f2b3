package tempo

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// ProgressFrame is one websocket push of job state
type ProgressFrame struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler streams one job's progress until it finishes.
// The terminal frame (completed or failed) is sent before closing
// so clients always see the final state.
func (v *View) WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, ok := v.Jobs.Get(id); !ok {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		job, ok := v.Jobs.Get(id)
		if !ok {
			return
		}

		frame := ProgressFrame{
			JobID:    job.ID,
			Status:   job.Status,
			Progress: job.Progress,
			Message:  job.Message,
			Error:    job.Error,
		}
		if err := conn.WriteJSON(frame); err != nil {
			return // Connection closed
		}

		if job.Status == JobCompleted || job.Status == JobFailed {
			return
		}
	}
}
