package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tallerhub/taller-status/internal/core"
)

// SSEHeartbeat is how often an idle stream sends a comment line.
const SSEHeartbeat = 15 * time.Second

// SSEHandler streams status events as Server-Sent Events.
type SSEHandler struct {
	subscriber core.EventSubscriber
	heartbeat  time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(subscriber core.EventSubscriber) *SSEHandler {
	return &SSEHandler{subscriber: subscriber, heartbeat: SSEHeartbeat}
}

// Stream handles GET /v1/events?entity=<id>&machine=<name>. Without
// parameters every event is streamed.
func (h *SSEHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteAPIError(w, core.NewInternalError("Streaming is not supported."))
		return
	}

	var (
		ch    <-chan *core.StatusEvent
		unsub func()
		err   error
	)
	switch q := r.URL.Query(); {
	case q.Get("entity") != "":
		ch, unsub, err = h.subscriber.SubscribeEntity(q.Get("entity"))
	case q.Get("machine") != "":
		ch, unsub, err = h.subscriber.SubscribeMachine(q.Get("machine"))
	default:
		ch, unsub, err = h.subscriber.SubscribeAll()
	}
	if err != nil {
		HandleError(w, err)
		return
	}
	defer unsub()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.EventType, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
