package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// streamPollInterval is how often the SSE handler checks for new thoughts.
const streamPollInterval = 2 * time.Second

// handleStream pushes new thoughts to the client as Server-Sent Events.
// Events carry the thought's sequence number as the SSE id; clients that
// reconnect can resume from the feed endpoint with after_id.
func (h *APIHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	ticker := time.NewTicker(streamPollInterval)
	defer ticker.Stop()

	lastID := 0
	for {
		thoughts, err := h.thoughts.ListAfter(lastID, 10)
		if err != nil {
			h.logger.Error("stream poll failed", "error", err)
			return
		}

		// Newest first from the repository; emit oldest first.
		for i := len(thoughts) - 1; i >= 0; i-- {
			thought := thoughts[i]
			if thought.Sequence() <= lastID {
				continue
			}
			lastID = thought.Sequence()

			payload, err := json.Marshal(newThoughtView(thought))
			if err != nil {
				h.logger.Error("failed to encode thought", "error", err)
				continue
			}

			fmt.Fprintf(w, "event: thought\nid: %d\ndata: %s\n\n", thought.Sequence(), payload)
		}
		flusher.Flush()

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
