package web

import (
	"fmt"
	"net/http"
)

// DevReload streams server-sent events that instruct the browser to refresh
// whenever the dev watcher picks up a change on disk. The SSE connection stays
// open until the client disconnects or the server shuts down.
func (h *handler) DevReload(w http.ResponseWriter, r *http.Request) {
	if h.ReloadNotifier == nil {
		http.NotFound(w, r)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	cancel, ch := h.ReloadNotifier.Subscribe()
	if ch == nil {
		w.WriteHeader(http.StatusGone)
		return
	}
	defer cancel()

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprint(w, "data: reload\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
