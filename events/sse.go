package events

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// keepAliveInterval is how often a comment line is written to idle streams.
const keepAliveInterval = 25 * time.Second

// WriteEvent writes ev in text/event-stream framing. Multi-line data is split
// into several data fields.
func WriteEvent(w io.Writer, ev Event) error {
	var buf bytes.Buffer
	if ev.Name != "" {
		fmt.Fprintf(&buf, "event: %s\n", ev.Name)
	}
	for _, line := range bytes.Split(ev.Data, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// Stream subscribes to threadID and writes its events to w until the request
// context ends. It returns an error if w cannot flush.
func (b *Broadcaster) Stream(w http.ResponseWriter, r *http.Request, threadID string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported by %T", w)
	}

	id, ch := b.Subscribe(threadID)
	defer b.Unsubscribe(id)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, ": connected\n\n"); err != nil {
		return nil
	}
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return nil
		case ev, open := <-ch:
			if !open {
				return nil
			}
			if err := WriteEvent(w, ev); err != nil {
				return nil
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}
