package events

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesOnlyThreadSubscribers(t *testing.T) {
	b := NewBroadcaster(nil)
	_, a := b.Subscribe("t1")
	_, other := b.Subscribe("t2")

	n := b.Publish("t1", Event{Name: ContributionCreated, Data: []byte(`{}`)})

	assert.Equal(t, 1, n)
	select {
	case ev := <-a:
		assert.Equal(t, ContributionCreated, ev.Name)
	default:
		t.Fatal("expected an event for t1")
	}
	select {
	case <-other:
		t.Fatal("t2 must not receive t1 events")
	default:
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster(nil)
	_, ch := b.Subscribe("t1")

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, b.Publish("t1", Event{Name: "x"}))
	}
	assert.Equal(t, 0, b.Publish("t1", Event{Name: "overflow"}))
	assert.Len(t, ch, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster(nil)
	id, ch := b.Subscribe("t1")
	require.Equal(t, 1, b.Subscribers("t1"))

	b.Unsubscribe(id)
	b.Unsubscribe(id)

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, b.Subscribers("t1"))
	assert.Equal(t, 0, b.Publish("t1", Event{Name: "x"}))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteEvent(&buf, Event{Name: ContributionDeleted, Data: []byte("line1\nline2")}))

	assert.Equal(t, "event: contribution.deleted\ndata: line1\ndata: line2\n\n", buf.String())
}

func TestStream(t *testing.T) {
	b := NewBroadcaster(nil)
	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/threads/t1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan error, 1)
	go func() { done <- b.Stream(rec, req, "t1") }()

	require.Eventually(t, func() bool { return b.Subscribers("t1") == 1 }, time.Second, 5*time.Millisecond)
	b.Publish("t1", Event{Name: ContributionCreated, Data: []byte(`{"id":"c1"}`)})
	// Give the stream a moment to write before closing it.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
	assert.Equal(t, 0, b.Subscribers("t1"))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "event: contribution.created\ndata: {\"id\":\"c1\"}\n\n")
}
