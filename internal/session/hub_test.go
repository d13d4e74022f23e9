package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// subscribers registered without a writer, so their queues only fill up
func registerIdle(h *Hub, sessionID string) *subscriber {
	sub := newSubscriber(nil)
	h.mu.Lock()
	h.register(sessionID, sub)
	h.mu.Unlock()
	return sub
}

func TestHub_SlowSubscriberDoesNotStallOthers(t *testing.T) {
	h := NewHub(nil)
	slow := registerIdle(h, "a")
	fast := registerIdle(h, "b")

	for range sendBuffer {
		h.Broadcast("a", State{Generation: 1})
	}
	require.Equal(t, 2, h.Stats().Clients)

	done := make(chan struct{})
	go func() {
		h.Broadcast("a", State{Generation: 2})
		h.Broadcast("b", State{Generation: 3})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full subscriber")
	}

	assert.Equal(t, HubStats{Sessions: 1, Clients: 1}, h.Stats(), "slow subscriber is dropped")

	// the dropped queue is closed after the frames already queued
	n := 0
	for range slow.send {
		n++
	}
	assert.Equal(t, sendBuffer, n)

	var st State
	require.NoError(t, json.Unmarshal(<-fast.send, &st))
	assert.Equal(t, uint64(3), st.Generation)
}

func TestHub_CloseSessionClosesQueues(t *testing.T) {
	h := NewHub(nil)
	a1 := registerIdle(h, "a")
	a2 := registerIdle(h, "a")
	b := registerIdle(h, "b")

	h.CloseSession("a")
	h.CloseSession("a")

	for _, sub := range []*subscriber{a1, a2} {
		_, open := <-sub.send
		assert.False(t, open)
	}
	assert.Equal(t, HubStats{Sessions: 1, Clients: 1}, h.Stats())

	h.Remove("b", b)
	h.Remove("b", b)
	assert.Equal(t, HubStats{}, h.Stats())
}
