package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	a := hub.Register(nil)
	require.NotNil(t, a)
	b := hub.Register(nil)
	require.NotNil(t, b)
	assert.Equal(t, 2, hub.ClientCount())
	assert.NotEqual(t, a.ID, b.ID)

	hub.Unregister(a)
	assert.Equal(t, 1, hub.ClientCount())

	// Double unregister is a no-op
	hub.Unregister(a)
	assert.Equal(t, 1, hub.ClientCount())

	_ = hub.Shutdown(context.Background())
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	hub := NewHub()
	a := hub.Register(nil)
	b := hub.Register(nil)

	hub.BroadcastAll(map[string]string{"text": "hello"})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var got map[string]string
			require.NoError(t, json.Unmarshal(raw, &got))
			assert.Equal(t, "hello", got["text"])
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}

	_ = hub.Shutdown(context.Background())
}

func TestHub_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	c := hub.Register(nil)

	// Saturate the outbound buffer
	for i := 0; i < cap(c.Send); i++ {
		c.Send <- []byte("x")
	}

	// Must return immediately without delivering
	hub.BroadcastAll(map[string]string{"text": "dropped"})
	assert.Equal(t, cap(c.Send), len(c.Send))

	_ = hub.Shutdown(context.Background())
}

func TestHub_ShutdownStopsRegistrations(t *testing.T) {
	hub := NewHub()
	c := hub.Register(nil)
	require.NotNil(t, c)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.ClientCount())

	// Send channel is closed so the write pump winds down
	_, open := <-c.Send
	assert.False(t, open)

	assert.Nil(t, hub.Register(nil), "no registrations after shutdown")
	assert.NoError(t, hub.Shutdown(context.Background()), "second shutdown is a no-op")
}
