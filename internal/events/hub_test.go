package events

import (
	"sync"
	"testing"

	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe()
	b := h.Subscribe()
	require.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, h.Count())

	u := users.User{ID: 7, Name: "A", Email: "a@x.com"}
	h.Publish(UserCreated, u)

	for _, sub := range []*Subscription{a, b} {
		evt := <-sub.C
		assert.Equal(t, UserCreated, evt.Type)
		assert.Equal(t, u, evt.User)
		assert.False(t, evt.At.IsZero())
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(0)
	sub := h.Subscribe()

	assert.True(t, h.Unsubscribe(sub.ID))
	assert.False(t, h.Unsubscribe(sub.ID))
	assert.Equal(t, 0, h.Count())

	_, ok := <-sub.C
	assert.False(t, ok)
}

func TestHub_FullSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe()

	h.Publish(UserCreated, users.User{ID: 1})
	h.Publish(UserUpdated, users.User{ID: 1})
	h.Publish(UserDeleted, users.User{ID: 1})

	assert.Equal(t, uint64(2), h.Dropped())
	evt := <-sub.C
	assert.Equal(t, UserCreated, evt.Type)
}

func TestHub_Close(t *testing.T) {
	h := NewHub(1)
	sub := h.Subscribe()
	h.Close()
	h.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	late := h.Subscribe()
	_, ok = <-late.C
	assert.False(t, ok)
	assert.Equal(t, 0, h.Count())

	h.Publish(UserCreated, users.User{ID: 1})
}

func TestHub_ConcurrentPublishAndSubscribe(t *testing.T) {
	h := NewHub(64)
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := h.Subscribe()
			h.Publish(UserCreated, users.User{ID: int64(i)})
			h.Unsubscribe(sub.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Count())
}
