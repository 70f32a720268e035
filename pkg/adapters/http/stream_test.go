package http

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingGauge struct {
	mu  sync.Mutex
	now int
}

func (g *countingGauge) SubscriberAdded() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now++
}

func (g *countingGauge) SubscriberRemoved() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now--
}

func TestStreamManager_DeliversToEverySubscriber(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sm := NewStreamManager()
	const clients = 5

	var wg sync.WaitGroup
	got := make([][]string, clients)
	for i := 0; i < clients; i++ {
		ch, cancel := sm.Subscribe()
		defer cancel()
		wg.Add(1)
		go func(i int, ch <-chan string) {
			defer wg.Done()
			for msg := range ch {
				got[i] = append(got[i], msg)
			}
		}(i, ch)
	}

	sm.Broadcast("one")
	sm.Broadcast("two")
	sm.Close()
	wg.Wait()

	for i := 0; i < clients; i++ {
		assert.Equal(t, []string{"one", "two"}, got[i], "subscriber %d", i)
	}
}

func TestStreamManager_DropsForSlowSubscriber(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		sm.Broadcast(fmt.Sprintf("m%d", i))
	}

	assert.Len(t, ch, subscriberBuffer, "broadcast never blocks, extra messages are dropped")
	assert.Equal(t, "m0", <-ch)
}

func TestStreamManager_Unsubscribe(t *testing.T) {
	gauge := &countingGauge{}
	sm := NewStreamManager(WithSubscriberGauge(gauge))

	ch, cancel := sm.Subscribe()
	_, cancel2 := sm.Subscribe()
	require.Equal(t, 2, sm.Len())
	assert.Equal(t, 2, gauge.now)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, sm.Len())
	assert.Equal(t, 1, gauge.now)

	sm.Broadcast("still fine")

	sm.Close()
	cancel2()
	assert.Zero(t, sm.Len())
	assert.Zero(t, gauge.now)

	late, _ := sm.Subscribe()
	_, open = <-late
	assert.False(t, open, "subscribing after close yields a closed channel")
}
