package queue

import (
	"sync"
	"testing"

	"github.com/OCAP2/airfight/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shot(attacker string, clock int64) core.CombatEvent {
	return core.CombatEvent{Type: core.EventShot, Attacker: attacker, Clock: clock}
}

func TestQueue_New(t *testing.T) {
	q := New[core.CombatEvent]()
	require.NotNil(t, q)
	assert.Zero(t, q.Len())
	assert.Nil(t, q.Drain())
	assert.Nil(t, q.PopN(4))
}

func TestQueue_PopNKeepsOrder(t *testing.T) {
	q := New[core.CombatEvent]()
	q.Push(shot("Interceptor", 1), shot("Fighter", 2))
	q.Push(shot("Alpha", 3))

	first := q.PopN(2)
	require.Len(t, first, 2)
	assert.Equal(t, "Interceptor", first[0].Attacker)
	assert.Equal(t, "Fighter", first[1].Attacker)
	assert.Equal(t, 1, q.Len())

	rest := q.PopN(10)
	require.Len(t, rest, 1)
	assert.Equal(t, "Alpha", rest[0].Attacker)
	assert.Nil(t, q.PopN(1))
	assert.Nil(t, q.PopN(0))
}

func TestQueue_PopNCompactsAndKeepsAppending(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3, 4, 5, 6, 7, 8)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, q.PopN(5))
	q.Push(9, 10)
	assert.Equal(t, 5, q.Len())
	assert.Equal(t, []int{6, 7, 8, 9}, q.PopN(4))
	assert.Equal(t, []int{10}, q.Drain())
	assert.Zero(t, q.Len())
}

func TestQueue_DrainDoesNotAlias(t *testing.T) {
	q := New[core.CombatEvent]()
	q.Push(shot("a", 1), shot("b", 2))

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[1].Clock)
	assert.Zero(t, q.Len())

	q.Push(shot("c", 3))
	assert.Equal(t, "a", got[0].Attacker)
	assert.Equal(t, "c", q.Drain()[0].Attacker)
}

func TestQueue_Discard(t *testing.T) {
	q := New[int]()
	q.Push(1, 2, 3)
	q.PopN(1)

	assert.Equal(t, 2, q.Discard())
	assert.Zero(t, q.Len())
	assert.Zero(t, q.Discard())

	q.Push(4)
	assert.Equal(t, []int{4}, q.PopN(1))
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				q.Push(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, q.Len())
}

func TestQueue_ConcurrentDrain(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0

	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			q.Push(1)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			n := len(q.PopN(20))
			mu.Lock()
			total += n
			mu.Unlock()
		}
	}()
	wg.Wait()
	total += len(q.Drain())
	assert.Equal(t, 500, total)
}
