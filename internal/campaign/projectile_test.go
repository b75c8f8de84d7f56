package campaign

import (
	"testing"

	"github.com/OCAP2/airfight/internal/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddAssignsIndex(t *testing.T) {
	r := NewRegistry(4)
	p0, p1 := &Projectile{}, &Projectile{}

	require.True(t, r.Add(p0))
	require.True(t, r.Add(p1))
	assert.Equal(t, 0, p0.Index)
	assert.Equal(t, 1, p1.Index)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_FullRejects(t *testing.T) {
	r := NewRegistry(2)
	require.True(t, r.Add(&Projectile{}))
	require.True(t, r.Add(&Projectile{}))

	assert.True(t, r.Full())
	assert.False(t, r.Add(&Projectile{}))
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DefaultCapacity(t *testing.T) {
	assert.Equal(t, MaxProjectiles, NewRegistry(0).Cap())
}

func TestRegistry_RemoveCompactsAndReindexes(t *testing.T) {
	r := NewRegistry(8)
	ps := []*Projectile{{Time: 0}, {Time: 1}, {Time: 2}, {Time: 3}}
	for _, p := range ps {
		r.Add(p)
	}

	require.True(t, r.Remove(1))

	require.Equal(t, 3, r.Len())
	for i := 0; i < r.Len(); i++ {
		assert.Equal(t, i, r.At(i).Index)
	}
	assert.Equal(t, 2, r.At(1).Time)
	assert.False(t, r.Remove(5))
}

func TestRegistry_ReverseIterationWithRemoval(t *testing.T) {
	r := NewRegistry(8)
	for i := 0; i < 5; i++ {
		r.Add(&Projectile{Time: i})
	}

	var visited []int
	for idx := r.Len() - 1; idx >= 0; idx-- {
		p := r.At(idx)
		visited = append(visited, p.Time)
		if p.Time%2 == 0 {
			r.Remove(idx)
		}
	}

	assert.Equal(t, []int{4, 3, 2, 1, 0}, visited)
	require.Equal(t, 2, r.Len())
	assert.Equal(t, 1, r.At(0).Time)
	assert.Equal(t, 3, r.At(1).Time)
}

func TestProjectile_Retarget(t *testing.T) {
	p := &Projectile{Target: Target{Kind: TargetAircraft, Handle: Handle{Index: 1, Gen: 1}}}
	p.Retarget(geo.Position{X: 3, Y: 4})

	assert.Equal(t, TargetIdle, p.Target.Kind)
	assert.True(t, p.Target.Handle.IsZero())
	assert.Equal(t, geo.Position{X: 3, Y: 4}, p.IdleTarget)
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry(2)
	r.Add(&Projectile{})
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
}
