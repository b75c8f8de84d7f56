package session

import (
	"sync"
	"testing"

	"github.com/OCAP2/airfight/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestContext_Empty(t *testing.T) {
	ctx := NewContext()

	name, clock := ctx.Campaign()
	assert.Empty(t, name)
	assert.Zero(t, clock)
	assert.GreaterOrEqual(t, ctx.Uptime().Nanoseconds(), int64(0))
}

func TestContext_ThreadSafe(t *testing.T) {
	ctx := NewContext()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx.SetCampaign("thunder", int64(i))
			_, _ = ctx.Campaign()
		}(i)
	}
	wg.Wait()

	name, clock := ctx.Campaign()
	assert.Equal(t, "thunder", name)
	assert.Less(t, clock, int64(8))
}

func TestContext_FeedsLogProvider(t *testing.T) {
	ctx := NewContext()
	provider := logging.CampaignProvider(ctx.Campaign)
	assert.Nil(t, provider())

	ctx.SetCampaign("thunder", 3600)
	assert.Len(t, provider(), 2)
}
