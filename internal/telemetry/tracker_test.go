package telemetry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dkeye/VoiceStats/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestConnectionTracker_RegisterIfNew(t *testing.T) {
	tr := NewConnectionTracker()

	assert.False(t, tr.Has("pc-1"))
	assert.True(t, tr.RegisterIfNew("pc-1"))
	assert.True(t, tr.Has("pc-1"))
	for i := 0; i < 3; i++ {
		assert.False(t, tr.RegisterIfNew("pc-1"))
	}
	assert.True(t, tr.RegisterIfNew("pc-2"))
	assert.Equal(t, 2, tr.Len())
}

func TestConnectionTracker_ConcurrentRegistration(t *testing.T) {
	tr := NewConnectionTracker()
	var wins atomic.Int32
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if tr.RegisterIfNew(domain.ConnectionID(fmt.Sprintf("pc-%d", i))) {
					wins.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), wins.Load())
	assert.Equal(t, 50, tr.Len())
}
