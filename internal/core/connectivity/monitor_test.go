package connectivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drain(m *Monitor) int {
	n := 0
	for {
		select {
		case <-m.OnlineEdges():
			n++
		default:
			return n
		}
	}
}

func TestInitialOnlineTriggersOnePass(t *testing.T) {
	m := NewMonitor(true)
	assert.True(t, m.Online())
	assert.Equal(t, 1, drain(m))
}

func TestInitialOfflineTriggersNothing(t *testing.T) {
	m := NewMonitor(false)
	assert.False(t, m.Online())
	assert.Equal(t, 0, drain(m))
}

func TestOnlineEdgeIsEdgeTriggered(t *testing.T) {
	m := NewMonitor(false)

	m.Set(true)
	assert.True(t, m.Online())
	assert.Equal(t, 1, drain(m))

	// Repeating the same state is not an edge.
	m.Set(true)
	assert.Equal(t, 0, drain(m))

	m.Set(false)
	assert.False(t, m.Online())
	assert.Equal(t, 0, drain(m), "going offline never triggers a pass")
}

func TestRapidFlapsCoalesce(t *testing.T) {
	m := NewMonitor(false)

	for i := 0; i < 5; i++ {
		m.Set(true)
		m.Set(false)
	}
	m.Set(true)

	// Many edges happened but nobody consumed in between; at most one
	// trigger is pending, so passes can never overlap.
	assert.Equal(t, 1, drain(m))
}
