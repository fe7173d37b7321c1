package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWallUsIsMonotonicNondecreasing(t *testing.T) {
	a := WallUs()
	b := WallUs()
	assert.LessOrEqual(t, a, b)
}

func TestResolveWallNeverDegrades(t *testing.T) {
	resolved, degraded := Resolve(SourceWall)
	assert.Equal(t, SourceWall, resolved)
	assert.False(t, degraded)
}

func TestResolveThreadCPUDegradesOnlyWhenUnavailable(t *testing.T) {
	resolved, degraded := Resolve(SourceThreadCPU)
	if _, available := ThreadCPUUs(); available {
		assert.Equal(t, SourceThreadCPU, resolved)
		assert.False(t, degraded)
	} else {
		assert.Equal(t, SourceWall, resolved)
		assert.True(t, degraded)
	}
}

func TestMeasureOverheadNanosIsPositive(t *testing.T) {
	got := MeasureOverheadNanos(SourceWall)
	assert.Greater(t, got, uint32(0))
}
