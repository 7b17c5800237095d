package orion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameTimes(t *testing.T) {
	var times FrameTimes

	now := time.Unix(0, 0)

	var reports int
	for range 120 {
		if times.TickAt(now) {
			reports++
		}

		now = now.Add(20 * time.Millisecond)
	}

	assert.Equal(t, uint64(120), times.FrameCount)
	assert.Equal(t, 2, reports)
	assert.Equal(t, 20*time.Millisecond, times.Delta)
	assert.Equal(t, 20*time.Millisecond, times.AverageDuration)
	assert.Equal(t, 119*20*time.Millisecond, times.Elapsed)
	assert.InDelta(t, 50, times.FPS(), 1e-6)
}

func TestFrameTimesWithoutFrames(t *testing.T) {
	var times FrameTimes
	assert.Equal(t, float64(0), times.FPS())
}
