package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_Schedule(t *testing.T) {
	t.Run("Runs the task after the delay", func(t *testing.T) {
		timer := NewTimer()
		done := make(chan time.Time, 1)
		start := time.Now()

		timer.Schedule(20*time.Millisecond, func() {
			done <- time.Now()
		})

		select {
		case ranAt := <-done:
			assert.GreaterOrEqual(t, ranAt.Sub(start), 20*time.Millisecond)
		case <-time.After(time.Second):
			t.Fatal("task did not run")
		}

		timer.Wait()
	})

	t.Run("Stop cancels pending tasks", func(t *testing.T) {
		timer := NewTimer()
		var runs atomic.Int32

		timer.Schedule(time.Hour, func() { runs.Add(1) })
		timer.Stop()
		timer.Schedule(0, func() { runs.Add(1) })
		timer.Wait()

		assert.Equal(t, int32(0), runs.Load())
	})

	t.Run("Wait blocks until tasks finish", func(t *testing.T) {
		timer := NewTimer()
		var runs atomic.Int32

		for range 5 {
			timer.Schedule(time.Millisecond, func() { runs.Add(1) })
		}
		timer.Wait()

		assert.Equal(t, int32(5), runs.Load())
	})
}

func TestImmediate_Schedule(t *testing.T) {
	ran := false

	Immediate{}.Schedule(time.Hour, func() { ran = true })

	assert.True(t, ran)
}
