package concurrency

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoLimit(t *testing.T) {
	g := NewGoLimit(2)

	var running, peak, done int32
	for i := 0; i < 8; i++ {
		g.Go(func() {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			atomic.AddInt32(&done, 1)
		})
	}

	g.Wait()
	assert.EqualValues(t, 8, done)
	assert.LessOrEqual(t, peak, int32(2))
}
