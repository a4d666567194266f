package benchmarks

import (
	"sync"
	"testing"

	"github.com/randalmurphal/drivealert/pkg/drivealert/queue"
	"github.com/randalmurphal/drivealert/pkg/drivealert/voice"
)

// BenchmarkQueue_ProduceTake measures one produce and one take on an idle queue.
func BenchmarkQueue_ProduceTake(b *testing.B) {
	q := queue.New[voice.Event](queue.CategoryVoice)
	ev := voice.NewEvent(voice.GPSOn)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Produce(ev)
		_, _ = q.Take()
	}
}

// BenchmarkQueue_TakePending_100 measures draining a batch of 100 pending items.
func BenchmarkQueue_TakePending_100(b *testing.B) {
	q := queue.New[int](queue.CategoryOSMCamera)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			q.Produce(j)
		}
		_ = q.TakePending()
	}
}

// BenchmarkQueue_Contended measures a blocking consumer fed by 4 producers.
func BenchmarkQueue_Contended(b *testing.B) {
	q := queue.New[int](queue.CategoryMapUpdate)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, ok := q.Take(); !ok {
				return
			}
		}
	}()

	b.ResetTimer()
	var wg sync.WaitGroup
	per := b.N/4 + 1
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				q.Produce(i)
			}
		}()
	}
	wg.Wait()
	q.Close()
	<-done
}
