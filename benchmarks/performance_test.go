// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for hioload-exec components.

package benchmarks

import (
	"sync"
	"testing"
	"time"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/executor"
	"github.com/momentics/hioload-exec/internal/concurrency"
	"github.com/momentics/hioload-exec/internal/session"
	"github.com/momentics/hioload-exec/reactor"
)

// BenchmarkSynchronousSchedule measures inline dispatch overhead.
func BenchmarkSynchronousSchedule(b *testing.B) {
	e := executor.NewSynchronous()
	if err := e.Start(); err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	task := func(error) {}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Schedule(task)
	}
}

// BenchmarkFixedScheduleParallel measures queue handoff under contention.
func BenchmarkFixedScheduleParallel(b *testing.B) {
	for _, threads := range []int{1, 4} {
		b.Run(api.FixedLimits(threads).String(), func(b *testing.B) {
			e := executor.NewFixed(api.FixedLimits(threads))
			if err := e.Start(); err != nil {
				b.Fatal(err)
			}

			var wg sync.WaitGroup
			wg.Add(b.N)
			task := func(error) { wg.Done() }

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					e.Schedule(task)
				}
			})
			wg.Wait()
			b.StopTimer()
			if err := e.Shutdown(10 * time.Second); err != nil {
				b.Fatal(err)
			}
		})
	}
}

// BenchmarkRunOnDataAvailable measures signal-to-worker latency.
func BenchmarkRunOnDataAvailable(b *testing.B) {
	e := executor.NewFixed(api.FixedLimits(2))
	if err := e.Start(); err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	sess := session.New("bench", nil)

	done := make(chan struct{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.RunOnDataAvailable(sess, func(error) { done <- struct{}{} })
		sess.SignalAvailableData()
		<-done
	}
}

// BenchmarkReactorSchedule measures post-and-drain throughput of the loop.
func BenchmarkReactorSchedule(b *testing.B) {
	l := reactor.New()
	task := func(error) {}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Schedule(task)
	}
	l.Drain()
}

// BenchmarkTaskQueue measures the FIFO underneath both.
func BenchmarkTaskQueue(b *testing.B) {
	q := concurrency.NewTaskQueue[int]()
	for i := 0; i < b.N; i++ {
		q.Push(i)
		if q.Len() > 1024 {
			q.Pop()
		}
	}
}
