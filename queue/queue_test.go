package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestEnqueueOrder(t *testing.T) {
	q := New()
	defer q.Close()

	var mu sync.Mutex
	var order []string
	done := make(chan struct{})

	// The first task is slow; the second would finish first if they ran
	// concurrently. Serial execution must keep enqueue order.
	q.Enqueue(Task{
		Name: "slow",
		Run: func(context.Context) error {
			time.Sleep(50 * time.Millisecond)
			mu.Lock()
			order = append(order, "slow")
			mu.Unlock()
			return nil
		},
	})
	q.Enqueue(Task{
		Name: "fast",
		Run: func(context.Context) error {
			mu.Lock()
			order = append(order, "fast")
			mu.Unlock()
			return nil
		},
		Done: func(error) { close(done) },
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != "slow" || order[1] != "fast" {
		t.Errorf("execution order = %v, want [slow fast]", order)
	}
}

func TestErrorDoesNotHaltWorker(t *testing.T) {
	q := New()
	defer q.Close()

	boom := errors.New("boom")
	firstErr := make(chan error, 1)
	second := make(chan struct{})

	q.Enqueue(Task{
		Name: "failing",
		Run:  func(context.Context) error { return boom },
		Done: func(err error) { firstErr <- err },
	})
	q.Enqueue(Task{
		Name: "after",
		Run:  func(context.Context) error { return nil },
		Done: func(error) { close(second) },
	})

	select {
	case err := <-firstErr:
		if !errors.Is(err, boom) {
			t.Errorf("first task error = %v, want boom", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first task never completed")
	}
	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("worker halted after a failing task")
	}
}

func TestBusyIdleCallbacks(t *testing.T) {
	var mu sync.Mutex
	var events []string
	idle := make(chan struct{}, 4)

	q := New(WithBusyIdle(
		func() {
			mu.Lock()
			events = append(events, "busy")
			mu.Unlock()
		},
		func() {
			mu.Lock()
			events = append(events, "idle")
			mu.Unlock()
			idle <- struct{}{}
		},
	))
	defer q.Close()

	release := make(chan struct{})
	q.Enqueue(Task{Run: func(context.Context) error { <-release; return nil }})
	q.Enqueue(Task{Run: func(context.Context) error { return nil }})
	close(release)

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("queue never went idle")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) < 2 || events[0] != "busy" || events[len(events)-1] != "idle" {
		t.Errorf("events = %v, want busy first and idle last", events)
	}
	// Two tasks enqueued back to back must not produce a second busy
	// notification while the queue is already draining.
	busyCount := 0
	for _, e := range events {
		if e == "busy" {
			busyCount++
		}
	}
	if busyCount != 1 {
		t.Errorf("got %d busy events, want 1", busyCount)
	}
}

func TestCloseRacesWithEnqueue(t *testing.T) {
	q := New()

	// Hammer Enqueue from several goroutines while Close runs. A send on
	// a closed channel would panic and fail the test.
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < 100; j++ {
				if !q.Enqueue(Task{Run: func(context.Context) error { return nil }}) {
					return
				}
			}
		}()
	}
	close(start)
	q.Close()
	wg.Wait()
}

func TestCloseCompletesQueuedTasks(t *testing.T) {
	q := New()

	release := make(chan struct{})
	q.Enqueue(Task{Run: func(context.Context) error { <-release; return nil }})

	queuedErr := make(chan error, 1)
	q.Enqueue(Task{
		Name: "queued",
		Run:  func(context.Context) error { return nil },
		Done: func(err error) { queuedErr <- err },
	})

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()
	q.Close()

	select {
	case err := <-queuedErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("queued task error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("queued task was never completed")
	}
}

func TestEnqueueAfterClose(t *testing.T) {
	q := New()
	q.Close()
	if q.Enqueue(Task{Run: func(context.Context) error { return nil }}) {
		t.Error("Enqueue on a closed queue should report false")
	}
}
