package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockResult implements Result
type mockResult struct {
	err error
}

func (r *mockResult) GetError() error {
	return r.err
}

// mockJob implements Job
type mockJob struct {
	duration  time.Duration
	shouldErr bool
	executed  *int32 // atomic counter
}

func (j *mockJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.duration > 0 {
		select {
		case <-time.After(j.duration):
		case <-ctx.Done():
			return &mockResult{err: ctx.Err()}
		}
	}
	if j.shouldErr {
		return &mockResult{err: errors.New("job error")}
	}
	return &mockResult{err: nil}
}

// runWithin runs the pool and fails the test if it does not return in time
func runWithin(t *testing.T, pool *Pool, jobs []Job, limit time.Duration) []Result {
	t.Helper()
	done := make(chan []Result)
	go func() { done <- pool.Run(jobs) }()

	select {
	case results := <-done:
		return results
	case <-time.After(limit):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestNewPoolContext_Workers(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{5, 5},
		{0, 1},
		{-1, 1},
	}

	for _, tt := range tests {
		if got := NewPoolContext(context.Background(), tt.in).workers; got != tt.want {
			t.Errorf("NewPoolContext(%d): expected %d workers, got %d", tt.in, tt.want, got)
		}
	}
}

func TestPool_Run(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)

	var executed int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = &mockJob{executed: &executed}
	}

	results := runWithin(t, pool, jobs, 5*time.Second)

	if len(results) != len(jobs) {
		t.Errorf("expected %d results, got %d", len(jobs), len(results))
	}
	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("expected %d executed jobs, got %d", len(jobs), executed)
	}
}

// concurrencyJob tracks max concurrent executions
type concurrencyJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *concurrencyJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &mockResult{}
}

func TestPool_Concurrency(t *testing.T) {
	workers := 10
	pool := NewPoolContext(context.Background(), workers)

	var current int32
	var maxConcurrent int32
	var completed int32
	var mu sync.Mutex

	jobs := make([]Job, 50)
	for i := range jobs {
		jobs[i] = &concurrencyJob{
			start: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxConcurrent {
					maxConcurrent = curr
				}
				mu.Unlock()
			},
			end: func() {
				atomic.AddInt32(&current, -1)
				atomic.AddInt32(&completed, 1)
			},
			duration: 10 * time.Millisecond,
		}
	}

	runWithin(t, pool, jobs, 5*time.Second)

	if atomic.LoadInt32(&completed) != int32(len(jobs)) {
		t.Errorf("expected %d completed jobs, got %d", len(jobs), completed)
	}

	mu.Lock()
	max := maxConcurrent
	mu.Unlock()

	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}

	if max <= 1 {
		t.Logf("Warning: max concurrency was %d, expected > 1", max)
	}
}

func TestPool_Run_ErrorHandling(t *testing.T) {
	pool := NewPoolContext(context.Background(), 2)

	results := runWithin(t, pool, []Job{&mockJob{shouldErr: true}, &mockJob{shouldErr: false}}, 5*time.Second)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	errors := 0
	for _, res := range results {
		if res.GetError() != nil {
			errors++
		}
	}

	if errors != 1 {
		t.Errorf("expected 1 error, got %d", errors)
	}
}

func TestPool_Run_ManyJobs(t *testing.T) {
	// Far more jobs than the queue and result buffers hold
	pool := NewPoolContext(context.Background(), 2)

	var executed int32
	jobs := make([]Job, 200)
	for i := range jobs {
		jobs[i] = &mockJob{executed: &executed}
	}

	results := runWithin(t, pool, jobs, 5*time.Second)
	if len(results) != len(jobs) {
		t.Errorf("expected %d results, got %d", len(jobs), len(results))
	}

	if atomic.LoadInt32(&executed) != int32(len(jobs)) {
		t.Errorf("expected %d executed jobs, got %d", len(jobs), executed)
	}
}

func TestPool_Run_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPoolContext(ctx, 2)

	results := runWithin(t, pool, []Job{&mockJob{duration: time.Second}, &mockJob{duration: time.Second}}, 2*time.Second)
	for _, r := range results {
		if r.GetError() == nil {
			t.Error("expected cancelled jobs to report an error")
		}
	}
}

func TestPool_Run_CancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPoolContext(ctx, 1)

	started := make(chan struct{})
	jobs := []Job{
		&concurrencyJob{start: func() { close(started) }, duration: 200 * time.Millisecond},
	}
	for i := 0; i < 20; i++ {
		jobs = append(jobs, &mockJob{duration: time.Second})
	}

	go func() {
		<-started
		cancel()
	}()

	results := runWithin(t, pool, jobs, 2*time.Second)
	if len(results) >= len(jobs) {
		t.Errorf("expected queued jobs to be dropped after cancel, got %d results", len(results))
	}
}
