package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/cadence/internal/common"
	"github.com/ternarybob/cadence/internal/models"
)

type blockingRunner struct {
	calls   atomic.Int32
	release chan struct{}
}

func (r *blockingRunner) RunDueJobs(_ context.Context) error {
	r.calls.Add(1)
	if r.release != nil {
		<-r.release
	}
	return nil
}

func (r *blockingRunner) RunForTenant(_ context.Context, _ string) error { return nil }

func (r *blockingRunner) Start(_ context.Context, _ string, _ *models.JobPatch) (*models.AutopostJob, error) {
	return nil, nil
}

func TestTriggerSweepSingleFlight(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{})}
	svc := NewService(runner, &common.SchedulerConfig{}, arbor.NewLogger())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svc.TriggerSweep(); err != nil {
			t.Errorf("TriggerSweep: %v", err)
		}
	}()

	// Wait until the first sweep is inside the runner.
	deadline := time.Now().Add(2 * time.Second)
	for runner.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first sweep never started")
		}
		time.Sleep(time.Millisecond)
	}

	// Overlapping triggers are no-ops, not queued.
	for i := 0; i < 3; i++ {
		if err := svc.TriggerSweep(); err != nil {
			t.Fatalf("overlapping TriggerSweep: %v", err)
		}
	}
	if got := runner.calls.Load(); got != 1 {
		t.Errorf("runner invoked %d times while a sweep was in flight, want 1", got)
	}

	close(runner.release)
	wg.Wait()

	// After the first sweep drains, the guard resets.
	runner.release = nil
	if err := svc.TriggerSweep(); err != nil {
		t.Fatalf("TriggerSweep after drain: %v", err)
	}
	if got := runner.calls.Load(); got != 2 {
		t.Errorf("runner calls = %d, want 2", got)
	}
}

func TestStartAndStop(t *testing.T) {
	runner := &blockingRunner{}
	svc := NewService(runner, &common.SchedulerConfig{CronSchedule: "*/15 * * * *"}, arbor.NewLogger())

	if svc.IsRunning() {
		t.Error("scheduler should not report running before Start")
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !svc.IsRunning() {
		t.Error("scheduler should report running after Start")
	}
	if err := svc.Start(); err == nil {
		t.Error("double Start must error")
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if svc.IsRunning() {
		t.Error("scheduler should not report running after Stop")
	}
	if err := svc.Stop(); err != nil {
		t.Errorf("Stop must be idempotent: %v", err)
	}
}

func TestStartRunsImmediateSweep(t *testing.T) {
	runner := &blockingRunner{}
	svc := NewService(runner, &common.SchedulerConfig{RunOnStart: true}, arbor.NewLogger())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runner.calls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("startup sweep never ran")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInvalidPollIntervalDisablesPoll(t *testing.T) {
	runner := &blockingRunner{}
	svc := NewService(runner, &common.SchedulerConfig{PollInterval: "not-a-duration"}, arbor.NewLogger())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer svc.Stop()

	if svc.pollTicker != nil {
		t.Error("invalid poll interval must disable the safety poll")
	}
}
