package model

import (
	"testing"
	"time"
)

func newPendingJob() *Job {
	return &Job{
		ID:        "job-1",
		OwnerID:   "user-1",
		JobType:   JobTypeScriptGeneration,
		Status:    JobStatusPending,
		Prompt:    "a heist gone wrong",
		CreatedAt: time.Now(),
	}
}

func TestJobLifecycle_CompletePath(t *testing.T) {
	j := newPendingJob()
	now := time.Now()

	if err := j.MarkRunning(now); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	if j.Status != JobStatusRunning {
		t.Errorf("expected running, got %s", j.Status)
	}
	if j.StartedAt == nil {
		t.Error("expected StartedAt to be set")
	}

	if err := j.Complete("FADE IN:", now); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if j.Status != JobStatusCompleted {
		t.Errorf("expected completed, got %s", j.Status)
	}
	if j.Result != "FADE IN:" {
		t.Errorf("expected result to be stored, got %q", j.Result)
	}
	if j.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if j.Error != "" {
		t.Errorf("completed job must not carry an error, got %q", j.Error)
	}
}

func TestJobLifecycle_FailPath(t *testing.T) {
	j := newPendingJob()
	now := time.Now()

	if err := j.MarkRunning(now); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	if err := j.Fail("anthropic API error (status 529): overloaded", now); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if j.Status != JobStatusFailed {
		t.Errorf("expected failed, got %s", j.Status)
	}
	if j.Error != "anthropic API error (status 529): overloaded" {
		t.Errorf("expected verbatim error text, got %q", j.Error)
	}
	if j.Result != "" {
		t.Errorf("failed job must not carry a result, got %q", j.Result)
	}
}

func TestJobLifecycle_CannotCompleteFromPending(t *testing.T) {
	j := newPendingJob()
	if err := j.Complete("text", time.Now()); err == nil {
		t.Error("expected error completing a pending job")
	}
	if err := j.Fail("boom", time.Now()); err == nil {
		t.Error("expected error failing a pending job")
	}
}

func TestJobLifecycle_TerminalIsFinal(t *testing.T) {
	now := time.Now()

	j := newPendingJob()
	j.MarkRunning(now)
	j.Complete("done", now)
	if err := j.MarkRunning(now); err == nil {
		t.Error("expected error re-running a completed job")
	}
	if err := j.Fail("late failure", now); err == nil {
		t.Error("expected error failing a completed job")
	}

	j = newPendingJob()
	j.MarkRunning(now)
	j.Fail("boom", now)
	if err := j.Complete("late success", now); err == nil {
		t.Error("expected error completing a failed job")
	}
}

func TestJobLifecycle_RunningCanBeReclaimed(t *testing.T) {
	// A running job whose worker died must be claimable again.
	j := newPendingJob()
	now := time.Now()
	if err := j.MarkRunning(now); err != nil {
		t.Fatalf("MarkRunning failed: %v", err)
	}
	later := now.Add(time.Minute)
	if err := j.MarkRunning(later); err != nil {
		t.Fatalf("re-claiming a running job should succeed: %v", err)
	}
	if !j.StartedAt.Equal(later) {
		t.Error("expected StartedAt to be restamped on re-claim")
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	cases := map[JobStatus]bool{
		JobStatusPending:   false,
		JobStatusRunning:   false,
		JobStatusCompleted: true,
		JobStatusFailed:    true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}
