package model

import (
	"fmt"
	"time"
)

// Job is the ledger row for one asynchronous generation request. Identity
// fields (ID, owner, type, prompt, targets) are fixed at creation; only
// status, result/error and the later timestamps change, each exactly once,
// and only the worker that claimed the job writes them.
type Job struct {
	ID          string     `json:"jobId"`
	OwnerID     string     `json:"ownerId"`
	JobType     JobType    `json:"jobType"`
	Status      JobStatus  `json:"status"`
	Prompt      string     `json:"prompt"`
	ScriptID    string     `json:"scriptId,omitempty"`
	SceneID     string     `json:"sceneId,omitempty"`
	ScriptType  ScriptType `json:"scriptType"`
	Result      string     `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// MarkRunning transitions pending → running and stamps StartedAt.
// A running job may be re-claimed after a worker crash (queue redelivery);
// terminal jobs are never claimable again.
func (j *Job) MarkRunning(now time.Time) error {
	if j.Status.IsTerminal() {
		return fmt.Errorf("job %s is already %s", j.ID, j.Status)
	}
	j.Status = JobStatusRunning
	j.StartedAt = &now
	return nil
}

// Complete transitions running → completed with the generated text.
func (j *Job) Complete(result string, now time.Time) error {
	if j.Status != JobStatusRunning {
		return fmt.Errorf("cannot complete job %s from status %s", j.ID, j.Status)
	}
	j.Status = JobStatusCompleted
	j.Result = result
	j.CompletedAt = &now
	return nil
}

// Fail transitions running → failed, capturing the error text verbatim.
func (j *Job) Fail(errMsg string, now time.Time) error {
	if j.Status != JobStatusRunning {
		return fmt.Errorf("cannot fail job %s from status %s", j.ID, j.Status)
	}
	j.Status = JobStatusFailed
	j.Error = errMsg
	j.CompletedAt = &now
	return nil
}

// GenerateTaskPayload is the work item handed from the API to the worker.
type GenerateTaskPayload struct {
	JobID      string     `json:"jobId"`
	JobType    JobType    `json:"jobType"`
	Prompt     string     `json:"prompt"`
	ScriptID   string     `json:"scriptId,omitempty"`
	SceneID    string     `json:"sceneId,omitempty"`
	ScriptType ScriptType `json:"scriptType"`
}

// JobCreateRequest represents the request body for creating a generation job
type JobCreateRequest struct {
	JobType    JobType    `json:"jobType" validate:"required,oneof=script_generation scene_generation script_refinement"`
	Prompt     string     `json:"prompt" validate:"required,min=1,max=20000"`
	ScriptID   string     `json:"scriptId" validate:"omitempty,uuid4"`
	SceneID    string     `json:"sceneId" validate:"omitempty,uuid4"`
	ScriptType ScriptType `json:"scriptType" validate:"omitempty,oneof=screenplay treatment scene outline"`
}

// JobCreateResponse is returned immediately on enqueue; generation never
// happens inline.
type JobCreateResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// JobStatusResponse represents the polling view of a job's lifecycle
type JobStatusResponse struct {
	JobID       string     `json:"jobId"`
	JobType     JobType    `json:"jobType"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// JobResultResponse is the terminal payload: result on completed jobs,
// error on failed ones.
type JobResultResponse struct {
	JobID    string    `json:"jobId"`
	Status   JobStatus `json:"status"`
	Result   string    `json:"result,omitempty"`
	ScriptID string    `json:"scriptId,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// JobPendingResponse is the distinct "not ready yet" signal for jobs that
// are still pending or running — callers should keep polling.
type JobPendingResponse struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}
