package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/store"
)

const (
	TaskTypeScript = "generate:script"
	TaskTypeScene  = "generate:scene"

	QueueScripts = "scripts"
	QueueScenes  = "scenes"
)

// taskMaxRetry applies only to queue redelivery after a worker crash
// (lease expiry). Handled generation failures are acked terminal and are
// never retried.
const taskMaxRetry = 2

// Enqueuer is the slice of asynq.Client the job service needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// JobService is the job control surface: it validates create requests
// against the content store, persists the ledger row, enqueues the work
// item, and answers polls. It never runs generation inline.
type JobService struct {
	content store.ContentStore
	jobs    store.JobStore
	queue   Enqueuer
}

func NewJobService(content store.ContentStore, jobs store.JobStore, queue Enqueuer) *JobService {
	return &JobService{
		content: content,
		jobs:    jobs,
		queue:   queue,
	}
}

// Create validates the request, persists a pending job and enqueues the
// work item. Returns immediately; results arrive via polling.
func (s *JobService) Create(ctx context.Context, ownerID string, req *model.JobCreateRequest) (*model.JobCreateResponse, error) {
	scriptType := req.ScriptType
	if scriptType == "" {
		scriptType = model.ScriptTypeScreenplay
	}

	switch req.JobType {
	case model.JobTypeSceneGeneration:
		if req.SceneID == "" {
			return nil, fmt.Errorf("%w: sceneId is required for scene_generation", ErrValidation)
		}
		// Scene generation always uses the scene format block.
		scriptType = model.ScriptTypeScene
		scene, err := s.content.GetScene(ctx, req.SceneID)
		if err != nil {
			return nil, err
		}
		script, err := s.content.GetScript(ctx, scene.ScriptID)
		if err != nil {
			return nil, err
		}
		if script.OwnerID != ownerID {
			return nil, store.ErrNotFound
		}
	case model.JobTypeScriptGeneration, model.JobTypeScriptRefinement:
		if req.ScriptID != "" {
			script, err := s.content.GetScript(ctx, req.ScriptID)
			if err != nil {
				return nil, err
			}
			if script.OwnerID != ownerID {
				return nil, store.ErrNotFound
			}
		}
	}

	job := &model.Job{
		ID:         uuid.New().String(),
		OwnerID:    ownerID,
		JobType:    req.JobType,
		Status:     model.JobStatusPending,
		Prompt:     req.Prompt,
		ScriptID:   req.ScriptID,
		SceneID:    req.SceneID,
		ScriptType: scriptType,
		CreatedAt:  time.Now(),
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, queue, err := newGenerateTask(job)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	_, err = s.queue.Enqueue(task,
		asynq.Queue(queue),
		asynq.MaxRetry(taskMaxRetry),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		// The row and the work item are a unit: without the task the job
		// would sit pending forever, so roll the row back before failing
		// the request.
		_ = s.jobs.DeleteJob(ctx, job.OwnerID, job.ID)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.JobCreateResponse{
		JobID:     job.ID,
		Status:    job.Status,
		CreatedAt: job.CreatedAt,
	}, nil
}

// GetStatus returns the lifecycle view of an owner's job.
func (s *JobService) GetStatus(ctx context.Context, ownerID, jobID string) (*model.JobStatusResponse, error) {
	job, err := s.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	return &model.JobStatusResponse{
		JobID:       job.ID,
		JobType:     job.JobType,
		Status:      job.Status,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
	}, nil
}

// GetResult returns the terminal payload of an owner's job. Jobs still
// pending or running yield a NotReadyError, distinct from both outcomes.
func (s *JobService) GetResult(ctx context.Context, ownerID, jobID string) (*model.JobResultResponse, error) {
	job, err := s.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case model.JobStatusCompleted:
		return &model.JobResultResponse{
			JobID:    job.ID,
			Status:   job.Status,
			Result:   job.Result,
			ScriptID: job.ScriptID,
		}, nil
	case model.JobStatusFailed:
		return &model.JobResultResponse{
			JobID:  job.ID,
			Status: job.Status,
			Error:  job.Error,
		}, nil
	default:
		return nil, &NotReadyError{JobID: job.ID, Status: job.Status}
	}
}

// List returns the owner's jobs, newest first.
func (s *JobService) List(ctx context.Context, ownerID string) ([]model.JobStatusResponse, error) {
	jobs, err := s.jobs.ListJobs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.JobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, model.JobStatusResponse{
			JobID:       job.ID,
			JobType:     job.JobType,
			Status:      job.Status,
			CreatedAt:   job.CreatedAt,
			StartedAt:   job.StartedAt,
			CompletedAt: job.CompletedAt,
		})
	}
	return out, nil
}

// FailStuck marks an owner's job failed when its work item has exhausted
// the queue's redelivery budget (operator recovery path; the queue itself
// re-delivers crashed work automatically before this).
func (s *JobService) FailStuck(ctx context.Context, ownerID, jobID, reason string) error {
	job, err := s.getOwned(ctx, ownerID, jobID)
	if err != nil {
		return err
	}
	if job.Status != model.JobStatusRunning {
		return fmt.Errorf("%w: job %s is %s, not running", ErrValidation, job.ID, job.Status)
	}
	if err := job.Fail(reason, time.Now()); err != nil {
		return err
	}
	return s.jobs.UpdateJob(ctx, job)
}

func (s *JobService) getOwned(ctx context.Context, ownerID, jobID string) (*model.Job, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return job, nil
}

func newGenerateTask(job *model.Job) (*asynq.Task, string, error) {
	payload := model.GenerateTaskPayload{
		JobID:      job.ID,
		JobType:    job.JobType,
		Prompt:     job.Prompt,
		ScriptID:   job.ScriptID,
		SceneID:    job.SceneID,
		ScriptType: job.ScriptType,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", err
	}
	if job.JobType == model.JobTypeSceneGeneration {
		return asynq.NewTask(TaskTypeScene, data), QueueScenes, nil
	}
	return asynq.NewTask(TaskTypeScript, data), QueueScripts, nil
}
