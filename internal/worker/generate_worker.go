package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scriptforge/api/internal/client"
	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/service"
	"github.com/scriptforge/api/internal/store"
)

const (
	scriptMaxTokens = 4096
	sceneMaxTokens  = 2048
)

// GenerateWorker executes generation jobs pulled from the queue. It is the
// only writer of a job's transitional fields after creation, and the only
// creator of generated ScriptVersions / mutator of scene content. Every
// handled failure ends in a terminal failed job and acks the task, so the
// queue never retries a generation on its own; redelivery only happens
// when a worker dies mid-job.
type GenerateWorker struct {
	content  store.ContentStore
	jobs     store.JobStore
	provider client.Generator
}

func NewGenerateWorker(content store.ContentStore, jobs store.JobStore, provider client.Generator) *GenerateWorker {
	return &GenerateWorker{
		content:  content,
		jobs:     jobs,
		provider: provider,
	}
}

// ProcessTask handles one generation work item end to end.
func (w *GenerateWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.GenerateTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	job, err := w.jobs.GetJob(ctx, payload.JobID)
	if err != nil {
		// Ledger row missing or unreadable; let the queue redeliver.
		return fmt.Errorf("load job %s: %w", payload.JobID, err)
	}
	if job.Status.IsTerminal() {
		// Redelivered after we already finished it.
		return nil
	}
	if job.Status == model.JobStatusRunning {
		log.Printf("Reclaiming job %s after worker loss", job.ID)
	}

	if err := job.MarkRunning(time.Now()); err != nil {
		return nil
	}
	if err := w.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("mark job %s running: %w", job.ID, err)
	}

	log.Printf("Starting %s job %s", job.JobType, job.ID)

	result, err := w.generate(ctx, job)
	if err != nil {
		return w.failJob(ctx, job, err)
	}
	if err := w.applyResult(ctx, job, result); err != nil {
		return w.failJob(ctx, job, err)
	}

	if err := job.Complete(result, time.Now()); err != nil {
		return w.failJob(ctx, job, err)
	}
	if err := w.jobs.UpdateJob(ctx, job); err != nil {
		// Terminal write lost; redelivery will find the row running and
		// re-claim rather than losing the job silently.
		return fmt.Errorf("complete job %s: %w", job.ID, err)
	}

	log.Printf("Completed job %s", job.ID)
	return nil
}

// generate resolves the prompt context and performs the provider round
// trip. Blocks for up to the provider's bounded wait.
func (w *GenerateWorker) generate(ctx context.Context, job *model.Job) (string, error) {
	var (
		genre      string
		tone       string
		characters []model.Character
		userPrompt = job.Prompt
		maxTokens  = scriptMaxTokens
		scriptType = job.ScriptType
	)

	if job.JobType == model.JobTypeSceneGeneration {
		scene, err := w.content.GetScene(ctx, job.SceneID)
		if err != nil {
			return "", fmt.Errorf("scene not found: %s", job.SceneID)
		}
		script, err := w.content.GetScript(ctx, scene.ScriptID)
		if err != nil {
			return "", fmt.Errorf("script not found: %s", scene.ScriptID)
		}
		characters, err = w.scriptCharacters(ctx, script)
		if err != nil {
			return "", err
		}
		genre = script.Genre.Label()
		if scene.Tone != "" {
			tone = scene.Tone.Label()
		} else {
			tone = script.Tone.Label()
		}
		userPrompt = service.BuildSceneContext(scene) + "\n\n" + job.Prompt
		maxTokens = sceneMaxTokens
		scriptType = model.ScriptTypeScene
	} else if job.ScriptID != "" {
		script, err := w.content.GetScript(ctx, job.ScriptID)
		if err != nil {
			return "", fmt.Errorf("script not found: %s", job.ScriptID)
		}
		characters, err = w.scriptCharacters(ctx, script)
		if err != nil {
			return "", err
		}
		genre = script.Genre.Label()
		tone = script.Tone.Label()
	}

	systemPrompt := service.BuildSystemPrompt(scriptType, genre, tone, characters)

	// Fall back to canned content when no provider is configured so the
	// full job loop still runs in development.
	if w.provider == nil || !w.provider.IsConfigured() {
		return mockContent(scriptType), nil
	}

	return w.provider.Generate(ctx, systemPrompt, userPrompt, maxTokens)
}

// applyResult writes a successful generation back to the content store.
func (w *GenerateWorker) applyResult(ctx context.Context, job *model.Job, result string) error {
	switch job.JobType {
	case model.JobTypeSceneGeneration:
		scene, err := w.content.GetScene(ctx, job.SceneID)
		if err != nil {
			return fmt.Errorf("scene not found: %s", job.SceneID)
		}
		scene.Content = result
		scene.UpdatedAt = time.Now()
		return w.content.UpdateScene(ctx, scene)
	case model.JobTypeScriptGeneration, model.JobTypeScriptRefinement:
		if job.ScriptID == "" {
			// Unattached generation: result lives on the job row only.
			return nil
		}
		_, err := w.content.AddScriptVersion(ctx, job.ScriptID, result, "")
		return err
	}
	return nil
}

// failJob records a terminal failure with the error text verbatim and acks
// the task. Only a failed ledger write bubbles out, so the queue can
// redeliver instead of losing the job in a non-terminal state.
func (w *GenerateWorker) failJob(ctx context.Context, job *model.Job, cause error) error {
	log.Printf("Job %s failed: %v", job.ID, cause)
	if err := job.Fail(cause.Error(), time.Now()); err != nil {
		return nil
	}
	if err := w.jobs.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("record failure for job %s: %w", job.ID, err)
	}
	return nil
}

func (w *GenerateWorker) scriptCharacters(ctx context.Context, script *model.Script) ([]model.Character, error) {
	characters := make([]model.Character, 0, len(script.CharacterIDs))
	for _, id := range script.CharacterIDs {
		ch, err := w.content.GetCharacter(ctx, id)
		if err == store.ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		characters = append(characters, *ch)
	}
	return characters, nil
}

// Mock content for development/testing without a provider key.
func mockContent(scriptType model.ScriptType) string {
	switch scriptType {
	case model.ScriptTypeScene:
		return "INT. ABANDONED WAREHOUSE - NIGHT\n\n" +
			"Rain hammers the skylights. MIRA edges between rusted shelving,\n" +
			"flashlight beam trembling.\n\n" +
			"MIRA\n(whispering)\nI know you're here.\n\n" +
			"A crate topples behind her. She spins. Darkness."
	case model.ScriptTypeTreatment:
		return "The story opens on a city that has forgotten how to sleep. " +
			"Our protagonist, a night-shift archivist, discovers a ledger " +
			"of events that have not happened yet and must decide whether " +
			"to prevent them or profit from them."
	case model.ScriptTypeOutline:
		return "ACT ONE: Setup\n- Opening Image: dawn over an empty newsroom\n" +
			"- Inciting Incident: the ledger arrives\n- First Plot Point: the first prediction comes true\n\n" +
			"ACT TWO: Confrontation\n- Rising Action\n- Midpoint: the archivist is named in the ledger\n\n" +
			"ACT THREE: Resolution\n- Climax: the final entry\n- Closing Image: a blank page"
	default:
		return "FADE IN:\n\nINT. NEWSROOM - DAWN\n\n" +
			"Empty desks. One lamp burns. JONAH (40s, rumpled) stares at a\n" +
			"leather ledger that should not exist.\n\n" +
			"JONAH\nTomorrow's news. Today.\n\n" +
			"He turns the page.\n\nCUT TO:"
	}
}
