package store

import (
	"context"
	"errors"

	"github.com/scriptforge/api/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrVersionConflict is returned when version allocation loses the
// optimistic transaction too many times in a row.
var ErrVersionConflict = errors.New("version allocation conflict")

// ErrSceneNumberTaken is returned by CreateScene when the scene number is
// already present in the target version.
var ErrSceneNumberTaken = errors.New("scene number taken")

// ContentStore is the durable home of characters, scripts, versions and
// scenes. Implementations must serialize AddScriptVersion per script so
// concurrent writers never allocate the same version number.
type ContentStore interface {
	CreateCharacter(ctx context.Context, ch *model.Character) error
	GetCharacter(ctx context.Context, id string) (*model.Character, error)
	UpdateCharacter(ctx context.Context, ch *model.Character) error
	DeleteCharacter(ctx context.Context, ownerID, id string) error
	ListCharacters(ctx context.Context, ownerID string) ([]model.Character, error)

	CreateScript(ctx context.Context, s *model.Script) error
	GetScript(ctx context.Context, id string) (*model.Script, error)
	UpdateScript(ctx context.Context, s *model.Script) error
	DeleteScript(ctx context.Context, ownerID, id string) error
	ListScripts(ctx context.Context, ownerID string) ([]model.Script, error)

	// AddScriptVersion appends a new immutable version numbered
	// latest+1 (or 1 when the script has none yet).
	AddScriptVersion(ctx context.Context, scriptID, content, notes string) (*model.ScriptVersion, error)
	GetScriptVersion(ctx context.Context, scriptID string, number int) (*model.ScriptVersion, error)
	// LatestScriptVersion returns ErrNotFound when the script has no versions.
	LatestScriptVersion(ctx context.Context, scriptID string) (*model.ScriptVersion, error)
	ListScriptVersions(ctx context.Context, scriptID string) ([]model.ScriptVersion, error)

	// CreateScene rejects a scene number already used within the target
	// version with ErrSceneNumberTaken; the check must hold under
	// concurrent creates.
	CreateScene(ctx context.Context, sc *model.Scene) error
	GetScene(ctx context.Context, id string) (*model.Scene, error)
	UpdateScene(ctx context.Context, sc *model.Scene) error
	ListScenes(ctx context.Context, scriptID string, version int) ([]model.Scene, error)
}

// JobStore is the durable job ledger.
type JobStore interface {
	CreateJob(ctx context.Context, j *model.Job) error
	GetJob(ctx context.Context, id string) (*model.Job, error)
	UpdateJob(ctx context.Context, j *model.Job) error
	DeleteJob(ctx context.Context, ownerID, id string) error
	ListJobs(ctx context.Context, ownerID string) ([]model.Job, error)
}
