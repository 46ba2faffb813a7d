package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/store"
)

// ScriptService handles scripts, their immutable versions and their scenes.
type ScriptService struct {
	content store.ContentStore
}

func NewScriptService(content store.ContentStore) *ScriptService {
	return &ScriptService{content: content}
}

// Create creates a script; linked characters must belong to the owner.
func (s *ScriptService) Create(ctx context.Context, ownerID string, req *model.ScriptCreateRequest) (*model.Script, error) {
	if err := s.checkCharacters(ctx, ownerID, req.CharacterIDs); err != nil {
		return nil, err
	}
	now := time.Now()
	sc := &model.Script{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        req.Title,
		Genre:        req.Genre,
		Tone:         req.Tone,
		Logline:      req.Logline,
		CharacterIDs: req.CharacterIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if sc.CharacterIDs == nil {
		sc.CharacterIDs = []string{}
	}
	if err := s.content.CreateScript(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// List returns the owner's scripts, most recently updated first.
func (s *ScriptService) List(ctx context.Context, ownerID string) ([]model.Script, error) {
	return s.content.ListScripts(ctx, ownerID)
}

// Get returns an owner's script or ErrNotFound.
func (s *ScriptService) Get(ctx context.Context, ownerID, id string) (*model.Script, error) {
	sc, err := s.content.GetScript(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return sc, nil
}

// Detail resolves a script together with its characters and latest version.
func (s *ScriptService) Detail(ctx context.Context, ownerID, id string) (*model.ScriptDetailResponse, error) {
	sc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	characters, err := s.Characters(ctx, sc)
	if err != nil {
		return nil, err
	}
	detail := &model.ScriptDetailResponse{
		Script:     *sc,
		Characters: characters,
	}
	latest, err := s.content.LatestScriptVersion(ctx, sc.ID)
	if err != nil && err != store.ErrNotFound {
		return nil, err
	}
	if err == nil {
		detail.LatestVersion = latest
	}
	return detail, nil
}

// Characters resolves the characters linked to a script, skipping dangling
// references.
func (s *ScriptService) Characters(ctx context.Context, sc *model.Script) ([]model.Character, error) {
	characters := make([]model.Character, 0, len(sc.CharacterIDs))
	for _, id := range sc.CharacterIDs {
		ch, err := s.content.GetCharacter(ctx, id)
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

// Update applies the non-nil fields of the request.
func (s *ScriptService) Update(ctx context.Context, ownerID, id string, req *model.ScriptUpdateRequest) (*model.Script, error) {
	sc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		sc.Title = *req.Title
	}
	if req.Genre != nil {
		sc.Genre = *req.Genre
	}
	if req.Tone != nil {
		sc.Tone = *req.Tone
	}
	if req.Logline != nil {
		sc.Logline = *req.Logline
	}
	if req.CharacterIDs != nil {
		if err := s.checkCharacters(ctx, ownerID, *req.CharacterIDs); err != nil {
			return nil, err
		}
		sc.CharacterIDs = *req.CharacterIDs
	}
	sc.UpdatedAt = time.Now()
	if err := s.content.UpdateScript(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Delete removes a script with all its versions and scenes.
func (s *ScriptService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}
	return s.content.DeleteScript(ctx, ownerID, id)
}

// ListVersions returns all versions of an owner's script in order.
func (s *ScriptService) ListVersions(ctx context.Context, ownerID, scriptID string) ([]model.ScriptVersion, error) {
	if _, err := s.Get(ctx, ownerID, scriptID); err != nil {
		return nil, err
	}
	return s.content.ListScriptVersions(ctx, scriptID)
}

// GetVersion resolves one version together with its scenes.
func (s *ScriptService) GetVersion(ctx context.Context, ownerID, scriptID string, number int) (*model.VersionDetailResponse, error) {
	if _, err := s.Get(ctx, ownerID, scriptID); err != nil {
		return nil, err
	}
	v, err := s.content.GetScriptVersion(ctx, scriptID, number)
	if err != nil {
		return nil, err
	}
	scenes, err := s.content.ListScenes(ctx, scriptID, number)
	if err != nil {
		return nil, err
	}
	return &model.VersionDetailResponse{Version: *v, Scenes: scenes}, nil
}

// LatestVersion returns the highest-numbered version of an owner's script.
func (s *ScriptService) LatestVersion(ctx context.Context, ownerID, scriptID string) (*model.ScriptVersion, error) {
	if _, err := s.Get(ctx, ownerID, scriptID); err != nil {
		return nil, err
	}
	return s.content.LatestScriptVersion(ctx, scriptID)
}

// AddVersion appends a manually written draft as the next version.
func (s *ScriptService) AddVersion(ctx context.Context, ownerID, scriptID, content, notes string) (*model.ScriptVersion, error) {
	if _, err := s.Get(ctx, ownerID, scriptID); err != nil {
		return nil, err
	}
	return s.content.AddScriptVersion(ctx, scriptID, content, notes)
}

// CreateScene adds a scene to a version of an owner's script. Scene numbers
// are unique within the version.
func (s *ScriptService) CreateScene(ctx context.Context, ownerID, scriptID string, version int, req *model.SceneCreateRequest) (*model.Scene, error) {
	if _, err := s.Get(ctx, ownerID, scriptID); err != nil {
		return nil, err
	}
	if _, err := s.content.GetScriptVersion(ctx, scriptID, version); err != nil {
		return nil, err
	}
	now := time.Now()
	scene := &model.Scene{
		ID:              uuid.New().String(),
		ScriptID:        scriptID,
		ScriptVersionID: version,
		SceneNumber:     req.SceneNumber,
		Setting:         req.Setting,
		Goal:            req.Goal,
		Tension:         req.Tension,
		Tone:            req.Tone,
		Content:         req.Content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.content.CreateScene(ctx, scene); err != nil {
		if err == store.ErrSceneNumberTaken {
			return nil, fmt.Errorf("%w: scene %d already exists in version %d", ErrValidation, req.SceneNumber, version)
		}
		return nil, err
	}
	return scene, nil
}

// GetScene returns a scene if the owning script belongs to the caller.
func (s *ScriptService) GetScene(ctx context.Context, ownerID, sceneID string) (*model.Scene, error) {
	scene, err := s.content.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, ownerID, scene.ScriptID); err != nil {
		return nil, err
	}
	return scene, nil
}

// UpdateScene applies the non-nil fields of the request.
func (s *ScriptService) UpdateScene(ctx context.Context, ownerID, sceneID string, req *model.SceneUpdateRequest) (*model.Scene, error) {
	scene, err := s.GetScene(ctx, ownerID, sceneID)
	if err != nil {
		return nil, err
	}
	if req.Setting != nil {
		scene.Setting = *req.Setting
	}
	if req.Goal != nil {
		scene.Goal = *req.Goal
	}
	if req.Tension != nil {
		scene.Tension = *req.Tension
	}
	if req.Tone != nil {
		scene.Tone = *req.Tone
	}
	if req.Content != nil {
		scene.Content = *req.Content
	}
	scene.UpdatedAt = time.Now()
	if err := s.content.UpdateScene(ctx, scene); err != nil {
		return nil, err
	}
	return scene, nil
}

func (s *ScriptService) checkCharacters(ctx context.Context, ownerID string, ids []string) error {
	for _, id := range ids {
		ch, err := s.content.GetCharacter(ctx, id)
		if err != nil {
			return err
		}
		if ch.OwnerID != ownerID {
			return store.ErrNotFound
		}
	}
	return nil
}
