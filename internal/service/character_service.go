package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/store"
)

// CharacterService handles the owner-scoped character library.
type CharacterService struct {
	content store.ContentStore
}

func NewCharacterService(content store.ContentStore) *CharacterService {
	return &CharacterService{content: content}
}

// Create adds a character to the owner's library. Names are unique within
// a library.
func (s *CharacterService) Create(ctx context.Context, ownerID string, req *model.CharacterCreateRequest) (*model.Character, error) {
	if err := s.checkName(ctx, ownerID, req.Name, ""); err != nil {
		return nil, err
	}
	now := time.Now()
	ch := &model.Character{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        req.Name,
		Personality: req.Personality,
		Goals:       req.Goals,
		Voice:       req.Voice,
		Backstory:   req.Backstory,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.content.CreateCharacter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// List returns all characters owned by the caller.
func (s *CharacterService) List(ctx context.Context, ownerID string) ([]model.Character, error) {
	return s.content.ListCharacters(ctx, ownerID)
}

// Get returns a character if the caller owns it; foreign or missing
// characters are indistinguishable.
func (s *CharacterService) Get(ctx context.Context, ownerID, id string) (*model.Character, error) {
	ch, err := s.content.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	if ch.OwnerID != ownerID {
		return nil, store.ErrNotFound
	}
	return ch, nil
}

// Update applies the non-nil fields of the request.
func (s *CharacterService) Update(ctx context.Context, ownerID, id string, req *model.CharacterUpdateRequest) (*model.Character, error) {
	ch, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.checkName(ctx, ownerID, *req.Name, ch.ID); err != nil {
			return nil, err
		}
		ch.Name = *req.Name
	}
	if req.Personality != nil {
		ch.Personality = *req.Personality
	}
	if req.Goals != nil {
		ch.Goals = *req.Goals
	}
	if req.Voice != nil {
		ch.Voice = *req.Voice
	}
	if req.Backstory != nil {
		ch.Backstory = *req.Backstory
	}
	ch.UpdatedAt = time.Now()
	if err := s.content.UpdateCharacter(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// checkName rejects a name already used by another character of the owner.
func (s *CharacterService) checkName(ctx context.Context, ownerID, name, excludeID string) error {
	existing, err := s.content.ListCharacters(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != excludeID && other.Name == name {
			return fmt.Errorf("%w: a character named %q already exists", ErrValidation, name)
		}
	}
	return nil
}

// Delete removes a character and unlinks it from every script of the
// owner that references it.
func (s *CharacterService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return err
	}

	scripts, err := s.content.ListScripts(ctx, ownerID)
	if err != nil {
		return err
	}
	for i := range scripts {
		sc := &scripts[i]
		kept := sc.CharacterIDs[:0]
		removed := false
		for _, charID := range sc.CharacterIDs {
			if charID == id {
				removed = true
				continue
			}
			kept = append(kept, charID)
		}
		if removed {
			sc.CharacterIDs = kept
			sc.UpdatedAt = time.Now()
			if err := s.content.UpdateScript(ctx, sc); err != nil {
				return err
			}
		}
	}

	return s.content.DeleteCharacter(ctx, ownerID, id)
}
