package service

import (
	"context"
	"errors"
	"testing"

	"github.com/scriptforge/api/internal/model"
)

func TestCharacterCreate_DuplicateNameRejected(t *testing.T) {
	m := newMemStore()
	svc := NewCharacterService(m)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Mira"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Mira"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for duplicate name, got %v", err)
	}

	list, _ := svc.List(ctx, testOwner)
	if len(list) != 1 {
		t.Errorf("expected 1 character after rejected duplicate, got %d", len(list))
	}
}

func TestCharacterCreate_SameNameDifferentOwner(t *testing.T) {
	m := newMemStore()
	svc := NewCharacterService(m)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Mira"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Names are only unique within one owner's library.
	if _, err := svc.Create(ctx, "user-2", &model.CharacterCreateRequest{Name: "Mira"}); err != nil {
		t.Errorf("same name under another owner should be allowed, got %v", err)
	}
}

func TestCharacterUpdate_RenameToExistingRejected(t *testing.T) {
	m := newMemStore()
	svc := NewCharacterService(m)
	ctx := context.Background()

	if _, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Mira"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	jonah, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Jonah"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	name := "Mira"
	_, err = svc.Update(ctx, testOwner, jonah.ID, &model.CharacterUpdateRequest{Name: &name})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for rename onto existing name, got %v", err)
	}

	got, _ := svc.Get(ctx, testOwner, jonah.ID)
	if got.Name != "Jonah" {
		t.Errorf("rejected rename must not be applied, got %s", got.Name)
	}
}

func TestCharacterUpdate_KeepOwnName(t *testing.T) {
	m := newMemStore()
	svc := NewCharacterService(m)
	ctx := context.Background()

	mira, err := svc.Create(ctx, testOwner, &model.CharacterCreateRequest{Name: "Mira"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Re-sending the current name alongside other fields is not a conflict.
	name := "Mira"
	personality := "guarded"
	updated, err := svc.Update(ctx, testOwner, mira.ID, &model.CharacterUpdateRequest{
		Name:        &name,
		Personality: &personality,
	})
	if err != nil {
		t.Fatalf("update with unchanged name failed: %v", err)
	}
	if updated.Personality != "guarded" {
		t.Errorf("expected updated personality, got %s", updated.Personality)
	}
}
