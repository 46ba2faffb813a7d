package service

import (
	"strings"
	"testing"

	"github.com/scriptforge/api/internal/model"
)

func TestBuildSystemPrompt_GenreAndTone(t *testing.T) {
	prompt := BuildSystemPrompt(model.ScriptTypeScreenplay, "Drama", "Dark", nil)

	if !strings.Contains(prompt, "This is a Drama script.") {
		t.Error("expected genre sentence in prompt")
	}
	if !strings.Contains(prompt, "The tone should be Dark.") {
		t.Error("expected tone sentence in prompt")
	}
	if !strings.HasPrefix(prompt, "You are an expert screenwriter") {
		t.Error("expected role preamble at the start")
	}
}

func TestBuildSystemPrompt_OmitsEmptyGenreAndTone(t *testing.T) {
	prompt := BuildSystemPrompt(model.ScriptTypeScreenplay, "", "", nil)

	if strings.Contains(prompt, "This is a") {
		t.Error("genre sentence should be omitted when genre is empty")
	}
	if strings.Contains(prompt, "The tone should be") {
		t.Error("tone sentence should be omitted when tone is empty")
	}
}

func TestBuildSystemPrompt_CharacterBlocks(t *testing.T) {
	characters := []model.Character{
		{
			Name:        "MIRA",
			Personality: "guarded, quick-witted",
			Goals:       "find her missing brother",
			Voice:       "clipped sentences",
			Backstory:   "grew up in foster care",
		},
		{
			Name: "JONAH",
			// only a name; no attribute lines expected
		},
	}

	prompt := BuildSystemPrompt(model.ScriptTypeScreenplay, "Thriller", "Suspenseful", characters)

	if !strings.Contains(prompt, "CHARACTERS IN THIS SCRIPT:") {
		t.Fatal("expected characters section header")
	}
	if !strings.Contains(prompt, "MIRA:") {
		t.Error("expected MIRA block")
	}
	if !strings.Contains(prompt, "Personality: guarded, quick-witted") {
		t.Error("expected personality line")
	}
	if !strings.Contains(prompt, "Goals: find her missing brother") {
		t.Error("expected goals line")
	}
	if !strings.Contains(prompt, "Voice: clipped sentences") {
		t.Error("expected voice line")
	}
	if !strings.Contains(prompt, "Backstory: grew up in foster care") {
		t.Error("expected backstory line")
	}

	// JONAH has no attributes; the block is just the name
	jonahIdx := strings.Index(prompt, "JONAH:")
	if jonahIdx == -1 {
		t.Fatal("expected JONAH block")
	}
	after := prompt[jonahIdx:]
	if formatIdx := strings.Index(after, "SCREENPLAY FORMAT RULES"); formatIdx != -1 {
		between := after[:formatIdx]
		for _, attr := range []string{"Personality:", "Goals:", "Voice:", "Backstory:"} {
			if strings.Contains(between, attr) {
				t.Errorf("empty attribute %q should be skipped for JONAH", attr)
			}
		}
	}
}

func TestBuildSystemPrompt_NoCharacterSectionWhenEmpty(t *testing.T) {
	prompt := BuildSystemPrompt(model.ScriptTypeOutline, "Comedy", "Humorous", nil)
	if strings.Contains(prompt, "CHARACTERS IN THIS SCRIPT:") {
		t.Error("characters section should be omitted when no characters are linked")
	}
}

func TestBuildSystemPrompt_ExactlyOneFormatBlock(t *testing.T) {
	markers := map[model.ScriptType]string{
		model.ScriptTypeScreenplay: "SCREENPLAY FORMAT RULES:",
		model.ScriptTypeTreatment:  "TREATMENT FORMAT:",
		model.ScriptTypeScene:      "SCENE GENERATION:",
		model.ScriptTypeOutline:    "OUTLINE FORMAT:",
	}

	for scriptType, marker := range markers {
		prompt := BuildSystemPrompt(scriptType, "Drama", "Serious", nil)
		if !strings.Contains(prompt, marker) {
			t.Errorf("%s: expected marker %q", scriptType, marker)
		}
		for other, otherMarker := range markers {
			if other == scriptType {
				continue
			}
			if strings.Contains(prompt, otherMarker) {
				t.Errorf("%s: prompt must not contain %s block", scriptType, other)
			}
		}
	}
}

func TestBuildSystemPrompt_UnknownTypeFallsBackToOutline(t *testing.T) {
	prompt := BuildSystemPrompt(model.ScriptType("sitcom"), "Comedy", "Humorous", nil)
	if !strings.Contains(prompt, "OUTLINE FORMAT:") {
		t.Error("unknown script type should fall back to the outline block")
	}
}

func TestBuildSceneContext(t *testing.T) {
	scene := &model.Scene{
		SceneNumber: 3,
		Setting:     "rooftop at dusk",
		Goal:        "confession interrupted",
		Tension:     "sirens approaching",
		Tone:        model.ToneSuspenseful,
	}

	ctx := BuildSceneContext(scene)

	if !strings.HasPrefix(ctx, "Scene 3:\n") {
		t.Errorf("expected scene number header, got %q", ctx)
	}
	for _, want := range []string{
		"Setting: rooftop at dusk",
		"Goal: confession interrupted",
		"Tension: sirens approaching",
		"Tone: suspenseful",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("expected %q in scene context", want)
		}
	}
}

func TestBuildSceneContext_NoToneOverride(t *testing.T) {
	scene := &model.Scene{
		SceneNumber: 1,
		Setting:     "kitchen",
		Goal:        "breakfast argument",
		Tension:     "unpaid bills",
	}

	ctx := BuildSceneContext(scene)
	if strings.Contains(ctx, "Tone:") {
		t.Error("tone line should be omitted when the scene has no override")
	}
}
