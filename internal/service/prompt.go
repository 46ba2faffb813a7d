package service

import (
	"fmt"
	"strings"

	"github.com/scriptforge/api/internal/model"
)

const rolePreamble = `You are an expert screenwriter and script consultant with deep knowledge of storytelling,
character development, and screenplay formatting. You understand the principles of dramatic structure,
including the three-act structure, character arcs, and compelling dialogue.`

// BuildSystemPrompt composes the system instruction for a generation call:
// role preamble, genre/tone context, one block per character, and exactly
// one format-instruction block selected by script type.
func BuildSystemPrompt(scriptType model.ScriptType, genre, tone string, characters []model.Character) string {
	var b strings.Builder
	b.WriteString(rolePreamble)

	if genre != "" {
		fmt.Fprintf(&b, "\n\nThis is a %s script.", genre)
	}
	if tone != "" {
		fmt.Fprintf(&b, " The tone should be %s.", tone)
	}

	if len(characters) > 0 {
		b.WriteString("\n\nCHARACTERS IN THIS SCRIPT:\n")
		for _, ch := range characters {
			fmt.Fprintf(&b, "\n%s:", ch.Name)
			if ch.Personality != "" {
				fmt.Fprintf(&b, "\n  Personality: %s", ch.Personality)
			}
			if ch.Goals != "" {
				fmt.Fprintf(&b, "\n  Goals: %s", ch.Goals)
			}
			if ch.Voice != "" {
				fmt.Fprintf(&b, "\n  Voice: %s", ch.Voice)
			}
			if ch.Backstory != "" {
				fmt.Fprintf(&b, "\n  Backstory: %s", ch.Backstory)
			}
		}
	}

	b.WriteString(formatInstructions(scriptType))
	return b.String()
}

// formatInstructions returns the format block for the given script type.
// The switch is exhaustive over model.ValidScriptTypes; unknown values fall
// back to the outline block, matching the original behavior.
func formatInstructions(scriptType model.ScriptType) string {
	switch scriptType {
	case model.ScriptTypeScreenplay:
		return screenplayInstructions
	case model.ScriptTypeTreatment:
		return treatmentInstructions
	case model.ScriptTypeScene:
		return sceneInstructions
	case model.ScriptTypeOutline:
		return outlineInstructions
	default:
		return outlineInstructions
	}
}

const screenplayInstructions = `

SCREENPLAY FORMAT RULES:
1. Use proper screenplay formatting with scene headings, action lines, character names, and dialogue
2. Scene headings: INT./EXT. LOCATION - TIME OF DAY (e.g., INT. COFFEE SHOP - DAY)
3. Action lines: Present tense, active voice, describing what we see and hear
4. Character names: ALL CAPS when they first appear and above dialogue
5. Dialogue: Character name centered, dialogue below
6. Parentheticals: Brief direction for how a line should be delivered
7. Transitions: FADE IN:, CUT TO:, FADE OUT: (use sparingly)

STORYTELLING PRINCIPLES:
- Strong opening hook that establishes the world and protagonist
- Clear character motivations and goals
- Rising tension and conflict
- Well-paced scenes with purpose
- Subtext in dialogue - show don't tell
- Visual storytelling over exposition
- Satisfying character arcs
- Three-act structure: Setup, Confrontation, Resolution

Generate professional, properly formatted screenplay content. Focus on vivid visual storytelling,
authentic dialogue, and compelling character development.`

const treatmentInstructions = `

TREATMENT FORMAT:
- Write in present tense, third person
- Describe the story chronologically from beginning to end
- Include major plot points, character arcs, and turning points
- Paint a vivid picture of the story world
- Convey the tone and style of the piece
- No dialogue, just narrative description
- 3-5 pages for a short treatment, 10-30 for a full treatment

Focus on compelling story structure and emotional journey.`

const sceneInstructions = `

SCENE GENERATION:
- Write a complete, well-structured scene
- Include proper scene heading
- Clear visual action and character behavior
- Authentic dialogue with subtext
- Scene should have a clear beginning, middle, and end
- Advance the plot or develop character
- Maintain consistent tone and pacing`

const outlineInstructions = `

OUTLINE FORMAT:
- Organized by acts and sequences
- Clear beat sheet of major story moments
- Character introductions and arc progressions
- Key plot points and turning points
- Theme development
- Conflict escalation

Structure:
ACT ONE: Setup
- Opening Image
- Inciting Incident
- First Plot Point

ACT TWO: Confrontation
- Rising Action
- Midpoint
- Complications
- Crisis

ACT THREE: Resolution
- Climax
- Falling Action
- Resolution
- Closing Image

Provide a comprehensive story outline with dramatic beats.`

// BuildSceneContext renders the scene metadata block prepended to the user
// prompt when regenerating a scene.
func BuildSceneContext(scene *model.Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scene %d:\n", scene.SceneNumber)
	fmt.Fprintf(&b, "Setting: %s\n", scene.Setting)
	fmt.Fprintf(&b, "Goal: %s\n", scene.Goal)
	fmt.Fprintf(&b, "Tension: %s\n", scene.Tension)
	if scene.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", scene.Tone.Label())
	}
	return b.String()
}
