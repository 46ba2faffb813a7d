package model

import "time"

// Script is a screenplay project. Its full text lives in numbered,
// append-only ScriptVersions; the script row itself only carries metadata
// and the set of linked characters.
type Script struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Title        string    `json:"title"`
	Genre        Genre     `json:"genre"`
	Tone         Tone      `json:"tone"`
	Logline      string    `json:"logline,omitempty"`
	CharacterIDs []string  `json:"characterIds"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ScriptVersion is an immutable numbered snapshot of a script's full text.
// Version numbers start at 1 and are allocated gaplessly per script.
type ScriptVersion struct {
	ScriptID      string    `json:"scriptId"`
	VersionNumber int       `json:"versionNumber"`
	Content       string    `json:"content"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Scene is a mutable beat inside a ScriptVersion. Unlike versions, scene
// content is overwritten in place by regeneration.
type Scene struct {
	ID              string    `json:"id"`
	ScriptID        string    `json:"scriptId"`
	ScriptVersionID int       `json:"scriptVersion"` // version number within ScriptID
	SceneNumber     int       `json:"sceneNumber"`
	Setting         string    `json:"setting,omitempty"`
	Goal            string    `json:"goal,omitempty"`
	Tension         string    `json:"tension,omitempty"`
	Tone            Tone      `json:"tone,omitempty"` // optional override of the script tone
	Content         string    `json:"content,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ScriptCreateRequest represents the request body for creating a script
type ScriptCreateRequest struct {
	Title        string   `json:"title" validate:"required,min=1,max=200"`
	Genre        Genre    `json:"genre" validate:"required,oneof=drama comedy thriller horror scifi fantasy action romance mystery western"`
	Tone         Tone     `json:"tone" validate:"required,oneof=serious lighthearted dark comedic suspenseful gritty whimsical romantic"`
	Logline      string   `json:"logline" validate:"omitempty,max=1000"`
	CharacterIDs []string `json:"characterIds" validate:"omitempty,dive,uuid4"`
}

// ScriptUpdateRequest represents the request body for updating a script
type ScriptUpdateRequest struct {
	Title        *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Genre        *Genre    `json:"genre" validate:"omitempty,oneof=drama comedy thriller horror scifi fantasy action romance mystery western"`
	Tone         *Tone     `json:"tone" validate:"omitempty,oneof=serious lighthearted dark comedic suspenseful gritty whimsical romantic"`
	Logline      *string   `json:"logline" validate:"omitempty,max=1000"`
	CharacterIDs *[]string `json:"characterIds" validate:"omitempty,dive,uuid4"`
}

// SceneCreateRequest represents the request body for adding a scene to a version
type SceneCreateRequest struct {
	SceneNumber int    `json:"sceneNumber" validate:"required,min=1"`
	Setting     string `json:"setting" validate:"omitempty,max=500"`
	Goal        string `json:"goal" validate:"omitempty,max=1000"`
	Tension     string `json:"tension" validate:"omitempty,max=1000"`
	Tone        Tone   `json:"tone" validate:"omitempty,oneof=serious lighthearted dark comedic suspenseful gritty whimsical romantic"`
	Content     string `json:"content" validate:"omitempty"`
}

// SceneUpdateRequest represents the request body for updating scene metadata
type SceneUpdateRequest struct {
	Setting *string `json:"setting" validate:"omitempty,max=500"`
	Goal    *string `json:"goal" validate:"omitempty,max=1000"`
	Tension *string `json:"tension" validate:"omitempty,max=1000"`
	Tone    *Tone   `json:"tone" validate:"omitempty,oneof=serious lighthearted dark comedic suspenseful gritty whimsical romantic"`
	Content *string `json:"content" validate:"omitempty"`
}

// ScriptDetailResponse is a script with its latest version resolved.
type ScriptDetailResponse struct {
	Script        Script         `json:"script"`
	Characters    []Character    `json:"characters"`
	LatestVersion *ScriptVersion `json:"latestVersion,omitempty"`
}

// VersionDetailResponse is a version with its scenes resolved.
type VersionDetailResponse struct {
	Version ScriptVersion `json:"version"`
	Scenes  []Scene       `json:"scenes"`
}
