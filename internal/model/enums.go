package model

// Genre types
type Genre string

const (
	GenreDrama    Genre = "drama"
	GenreComedy   Genre = "comedy"
	GenreThriller Genre = "thriller"
	GenreHorror   Genre = "horror"
	GenreSciFi    Genre = "scifi"
	GenreFantasy  Genre = "fantasy"
	GenreAction   Genre = "action"
	GenreRomance  Genre = "romance"
	GenreMystery  Genre = "mystery"
	GenreWestern  Genre = "western"
)

var ValidGenres = []Genre{
	GenreDrama, GenreComedy, GenreThriller, GenreHorror, GenreSciFi,
	GenreFantasy, GenreAction, GenreRomance, GenreMystery, GenreWestern,
}

var genreLabels = map[Genre]string{
	GenreDrama:    "Drama",
	GenreComedy:   "Comedy",
	GenreThriller: "Thriller",
	GenreHorror:   "Horror",
	GenreSciFi:    "Science Fiction",
	GenreFantasy:  "Fantasy",
	GenreAction:   "Action",
	GenreRomance:  "Romance",
	GenreMystery:  "Mystery",
	GenreWestern:  "Western",
}

// Label returns the human-readable name used in generation prompts.
func (g Genre) Label() string {
	if label, ok := genreLabels[g]; ok {
		return label
	}
	return string(g)
}

// Tone types
type Tone string

const (
	ToneSerious      Tone = "serious"
	ToneLighthearted Tone = "lighthearted"
	ToneDark         Tone = "dark"
	ToneComedic      Tone = "comedic"
	ToneSuspenseful  Tone = "suspenseful"
	ToneGritty       Tone = "gritty"
	ToneWhimsical    Tone = "whimsical"
	ToneRomantic     Tone = "romantic"
)

var ValidTones = []Tone{
	ToneSerious, ToneLighthearted, ToneDark, ToneComedic,
	ToneSuspenseful, ToneGritty, ToneWhimsical, ToneRomantic,
}

var toneLabels = map[Tone]string{
	ToneSerious:      "serious and grounded",
	ToneLighthearted: "lighthearted",
	ToneDark:         "dark and brooding",
	ToneComedic:      "comedic",
	ToneSuspenseful:  "suspenseful",
	ToneGritty:       "gritty and realistic",
	ToneWhimsical:    "whimsical",
	ToneRomantic:     "romantic",
}

// Label returns the human-readable description used in generation prompts.
func (t Tone) Label() string {
	if label, ok := toneLabels[t]; ok {
		return label
	}
	return string(t)
}

// Script output formats
type ScriptType string

const (
	ScriptTypeScreenplay ScriptType = "screenplay"
	ScriptTypeTreatment  ScriptType = "treatment"
	ScriptTypeScene      ScriptType = "scene"
	ScriptTypeOutline    ScriptType = "outline"
)

var ValidScriptTypes = []ScriptType{
	ScriptTypeScreenplay, ScriptTypeTreatment, ScriptTypeScene, ScriptTypeOutline,
}

// Job types
type JobType string

const (
	JobTypeScriptGeneration JobType = "script_generation"
	JobTypeSceneGeneration  JobType = "scene_generation"
	JobTypeScriptRefinement JobType = "script_refinement"
)

var ValidJobTypes = []JobType{
	JobTypeScriptGeneration, JobTypeSceneGeneration, JobTypeScriptRefinement,
}

// Job status
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether no further transition may leave the status.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
