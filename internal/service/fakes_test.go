package service

import (
	"context"
	"sort"
	"time"

	"github.com/hibiken/asynq"

	"github.com/scriptforge/api/internal/model"
	"github.com/scriptforge/api/internal/store"
)

// memStore is an in-memory ContentStore/JobStore for service tests.
type memStore struct {
	characters map[string]model.Character
	scripts    map[string]model.Script
	versions   map[string]map[int]model.ScriptVersion
	scenes     map[string]model.Scene
	jobs       map[string]model.Job
}

func newMemStore() *memStore {
	return &memStore{
		characters: make(map[string]model.Character),
		scripts:    make(map[string]model.Script),
		versions:   make(map[string]map[int]model.ScriptVersion),
		scenes:     make(map[string]model.Scene),
		jobs:       make(map[string]model.Job),
	}
}

func (m *memStore) CreateCharacter(_ context.Context, ch *model.Character) error {
	m.characters[ch.ID] = *ch
	return nil
}

func (m *memStore) GetCharacter(_ context.Context, id string) (*model.Character, error) {
	ch, ok := m.characters[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ch, nil
}

func (m *memStore) UpdateCharacter(_ context.Context, ch *model.Character) error {
	m.characters[ch.ID] = *ch
	return nil
}

func (m *memStore) DeleteCharacter(_ context.Context, _, id string) error {
	delete(m.characters, id)
	return nil
}

func (m *memStore) ListCharacters(_ context.Context, ownerID string) ([]model.Character, error) {
	var out []model.Character
	for _, ch := range m.characters {
		if ch.OwnerID == ownerID {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CreateScript(_ context.Context, sc *model.Script) error {
	m.scripts[sc.ID] = *sc
	return nil
}

func (m *memStore) GetScript(_ context.Context, id string) (*model.Script, error) {
	sc, ok := m.scripts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sc, nil
}

func (m *memStore) UpdateScript(_ context.Context, sc *model.Script) error {
	m.scripts[sc.ID] = *sc
	return nil
}

func (m *memStore) DeleteScript(_ context.Context, _, id string) error {
	delete(m.scripts, id)
	delete(m.versions, id)
	return nil
}

func (m *memStore) ListScripts(_ context.Context, ownerID string) ([]model.Script, error) {
	var out []model.Script
	for _, sc := range m.scripts {
		if sc.OwnerID == ownerID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *memStore) AddScriptVersion(_ context.Context, scriptID, content, notes string) (*model.ScriptVersion, error) {
	byNumber := m.versions[scriptID]
	if byNumber == nil {
		byNumber = make(map[int]model.ScriptVersion)
		m.versions[scriptID] = byNumber
	}
	next := 1
	for n := range byNumber {
		if n >= next {
			next = n + 1
		}
	}
	v := model.ScriptVersion{
		ScriptID:      scriptID,
		VersionNumber: next,
		Content:       content,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	byNumber[next] = v
	return &v, nil
}

func (m *memStore) GetScriptVersion(_ context.Context, scriptID string, number int) (*model.ScriptVersion, error) {
	v, ok := m.versions[scriptID][number]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &v, nil
}

func (m *memStore) LatestScriptVersion(_ context.Context, scriptID string) (*model.ScriptVersion, error) {
	byNumber := m.versions[scriptID]
	if len(byNumber) == 0 {
		return nil, store.ErrNotFound
	}
	latest := 0
	for n := range byNumber {
		if n > latest {
			latest = n
		}
	}
	v := byNumber[latest]
	return &v, nil
}

func (m *memStore) ListScriptVersions(_ context.Context, scriptID string) ([]model.ScriptVersion, error) {
	var out []model.ScriptVersion
	for _, v := range m.versions[scriptID] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber < out[j].VersionNumber })
	return out, nil
}

func (m *memStore) CreateScene(_ context.Context, sc *model.Scene) error {
	for _, other := range m.scenes {
		if other.ScriptID == sc.ScriptID && other.ScriptVersionID == sc.ScriptVersionID && other.SceneNumber == sc.SceneNumber {
			return store.ErrSceneNumberTaken
		}
	}
	m.scenes[sc.ID] = *sc
	return nil
}

func (m *memStore) GetScene(_ context.Context, id string) (*model.Scene, error) {
	sc, ok := m.scenes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sc, nil
}

func (m *memStore) UpdateScene(_ context.Context, sc *model.Scene) error {
	m.scenes[sc.ID] = *sc
	return nil
}

func (m *memStore) ListScenes(_ context.Context, scriptID string, version int) ([]model.Scene, error) {
	var out []model.Scene
	for _, sc := range m.scenes {
		if sc.ScriptID == scriptID && sc.ScriptVersionID == version {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SceneNumber < out[j].SceneNumber })
	return out, nil
}

func (m *memStore) CreateJob(_ context.Context, j *model.Job) error {
	m.jobs[j.ID] = *j
	return nil
}

func (m *memStore) GetJob(_ context.Context, id string) (*model.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &j, nil
}

func (m *memStore) UpdateJob(_ context.Context, j *model.Job) error {
	m.jobs[j.ID] = *j
	return nil
}

func (m *memStore) DeleteJob(_ context.Context, _, id string) error {
	delete(m.jobs, id)
	return nil
}

func (m *memStore) ListJobs(_ context.Context, ownerID string) ([]model.Job, error) {
	var out []model.Job
	for _, j := range m.jobs {
		if j.OwnerID == ownerID {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeEnqueuer records enqueued tasks instead of talking to Redis.
type fakeEnqueuer struct {
	tasks []*asynq.Task
	opts  [][]asynq.Option
	err   error
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	f.opts = append(f.opts, opts)
	return &asynq.TaskInfo{}, nil
}
