package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scriptforge/api/internal/model"
)

// maxVersionRetries bounds the optimistic-transaction retry loop for
// per-script version allocation.
const maxVersionRetries = 5

// RedisStore implements ContentStore and JobStore on Redis. Rows are JSON
// blobs under typed keys; per-owner sets act as secondary indexes.
type RedisStore struct {
	redis *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{redis: redisClient}
}

// Key layout
func keyCharacter(id string) string { return fmt.Sprintf("character:%s", id) }

func keyUserCharacters(owner string) string { return fmt.Sprintf("user:%s:characters", owner) }

func keyScript(id string) string { return fmt.Sprintf("script:%s", id) }

func keyUserScripts(owner string) string { return fmt.Sprintf("user:%s:scripts", owner) }

func keyScriptLatest(scriptID string) string { return fmt.Sprintf("script:%s:latest", scriptID) }

func keyVersion(scriptID string, n int) string {
	return fmt.Sprintf("version:%s:%d", scriptID, n)
}

func keyVersionScenes(scriptID string, n int) string {
	return fmt.Sprintf("version:%s:%d:scenes", scriptID, n)
}

func keyVersionSceneNumbers(scriptID string, n int) string {
	return fmt.Sprintf("version:%s:%d:scene_numbers", scriptID, n)
}

func keyScene(id string) string { return fmt.Sprintf("scene:%s", id) }

func keyJob(id string) string { return fmt.Sprintf("job:%s", id) }

func keyUserJobs(owner string) string { return fmt.Sprintf("user:%s:jobs", owner) }

func (s *RedisStore) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, 0).Err()
}

func (s *RedisStore) getJSON(ctx context.Context, key string, v interface{}) error {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// Characters

func (s *RedisStore) CreateCharacter(ctx context.Context, ch *model.Character) error {
	if err := s.setJSON(ctx, keyCharacter(ch.ID), ch); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, keyUserCharacters(ch.OwnerID), ch.ID).Err()
}

func (s *RedisStore) GetCharacter(ctx context.Context, id string) (*model.Character, error) {
	var ch model.Character
	if err := s.getJSON(ctx, keyCharacter(id), &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *RedisStore) UpdateCharacter(ctx context.Context, ch *model.Character) error {
	return s.setJSON(ctx, keyCharacter(ch.ID), ch)
}

func (s *RedisStore) DeleteCharacter(ctx context.Context, ownerID, id string) error {
	if err := s.redis.Del(ctx, keyCharacter(id)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, keyUserCharacters(ownerID), id).Err()
}

func (s *RedisStore) ListCharacters(ctx context.Context, ownerID string) ([]model.Character, error) {
	ids, err := s.redis.SMembers(ctx, keyUserCharacters(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	characters := make([]model.Character, 0, len(ids))
	for _, id := range ids {
		ch, err := s.GetCharacter(ctx, id)
		if err == ErrNotFound {
			continue // index entry outlived the row
		}
		if err != nil {
			return nil, err
		}
		characters = append(characters, *ch)
	}
	sort.Slice(characters, func(i, j int) bool {
		return characters[i].CreatedAt.Before(characters[j].CreatedAt)
	})
	return characters, nil
}

// Scripts

func (s *RedisStore) CreateScript(ctx context.Context, sc *model.Script) error {
	if err := s.setJSON(ctx, keyScript(sc.ID), sc); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, keyUserScripts(sc.OwnerID), sc.ID).Err()
}

func (s *RedisStore) GetScript(ctx context.Context, id string) (*model.Script, error) {
	var sc model.Script
	if err := s.getJSON(ctx, keyScript(id), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *RedisStore) UpdateScript(ctx context.Context, sc *model.Script) error {
	return s.setJSON(ctx, keyScript(sc.ID), sc)
}

func (s *RedisStore) DeleteScript(ctx context.Context, ownerID, id string) error {
	latest, err := s.redis.Get(ctx, keyScriptLatest(id)).Int()
	if err != nil && err != redis.Nil {
		return err
	}
	for n := 1; n <= latest; n++ {
		sceneIDs, err := s.redis.SMembers(ctx, keyVersionScenes(id, n)).Result()
		if err != nil {
			return err
		}
		for _, sceneID := range sceneIDs {
			if err := s.redis.Del(ctx, keyScene(sceneID)).Err(); err != nil {
				return err
			}
		}
		if err := s.redis.Del(ctx, keyVersionScenes(id, n), keyVersionSceneNumbers(id, n), keyVersion(id, n)).Err(); err != nil {
			return err
		}
	}
	if err := s.redis.Del(ctx, keyScriptLatest(id), keyScript(id)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, keyUserScripts(ownerID), id).Err()
}

func (s *RedisStore) ListScripts(ctx context.Context, ownerID string) ([]model.Script, error) {
	ids, err := s.redis.SMembers(ctx, keyUserScripts(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	scripts := make([]model.Script, 0, len(ids))
	for _, id := range ids {
		sc, err := s.GetScript(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, *sc)
	}
	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].UpdatedAt.After(scripts[j].UpdatedAt)
	})
	return scripts, nil
}

// Versions

// AddScriptVersion allocates latest+1 inside a WATCH transaction so that
// two concurrent writers for the same script can never take the same
// number: the loser's MULTI/EXEC aborts and the read-then-write is retried.
func (s *RedisStore) AddScriptVersion(ctx context.Context, scriptID, content, notes string) (*model.ScriptVersion, error) {
	latestKey := keyScriptLatest(scriptID)
	var created *model.ScriptVersion

	txf := func(tx *redis.Tx) error {
		latest, err := tx.Get(ctx, latestKey).Int()
		if err != nil && err != redis.Nil {
			return err
		}
		version := &model.ScriptVersion{
			ScriptID:      scriptID,
			VersionNumber: latest + 1,
			Content:       content,
			Notes:         notes,
			CreatedAt:     time.Now(),
		}
		data, err := json.Marshal(version)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, keyVersion(scriptID, version.VersionNumber), data, 0)
			pipe.Set(ctx, latestKey, version.VersionNumber, 0)
			return nil
		})
		if err == nil {
			created = version
		}
		return err
	}

	for i := 0; i < maxVersionRetries; i++ {
		err := s.redis.Watch(ctx, txf, latestKey)
		if err == nil {
			return created, nil
		}
		if err == redis.TxFailedErr {
			continue
		}
		return nil, err
	}
	return nil, ErrVersionConflict
}

func (s *RedisStore) GetScriptVersion(ctx context.Context, scriptID string, number int) (*model.ScriptVersion, error) {
	var v model.ScriptVersion
	if err := s.getJSON(ctx, keyVersion(scriptID, number), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *RedisStore) LatestScriptVersion(ctx context.Context, scriptID string) (*model.ScriptVersion, error) {
	latest, err := s.redis.Get(ctx, keyScriptLatest(scriptID)).Int()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.GetScriptVersion(ctx, scriptID, latest)
}

func (s *RedisStore) ListScriptVersions(ctx context.Context, scriptID string) ([]model.ScriptVersion, error) {
	latest, err := s.redis.Get(ctx, keyScriptLatest(scriptID)).Int()
	if err != nil {
		if err == redis.Nil {
			return []model.ScriptVersion{}, nil
		}
		return nil, err
	}
	versions := make([]model.ScriptVersion, 0, latest)
	for n := 1; n <= latest; n++ {
		v, err := s.GetScriptVersion(ctx, scriptID, n)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, nil
}

// Scenes

// CreateScene claims the scene number atomically via SADD before writing
// the row, so two concurrent creates for the same slot cannot both succeed.
func (s *RedisStore) CreateScene(ctx context.Context, sc *model.Scene) error {
	added, err := s.redis.SAdd(ctx, keyVersionSceneNumbers(sc.ScriptID, sc.ScriptVersionID), sc.SceneNumber).Result()
	if err != nil {
		return err
	}
	if added == 0 {
		return ErrSceneNumberTaken
	}
	if err := s.setJSON(ctx, keyScene(sc.ID), sc); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, keyVersionScenes(sc.ScriptID, sc.ScriptVersionID), sc.ID).Err()
}

func (s *RedisStore) GetScene(ctx context.Context, id string) (*model.Scene, error) {
	var sc model.Scene
	if err := s.getJSON(ctx, keyScene(id), &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (s *RedisStore) UpdateScene(ctx context.Context, sc *model.Scene) error {
	return s.setJSON(ctx, keyScene(sc.ID), sc)
}

func (s *RedisStore) ListScenes(ctx context.Context, scriptID string, version int) ([]model.Scene, error) {
	ids, err := s.redis.SMembers(ctx, keyVersionScenes(scriptID, version)).Result()
	if err != nil {
		return nil, err
	}
	scenes := make([]model.Scene, 0, len(ids))
	for _, id := range ids {
		sc, err := s.GetScene(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, *sc)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].SceneNumber < scenes[j].SceneNumber
	})
	return scenes, nil
}

// Jobs

func (s *RedisStore) CreateJob(ctx context.Context, j *model.Job) error {
	if err := s.setJSON(ctx, keyJob(j.ID), j); err != nil {
		return err
	}
	return s.redis.SAdd(ctx, keyUserJobs(j.OwnerID), j.ID).Err()
}

func (s *RedisStore) GetJob(ctx context.Context, id string) (*model.Job, error) {
	var j model.Job
	if err := s.getJSON(ctx, keyJob(id), &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *RedisStore) UpdateJob(ctx context.Context, j *model.Job) error {
	return s.setJSON(ctx, keyJob(j.ID), j)
}

func (s *RedisStore) DeleteJob(ctx context.Context, ownerID, id string) error {
	if err := s.redis.Del(ctx, keyJob(id)).Err(); err != nil {
		return err
	}
	return s.redis.SRem(ctx, keyUserJobs(ownerID), id).Err()
}

func (s *RedisStore) ListJobs(ctx context.Context, ownerID string) ([]model.Job, error) {
	ids, err := s.redis.SMembers(ctx, keyUserJobs(ownerID)).Result()
	if err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0, len(ids))
	for _, id := range ids {
		j, err := s.GetJob(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}
