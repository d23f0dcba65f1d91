package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

type instanceRepository struct {
	db *instanceTable
}

var _ msteams.Repository = (*instanceRepository)(nil)

func NewInstanceRepository(db *DB) *instanceRepository {
	return &instanceRepository{db: db.instance}
}

func (repo *instanceRepository) CreateInstance(ctx context.Context, inst msteams.Instance, _ ...core.DBExecutor) (msteams.Instance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst.ID = uuid.New().String()
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *instanceRepository) GetInstanceByID(ctx context.Context, id string, _ ...core.DBExecutor) (msteams.Instance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return msteams.Instance{}, msteams.ErrNotFound
}

func (repo *instanceRepository) GetInstanceByCourseModule(ctx context.Context, cmID string, _ ...core.DBExecutor) (msteams.Instance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, inst := range repo.db.table {
		if inst.CourseModuleID == cmID {
			return *inst, nil
		}
	}
	return msteams.Instance{}, msteams.ErrNotFound
}

func (repo *instanceRepository) QueryCourseInstances(ctx context.Context, courseID string, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]msteams.Instance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	instances := make([]msteams.Instance, 0)
	for _, inst := range repo.db.table {
		if inst.CourseID == courseID {
			instances = append(instances, *inst)
		}
	}
	// name ordering only; enough for tests
	sort.Slice(instances, func(i, j int) bool { return instances[i].Name < instances[j].Name })
	return instances, nil
}

func (repo *instanceRepository) UpdateInstance(ctx context.Context, inst msteams.Instance, _ ...core.DBExecutor) (msteams.Instance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.table[inst.ID]
	if !ok {
		return msteams.Instance{}, msteams.ErrNotFound
	}
	orig.Name = inst.Name
	orig.Intro = inst.Intro
	orig.IntroFormat = inst.IntroFormat
	orig.ExternalURL = inst.ExternalURL
	orig.CompletionExpected = inst.CompletionExpected
	orig.TimeModified = inst.TimeModified
	return *orig, nil
}

func (repo *instanceRepository) DeleteInstancesByID(ctx context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			cnt++
		}
	}
	return cnt, nil
}
