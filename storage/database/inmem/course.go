package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string, _ ...core.DBExecutor) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateCourseModule(ctx context.Context, cm course.CourseModule, _ ...core.DBExecutor) (course.CourseModule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cm.ID = uuid.New().String()
	repo.db.modules[cm.ID] = &cm
	return cm, nil
}

func (repo *courseRepository) UpdateCourseModule(ctx context.Context, cm course.CourseModule, _ ...core.DBExecutor) (course.CourseModule, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.modules[cm.ID]
	if !ok {
		return course.CourseModule{}, course.ErrModuleNotFound
	}
	orig.InstanceID = cm.InstanceID
	orig.Visible = cm.Visible
	orig.ShowDescription = cm.ShowDescription
	orig.Completion = cm.Completion
	return *orig, nil
}

func (repo *courseRepository) GetCourseModuleByID(ctx context.Context, id string, _ ...core.DBExecutor) (course.CourseModule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cm, ok := repo.db.modules[id]; ok {
		return *cm, nil
	}
	return course.CourseModule{}, course.ErrModuleNotFound
}

func (repo *courseRepository) GetCourseModuleByInstance(ctx context.Context, module, instanceID string, _ ...core.DBExecutor) (course.CourseModule, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, cm := range repo.db.modules {
		if cm.Module == module && cm.InstanceID == instanceID {
			return *cm, nil
		}
	}
	return course.CourseModule{}, course.ErrModuleNotFound
}
