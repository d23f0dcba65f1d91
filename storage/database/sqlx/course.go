package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type (
	courseRow struct {
		ID        string    `db:"id"`
		ShortName string    `db:"short_name"`
		FullName  string    `db:"full_name"`
		StartDate null.Time `db:"start_date"`
	}

	courseModuleRow struct {
		ID              string      `db:"id"`
		CourseID        string      `db:"course_id"`
		Module          string      `db:"module"`
		InstanceID      null.String `db:"instance_id"`
		Visible         bool        `db:"visible"`
		ShowDescription bool        `db:"show_description"`
		Completion      int         `db:"completion"`
		Added           null.Time   `db:"added"`
	}
)

func (repo courseRepository) packCourse(crs course.Course) courseRow {
	return courseRow{
		ID:        crs.ID,
		ShortName: crs.ShortName,
		FullName:  crs.FullName,
		StartDate: null.NewTime(crs.StartDate.UTC(), !crs.StartDate.IsZero()),
	}
}

func (repo courseRepository) unpackCourse(row courseRow) course.Course {
	return course.Course{
		ID:        row.ID,
		ShortName: row.ShortName,
		FullName:  row.FullName,
		StartDate: row.StartDate.Time,
	}
}

func (repo courseRepository) packModule(cm course.CourseModule) courseModuleRow {
	return courseModuleRow{
		ID:              cm.ID,
		CourseID:        cm.CourseID,
		Module:          cm.Module,
		InstanceID:      null.NewString(cm.InstanceID, cm.InstanceID != ""),
		Visible:         cm.Visible,
		ShowDescription: cm.ShowDescription,
		Completion:      cm.Completion,
		Added:           null.NewTime(cm.Added.UTC(), !cm.Added.IsZero()),
	}
}

func (repo courseRepository) unpackModule(row courseModuleRow) course.CourseModule {
	return course.CourseModule{
		ID:              row.ID,
		CourseID:        row.CourseID,
		Module:          row.Module,
		InstanceID:      row.InstanceID.String,
		Visible:         row.Visible,
		ShowDescription: row.ShowDescription,
		Completion:      row.Completion,
		Added:           row.Added.Time,
	}
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := repo.packCourse(crs)

	_, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		INSERT INTO course (id, short_name, full_name, start_date)
		VALUES (:id, :short_name, :full_name, :start_date)`,
		row,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return repo.unpackCourse(row), nil
}

func (repo courseRepository) GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}

	var row courseRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, "SELECT * FROM course WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course by ID")
	}
	return repo.unpackCourse(row), nil
}

func (repo courseRepository) CreateCourseModule(ctx context.Context, cm course.CourseModule, exec ...core.DBExecutor) (course.CourseModule, error) {
	cm.ID = uuid.New().String()
	row := repo.packModule(cm)

	_, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		INSERT INTO course_module (id, course_id, module, instance_id, visible, show_description, completion, added)
		VALUES (:id, :course_id, :module, :instance_id, :visible, :show_description, :completion, :added)`,
		row,
	)
	if err != nil {
		return course.CourseModule{}, errors.Wrap(err, "inserting course module")
	}
	return repo.unpackModule(row), nil
}

func (repo courseRepository) UpdateCourseModule(ctx context.Context, cm course.CourseModule, exec ...core.DBExecutor) (course.CourseModule, error) {
	row := repo.packModule(cm)

	res, err := sqlx.NamedExecContext(ctx, getExec(repo.db, exec), `
		UPDATE course_module
		SET instance_id = :instance_id, visible = :visible, show_description = :show_description, completion = :completion
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return course.CourseModule{}, errors.Wrap(err, "updating course module")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return course.CourseModule{}, course.ErrModuleNotFound
	}
	return repo.unpackModule(row), nil
}

func (repo courseRepository) GetCourseModuleByID(ctx context.Context, id string, exec ...core.DBExecutor) (course.CourseModule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.CourseModule{}, course.ErrModuleNotFound
	}

	var row courseModuleRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row, "SELECT * FROM course_module WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.CourseModule{}, course.ErrModuleNotFound
		}
		return course.CourseModule{}, errors.Wrap(err, "finding course module by ID")
	}
	return repo.unpackModule(row), nil
}

func (repo courseRepository) GetCourseModuleByInstance(ctx context.Context, module, instanceID string, exec ...core.DBExecutor) (course.CourseModule, error) {
	if _, err := uuid.Parse(instanceID); err != nil {
		return course.CourseModule{}, course.ErrModuleNotFound
	}

	var row courseModuleRow
	err := sqlx.GetContext(ctx, getExec(repo.db, exec), &row,
		"SELECT * FROM course_module WHERE module = $1 AND instance_id = $2", module, instanceID)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.CourseModule{}, course.ErrModuleNotFound
		}
		return course.CourseModule{}, errors.Wrap(err, "finding course module by instance")
	}
	return repo.unpackModule(row), nil
}
