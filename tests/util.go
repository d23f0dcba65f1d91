package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

// NopLogger discards everything. Fatal panics so tests fail loudly.
type NopLogger struct{}

var _ core.Logger = (*NopLogger)(nil)

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}

func (NopLogger) Fatal(msg string, _ ...interface{}) { panic(msg) }

func CreateCourse(
	t *testing.T,
	repo course.Repository,
	shortName, fullName string,
	startDate ...time.Time,
) course.Course {
	t.Helper()

	start := time.Now().UTC()
	if len(startDate) > 0 {
		start = startDate[0].UTC()
	}
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		ShortName: shortName,
		FullName:  fullName,
		StartDate: start,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateCourseModule(
	t *testing.T,
	repo course.Repository,
	courseID string,
	completion int,
	visible, showDescription bool,
) course.CourseModule {
	t.Helper()

	cm, err := repo.CreateCourseModule(context.Background(), course.CourseModule{
		CourseID:        courseID,
		Module:          msteams.ModuleName,
		Visible:         visible,
		ShowDescription: showDescription,
		Completion:      completion,
		Added:           time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourseModule() failed: %v", err)
	}
	return cm
}

func CreateInstance(
	t *testing.T,
	svc *msteams.Service,
	courseID, cmID, name, extURL string,
	completionExpected ...time.Time,
) msteams.Instance {
	t.Helper()

	ni := msteams.NewInstance{
		CourseID:       courseID,
		CourseModuleID: cmID,
		Name:           name,
		ExternalURL:    extURL,
	}
	if len(completionExpected) > 0 {
		ni.CompletionExpected = completionExpected[0].UTC()
	}
	inst, err := svc.AddInstance(context.Background(), ni)
	if err != nil {
		t.Fatalf("CreateInstance() failed: %v", err)
	}
	return inst
}
