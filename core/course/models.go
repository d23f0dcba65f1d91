package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
)

var (
	// errors
	ErrNotFound       = errors.New("course not found")
	ErrModuleNotFound = errors.New("course module not found")
)

// Completion tracking modes on a course-module.
const (
	TrackingNone      = 0 // completion is not tracked for this module
	TrackingManual    = 1 // the learner ticks the box themselves
	TrackingAutomatic = 2 // the host marks completion on conditions (eg. view)
)

type Course struct {
	ID        string    `json:"id"`
	ShortName string    `json:"short_name"`
	FullName  string    `json:"full_name"`
	StartDate time.Time `json:"start_date"` // UTC
}

// CourseModule is the host's generic wrapper associating one activity
// instance with a position in a course.
type CourseModule struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	Module          string    `json:"module"` // activity module type, eg. "msteams"
	InstanceID      string    `json:"instance_id"`
	Visible         bool      `json:"visible"`
	ShowDescription bool      `json:"show_description"`
	Completion      int       `json:"completion"` // one of the Tracking* modes
	Added           time.Time `json:"added"`      // UTC
}

// ModuleInfo is the course-listing metadata a module hands back to the host
// for rendering one entry in the course page.
type ModuleInfo struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	OnClick string `json:"onclick,omitempty"`
	Content string `json:"content,omitempty"`
}

type Repository interface {
	CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
	GetCourseByID(ctx context.Context, id string, exec ...core.DBExecutor) (Course, error)
	CreateCourseModule(ctx context.Context, cm CourseModule, exec ...core.DBExecutor) (CourseModule, error)
	UpdateCourseModule(ctx context.Context, cm CourseModule, exec ...core.DBExecutor) (CourseModule, error)
	GetCourseModuleByID(ctx context.Context, id string, exec ...core.DBExecutor) (CourseModule, error)
	// GetCourseModuleByInstance finds the course-module wrapping the given
	// activity instance of a module type.
	GetCourseModuleByInstance(ctx context.Context, module, instanceID string, exec ...core.DBExecutor) (CourseModule, error)
}
