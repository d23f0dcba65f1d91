// Package inmemdb provides mutex-guarded in-memory repository
// implementations for tests and local development.
package inmemdb

import (
	"sync"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

type (
	instanceTable struct {
		mutex sync.RWMutex
		table map[string]*msteams.Instance
	}

	courseTable struct {
		mutex   sync.RWMutex
		courses map[string]*course.Course
		modules map[string]*course.CourseModule
	}

	completionTable struct {
		mutex sync.RWMutex
		table map[string]course.CompletionState // key: cmID + "/" + userID
	}

	eventTable struct {
		mutex sync.RWMutex
		table map[string]*calendar.Event
	}

	DB struct {
		instance   *instanceTable
		course     *courseTable
		completion *completionTable
		event      *eventTable
	}
)

func NewDB() *DB {
	return &DB{
		instance: &instanceTable{table: make(map[string]*msteams.Instance)},
		course: &courseTable{
			courses: make(map[string]*course.Course),
			modules: make(map[string]*course.CourseModule),
		},
		completion: &completionTable{table: make(map[string]course.CompletionState)},
		event:      &eventTable{table: make(map[string]*calendar.Event)},
	}
}
