package main

import (
	"context"
	"time"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

// addCourse seeds a course together with an empty msteams course-module so an
// activity instance can be attached right away.
func (cli *commandLine) addCourse(shortName, fullName string) error {
	ctx := context.Background()

	crs, err := cli.courseRepo.CreateCourse(ctx, course.Course{
		ShortName: core.CleanString(shortName, true /* lower */),
		FullName:  core.CleanString(fullName),
		StartDate: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	cm, err := cli.courseRepo.CreateCourseModule(ctx, course.CourseModule{
		CourseID:        crs.ID,
		Module:          msteams.ModuleName,
		Visible:         true,
		ShowDescription: true,
		Completion:      course.TrackingAutomatic,
		Added:           time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	logger.Printf("created course %s with course-module %s\n", crs.ID, cm.ID)
	return nil
}
