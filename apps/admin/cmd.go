package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	courseRepo course.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run a database migration command (up, down, status, ...)")
	fmt.Println("  addcourse -shortname NAME -fullname NAME - seed a course with one msteams course-module")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addCourseCmd := flag.NewFlagSet("addcourse", flag.ExitOnError)
	addCourseShortName := addCourseCmd.String("shortname", "", "The course's short name.")
	addCourseFullName := addCourseCmd.String("fullname", "", "The course's full name.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addcourse":
		if err := addCourseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCourseShortName == "" || *addCourseFullName == "" {
			addCourseCmd.Usage()
			return errHelp
		}
		return cli.addCourse(*addCourseShortName, *addCourseFullName)
	default:
		cli.printUsage()
		return errHelp
	}
}
