package main

import (
	"log"
	"os"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/storage/database"
	sqlxrepos "github.com/EsdrasCaleb/moodle-mod-msteams/storage/database/sqlx"

	"github.com/jmoiron/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// start CLI
	cli := commandLine{
		db:         db,
		courseRepo: sqlxrepos.NewCourseRepository(sqlx.NewDb(db, conf.Database.Engine)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
