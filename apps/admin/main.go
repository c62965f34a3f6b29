package main

import (
	"log"
	"os"

	"github.com/trezcool/msaada/core"
	"github.com/trezcool/msaada/core/award"
	emailsvc "github.com/trezcool/msaada/services/email"
	logsvc "github.com/trezcool/msaada/services/logger"
	notifysvc "github.com/trezcool/msaada/services/notifier"
	"github.com/trezcool/msaada/storage/database"
	sqlxrepos "github.com/trezcool/msaada/storage/database/sqlx"
)

var logger *log.Logger

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

	// set up services
	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(false)
	mailSvc := emailsvc.NewConsoleService(conf)
	notifier := notifysvc.NewEmailNotifier(appLogger, mailSvc, conf)

	// start CLI
	cli := commandLine{
		db:       db,
		usrRepo:  sqlxrepos.NewUserRepository(db),
		awardSvc: award.NewService(sqlxrepos.NewApplicationRepository(db), notifier, appLogger, conf),
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
