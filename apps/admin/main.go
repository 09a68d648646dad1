package main

import (
	"fmt"
	"os"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	emailsvc "github.com/trezcool/chingu/services/email"
	logsvc "github.com/trezcool/chingu/services/logger"
	"github.com/trezcool/chingu/storage/database"
	sqlxrepos "github.com/trezcool/chingu/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stderr, conf)
	logger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate, translator := core.NewValidator()
	account.RegisterValidators(validate, translator)

	zoneSvc := zone.NewService(sqlxrepos.NewZoneRepository(db.DB))
	accSvc := account.NewService(
		sqlxrepos.NewAccountRepository(db.DB),
		db,
		tag.NewService(sqlxrepos.NewTagRepository(db.DB)),
		zoneSvc,
		emailsvc.NewConsoleService(conf),
		validate,
		logger,
		conf,
	)

	// start CLI
	cli := commandLine{
		db:      db.DB.DB,
		accSvc:  accSvc,
		zoneSvc: zoneSvc,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			if fldErrs, ok := core.FieldErrors(err, translator); ok {
				for fld, msg := range fldErrs {
					fmt.Fprintf(os.Stderr, "%s: %s\n", fld, msg)
				}
			} else {
				logger.Error(fmt.Sprintf("error: %v", err), err)
			}
		}
		os.Exit(1)
	}
}
