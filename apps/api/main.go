package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // registers the /debug/pprof handlers
	"os"

	echoapi "github.com/trezcool/chingu/apps/api/echo"
	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	emailsvc "github.com/trezcool/chingu/services/email"
	logsvc "github.com/trezcool/chingu/services/logger"
	"github.com/trezcool/chingu/storage/database"
	inmemdb "github.com/trezcool/chingu/storage/database/inmem"
	sqlxrepos "github.com/trezcool/chingu/storage/database/sqlx"
)

type storage struct {
	tx       core.TxRunner
	accounts account.Repository
	tags     tag.Repository
	zones    zone.Repository
	studies  study.Repository
	close    func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stdout, conf)

	store, err := setUpStorage(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = store.close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf)
	}

	validate, translator := core.NewValidator()
	account.RegisterValidators(validate, translator)
	study.RegisterValidators(validate, translator)

	tagSvc := tag.NewService(store.tags)
	zoneSvc := zone.NewService(store.zones)
	accSvc := account.NewService(store.accounts, store.tx, tagSvc, zoneSvc, mailSvc, validate, logger, conf)
	studySvc := study.NewService(store.studies, store.tx, validate)

	if conf.Database.Storage == core.StorageMemory {
		n, err := zoneSvc.Seed(context.Background())
		if err != nil {
			logger.Fatal(fmt.Sprintf("seeding zones: %v", err), err)
		}
		logger.Info(fmt.Sprintf("%d zones seeded", n))
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server, err := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		AccountSvc: accSvc,
		TagSvc:     tagSvc,
		ZoneSvc:    zoneSvc,
		StudySvc:   studySvc,
		Validate:   validate,
		Translator: translator,
	})
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up server: %v", err), err)
	}

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStorage(conf *core.Config) (*storage, error) {
	if conf.Database.Storage == core.StorageMemory {
		db := inmemdb.Open()
		return &storage{
			tx:       db,
			accounts: inmemdb.NewAccountRepository(db),
			tags:     inmemdb.NewTagRepository(db),
			zones:    inmemdb.NewZoneRepository(db),
			studies:  inmemdb.NewStudyRepository(db),
			close:    func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &storage{
		tx:       db,
		accounts: sqlxrepos.NewAccountRepository(db.DB),
		tags:     sqlxrepos.NewTagRepository(db.DB),
		zones:    sqlxrepos.NewZoneRepository(db.DB),
		studies:  sqlxrepos.NewStudyRepository(db.DB),
		close:    db.Close,
	}, nil
}
