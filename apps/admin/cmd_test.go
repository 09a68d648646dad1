package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/ioutil"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	emailsvc "github.com/trezcool/chingu/services/email"
	logsvc "github.com/trezcool/chingu/services/logger"
	inmemdb "github.com/trezcool/chingu/storage/database/inmem"
	"github.com/trezcool/chingu/tests"
)

var accRepo account.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	conf := core.NewTestConfig()
	validate, _ := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	accRepo = inmemdb.NewAccountRepository(db)
	zoneSvc := zone.NewService(inmemdb.NewZoneRepository(db))

	// start CLI
	return &commandLine{
		accSvc: account.NewService(
			accRepo,
			db,
			tag.NewService(inmemdb.NewTagRepository(db)),
			zoneSvc,
			emailsvc.NewConsoleServiceMock(conf),
			validate,
			logsvc.NewRollbarLogger(ioutil.Discard, conf),
			conf,
		),
		zoneSvc: zoneSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	defer func(f func(*sql.DB, string, ...string) error) { gooseRunFunc = f }(gooseRunFunc)
	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "study_member", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	acc := testutil.CreateAccount(t, accRepo, "kim@test.kr", "kim", "12345678", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "password"}, wantErr: account.ErrNotFound},
		{name: "password too short", args: []string{"resetpassword", "-username", acc.Nickname}, extra: extra{pwd: "lol"}, wantErrStr: "newPassword"},
		{name: "reset with nickname", args: []string{"resetpassword", "-username", acc.Nickname}, extra: extra{pwd: "password1"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", acc.Email}, extra: extra{pwd: "password2"}},
	}
	defer func(f func(int) ([]byte, error)) { readPasswordFunc = f }(readPasswordFunc)

	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
				refreshed, err := accRepo.GetAccountByID(ctx, acc.ID)
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(tt.extra.(extra).pwd))
			}
		})
	}
}

func Test_commandLine_addAccount(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	defer func(f func(int) ([]byte, error)) { readPasswordFunc = f }(readPasswordFunc)
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("12345678"), nil }

	tests := []cliTest{
		{name: "no args", args: []string{"addaccount"}, wantErr: errHelp},
		{name: "no nickname", args: []string{"addaccount", "-email", "kim@test.kr"}, wantErr: errHelp},
		{name: "invalid nickname", args: []string{"addaccount", "-email", "kim@test.kr", "-nickname", "K"}, wantErrStr: "nickname"},
		{name: "success", args: []string{"addaccount", "-email", "Kim@Test.kr", "-nickname", "kim"}},
		{name: "already exists", args: []string{"addaccount", "-email", "kim@test.kr", "-nickname", "kim2"}, wantErrStr: "email"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, err.Error(), tt.wantErrStr)
				}
			default:
				require.NoError(t, err)
			}
		})
	}

	acc, err := accRepo.GetAccountByEmail(ctx, "kim@test.kr")
	require.NoError(t, err)
	assert.True(t, acc.EmailVerified)
	assert.Empty(t, acc.EmailCheckToken)
	assert.NoError(t, acc.CheckPassword("12345678"))
}

func Test_commandLine_seedZones(t *testing.T) {
	cli := setup(t)

	require.NoError(t, cli.run([]string{"admin", "seedzones"}))
	names, err := cli.zoneSvc.AllNames(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, names)

	// seeding twice adds nothing
	require.NoError(t, cli.run([]string{"admin", "seedzones"}))
	again, err := cli.zoneSvc.AllNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(names), len(again))
}
