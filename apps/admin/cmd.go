package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/zone"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	accSvc  *account.Service
	zoneSvc *zone.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, ...)")
	fmt.Println("  addaccount -email EMAIL -nickname NICKNAME - create a verified account")
	fmt.Println("  resetpassword -username EMAIL|NICKNAME - reset an account's password")
	fmt.Println("  seedzones - load the bundled zones")
}

// readPassword prompts for a password; an empty password prints the usage of cmd.
func readPassword(cmd *flag.FlagSet) (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAccountCmd := flag.NewFlagSet("addaccount", flag.ContinueOnError)
	addAccountEmail := addAccountCmd.String("email", "", "The account's email. The password will be prompted next.")
	addAccountNickname := addAccountCmd.String("nickname", "", "The account's nickname.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The account's email or nickname. The password will be prompted next.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addaccount":
		if err := addAccountCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAccountEmail == "" || *addAccountNickname == "" {
			addAccountCmd.Usage()
			return errHelp
		}
		pwd, err := readPassword(addAccountCmd)
		if err != nil {
			return err
		}
		return cli.addAccount(*addAccountEmail, *addAccountNickname, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := readPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)
	case "seedzones":
		return cli.seedZones()
	default:
		cli.printUsage()
		return errHelp
	}
}
