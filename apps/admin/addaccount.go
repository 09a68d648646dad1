package main

import (
	"context"
	"fmt"

	"github.com/trezcool/chingu/core/account"
)

// addAccount creates a verified account, bypassing the email verification.
func (cli *commandLine) addAccount(email, nickname, pwd string) error {
	acc, err := cli.accSvc.CreateVerifiedAccount(context.Background(), account.SignUpForm{
		Email:    email,
		Nickname: nickname,
		Password: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Printf("account %q created (id: %d)\n", acc.Nickname, acc.ID)
	return nil
}
