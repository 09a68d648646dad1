package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
)

// NewValidator returns a validator with every validation tag of the app registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	account.RegisterValidators(validate, translator)
	study.RegisterValidators(validate, translator)
	return validate, translator
}

// CreateAccount stores an account straight into repo. Unverified accounts get an email check token.
func CreateAccount(t *testing.T, repo account.Repository, email, nickname, pwd string, verified bool) account.Account {
	t.Helper()
	acc := account.New(email, nickname)
	if pwd != "" {
		if err := acc.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}
	if verified {
		acc.CompleteSignUp()
	} else {
		acc.GenerateEmailCheckToken()
	}
	acc, err := repo.CreateAccount(context.Background(), acc)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acc
}
