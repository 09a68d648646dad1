package account

import (
	"context"
	"net/mail"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

var (
	// errors
	ErrNotFound            = errors.New("account not found")
	ErrEmailExists         = errors.New("an account with this email already exists")
	ErrNicknameExists      = errors.New("an account with this nickname already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidEmailToken   = errors.New("invalid email or token")
	ErrConfirmEmailTooSoon = errors.New("a confirmation email can only be sent once per hour")
)

type (
	Repository interface {
		CreateAccount(ctx context.Context, acc Account, exec ...core.DBExecutor) (Account, error)
		// UpdateAccount stores the account's own fields; tag and zone sets are stored by their own methods.
		UpdateAccount(ctx context.Context, acc Account, exec ...core.DBExecutor) error
		GetAccountByID(ctx context.Context, id int, exec ...core.DBExecutor) (Account, error)
		GetAccountByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (Account, error)
		GetAccountByNickname(ctx context.Context, nickname string, exec ...core.DBExecutor) (Account, error)
		ExistsByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error)
		ExistsByNickname(ctx context.Context, nickname string, exec ...core.DBExecutor) (bool, error)
		CountAccounts(ctx context.Context, exec ...core.DBExecutor) (int, error)
		AddAccountTag(ctx context.Context, accountID, tagID int, exec ...core.DBExecutor) error
		RemoveAccountTag(ctx context.Context, accountID, tagID int, exec ...core.DBExecutor) error
		AddAccountZone(ctx context.Context, accountID, zoneID int, exec ...core.DBExecutor) error
		RemoveAccountZone(ctx context.Context, accountID, zoneID int, exec ...core.DBExecutor) error
	}

	Service struct {
		repo     Repository
		tx       core.TxRunner
		tagSvc   *tag.Service
		zoneSvc  *zone.Service
		mailSvc  core.EmailService
		validate *validator.Validate
		logger   core.Logger
		conf     *core.Config
	}
)

func NewService(
	repo Repository,
	tx core.TxRunner,
	tagSvc *tag.Service,
	zoneSvc *zone.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		tx:       tx,
		tagSvc:   tagSvc,
		zoneSvc:  zoneSvc,
		mailSvc:  mailSvc,
		validate: validate,
		logger:   logger,
		conf:     conf,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email, nickname string, exec core.DBExecutor) error {
	flds := make([]core.FieldError, 0, 2)
	if email != "" {
		exists, err := svc.repo.ExistsByEmail(ctx, email, exec)
		if err != nil {
			return errors.Wrap(err, "checking email")
		}
		if exists {
			flds = append(flds, core.FieldError{Field: "email", Error: emailExistsText})
		}
	}
	if nickname != "" {
		exists, err := svc.repo.ExistsByNickname(ctx, nickname, exec)
		if err != nil {
			return errors.Wrap(err, "checking nickname")
		}
		if exists {
			flds = append(flds, core.FieldError{Field: "nickname", Error: nicknameExistsText})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// ProcessNewAccount validates the form, creates the unverified account and sends it the verification email.
// The account is committed before the email is sent; a send failure is logged and not returned.
func (svc *Service) ProcessNewAccount(ctx context.Context, form SignUpForm) (Account, error) {
	acc, err := svc.create(ctx, form, false)
	if err != nil {
		return Account{}, err
	}
	svc.sendConfirmEmail(acc)
	return acc, nil
}

// CreateVerifiedAccount creates an account whose email needs no verification.
func (svc *Service) CreateVerifiedAccount(ctx context.Context, form SignUpForm) (Account, error) {
	return svc.create(ctx, form, true)
}

func (svc *Service) create(ctx context.Context, form SignUpForm, verified bool) (Account, error) {
	form.Clean()
	if err := svc.validate.Struct(form); err != nil {
		return Account{}, err
	}

	var acc Account
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.checkUniqueness(ctx, form.Email, form.Nickname, exec); err != nil {
			return err
		}

		newAcc := New(form.Email, form.Nickname)
		if err := newAcc.SetPassword(form.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		if verified {
			newAcc.CompleteSignUp()
		} else {
			newAcc.GenerateEmailCheckToken()
		}

		var err error
		acc, err = svc.repo.CreateAccount(ctx, newAcc, exec)
		return errors.Wrap(err, "creating account")
	})
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (svc *Service) confirmEmailLink(acc Account) string {
	q := make(url.Values)
	q.Set("token", acc.EmailCheckToken)
	q.Set("email", acc.Email)
	return svc.conf.BaseURL + "/check-email-token?" + q.Encode()
}

func (svc *Service) sendConfirmEmail(acc Account) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: acc.Nickname, Address: acc.Email}},
		Subject:      "Confirm your email",
		TemplateName: "confirm_email",
		TemplateData: map[string]interface{}{
			"AppName":  svc.conf.AppName,
			"Nickname": acc.Nickname,
			"Link":     svc.confirmEmailLink(acc),
		},
	}
	if err := svc.mailSvc.SendMessages(msg); err != nil {
		svc.logger.Error("sending confirmation email", errors.Wrap(err, "sending confirmation email"), acc)
	}
}

// CheckEmailToken verifies the account owning `email` with `token`.
// It returns the verified account and the total number of accounts.
func (svc *Service) CheckEmailToken(ctx context.Context, token, email string) (Account, int, error) {
	var (
		acc   Account
		count int
	)
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		acc, err = svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */), exec)
		if err == ErrNotFound {
			return ErrInvalidEmailToken
		} else if err != nil {
			return errors.Wrap(err, "getting account")
		}
		if !acc.IsValidToken(token) {
			return ErrInvalidEmailToken
		}

		if !acc.EmailVerified {
			acc.CompleteSignUp()
			if err = svc.repo.UpdateAccount(ctx, acc, exec); err != nil {
				return errors.Wrap(err, "updating account")
			}
		}
		count, err = svc.repo.CountAccounts(ctx, exec)
		return errors.Wrap(err, "counting accounts")
	})
	if err != nil {
		return Account{}, 0, err
	}
	return acc, count, nil
}

// ResendConfirmEmail regenerates the account's token and sends it a new verification email.
func (svc *Service) ResendConfirmEmail(ctx context.Context, acc Account) error {
	if !acc.CanSendConfirmEmail() {
		return ErrConfirmEmailTooSoon
	}
	acc.GenerateEmailCheckToken()
	if err := svc.repo.UpdateAccount(ctx, acc); err != nil {
		return errors.Wrap(err, "updating account")
	}
	svc.sendConfirmEmail(acc)
	return nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccountByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	return svc.repo.GetAccountByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByNickname(ctx context.Context, nickname string) (Account, error) {
	return svc.repo.GetAccountByNickname(ctx, core.CleanString(nickname))
}

// GetByEmailOrNickname looks `username` up as an email first, then as a nickname.
func (svc *Service) GetByEmailOrNickname(ctx context.Context, username string) (Account, error) {
	acc, err := svc.GetByEmail(ctx, username)
	if err == ErrNotFound {
		return svc.GetByNickname(ctx, username)
	}
	return acc, err
}

func (svc *Service) Authenticate(ctx context.Context, form LoginForm) (Account, error) {
	form.Clean()
	if err := svc.validate.Struct(form); err != nil {
		return Account{}, err
	}
	acc, err := svc.GetByEmailOrNickname(ctx, form.Username)
	if err == ErrNotFound {
		return Account{}, ErrInvalidCredentials
	} else if err != nil {
		return Account{}, errors.Wrap(err, "getting account")
	}
	if err = acc.CheckPassword(form.Password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return acc, nil
}

// update runs fn on a fresh copy of the account inside a transaction and stores the account's fields.
func (svc *Service) update(ctx context.Context, id int, fn func(acc *Account, exec core.DBExecutor) error) (Account, error) {
	var acc Account
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		acc, err = svc.repo.GetAccountByID(ctx, id, exec)
		if err != nil {
			return errors.Wrap(err, "getting account")
		}
		if err = fn(&acc, exec); err != nil {
			return err
		}
		return errors.Wrap(svc.repo.UpdateAccount(ctx, acc, exec), "updating account")
	})
	if err != nil {
		return Account{}, err
	}
	return acc, nil
}

func (svc *Service) UpdateProfile(ctx context.Context, acc Account, p Profile) (Account, error) {
	p.Clean()
	if err := svc.validate.Struct(p); err != nil {
		return Account{}, err
	}
	return svc.update(ctx, acc.ID, func(acc *Account, _ core.DBExecutor) error {
		acc.UpdateProfile(p)
		return nil
	})
}

func (svc *Service) UpdatePassword(ctx context.Context, acc Account, form PasswordForm) (Account, error) {
	if err := svc.validate.Struct(form); err != nil {
		return Account{}, err
	}
	return svc.update(ctx, acc.ID, func(acc *Account, _ core.DBExecutor) error {
		return errors.Wrap(acc.SetPassword(form.NewPassword), "hashing password")
	})
}

// ResetPassword sets the password of the account designated by `username` (email or nickname).
func (svc *Service) ResetPassword(ctx context.Context, username, pwd string) error {
	form := PasswordForm{NewPassword: pwd, NewPasswordConfirm: pwd}
	if err := svc.validate.Struct(form); err != nil {
		return err
	}
	acc, err := svc.GetByEmailOrNickname(ctx, username)
	if err != nil {
		return err
	}
	_, err = svc.UpdatePassword(ctx, acc, form)
	return err
}

func (svc *Service) UpdateNotifications(ctx context.Context, acc Account, n Notifications) (Account, error) {
	return svc.update(ctx, acc.ID, func(acc *Account, _ core.DBExecutor) error {
		acc.UpdateNotifications(n)
		return nil
	})
}

func (svc *Service) UpdateNickname(ctx context.Context, acc Account, form NicknameForm) (Account, error) {
	form.Clean()
	if err := svc.validate.Struct(form); err != nil {
		return Account{}, err
	}
	return svc.update(ctx, acc.ID, func(acc *Account, exec core.DBExecutor) error {
		if form.Nickname == acc.Nickname {
			return nil
		}
		if err := svc.checkUniqueness(ctx, "", form.Nickname, exec); err != nil {
			return err
		}
		acc.Rename(form.Nickname)
		return nil
	})
}

// AddTag associates the tag titled `title` to the account, creating the tag if needed.
func (svc *Service) AddTag(ctx context.Context, acc Account, title string) (Account, error) {
	var updated Account
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		updated, err = svc.repo.GetAccountByID(ctx, acc.ID, exec)
		if err != nil {
			return errors.Wrap(err, "getting account")
		}
		t, err := svc.tagSvc.FindOrCreateNew(ctx, title, exec)
		if err != nil {
			return err
		}
		if updated.AddTag(t) {
			return errors.Wrap(svc.repo.AddAccountTag(ctx, updated.ID, t.ID, exec), "adding tag")
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return updated, nil
}

// RemoveTag dissociates the tag titled `title` from the account.
// It returns tag.ErrNotFound when no such tag exists.
func (svc *Service) RemoveTag(ctx context.Context, acc Account, title string) (Account, error) {
	var updated Account
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		t, err := svc.tagSvc.GetByTitle(ctx, title, exec)
		if err != nil {
			return err
		}
		updated, err = svc.repo.GetAccountByID(ctx, acc.ID, exec)
		if err != nil {
			return errors.Wrap(err, "getting account")
		}
		if updated.RemoveTag(t) {
			return errors.Wrap(svc.repo.RemoveAccountTag(ctx, updated.ID, t.ID, exec), "removing tag")
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return updated, nil
}

// AddZone associates an existing zone to the account.
// It returns zone.ErrNotFound when no such zone exists.
func (svc *Service) AddZone(ctx context.Context, acc Account, city, province string) (Account, error) {
	return svc.mutateZones(ctx, acc, city, province, true)
}

// RemoveZone dissociates a zone from the account.
// It returns zone.ErrNotFound when no such zone exists.
func (svc *Service) RemoveZone(ctx context.Context, acc Account, city, province string) (Account, error) {
	return svc.mutateZones(ctx, acc, city, province, false)
}

func (svc *Service) mutateZones(ctx context.Context, acc Account, city, province string, add bool) (Account, error) {
	var updated Account
	err := svc.tx.RunInTx(ctx, func(exec core.DBExecutor) error {
		z, err := svc.zoneSvc.GetByCityAndProvince(ctx, city, province, exec)
		if err != nil {
			return err
		}
		updated, err = svc.repo.GetAccountByID(ctx, acc.ID, exec)
		if err != nil {
			return errors.Wrap(err, "getting account")
		}
		switch {
		case add && updated.AddZone(z):
			return errors.Wrap(svc.repo.AddAccountZone(ctx, updated.ID, z.ID, exec), "adding zone")
		case !add && updated.RemoveZone(z):
			return errors.Wrap(svc.repo.RemoveAccountZone(ctx, updated.ID, z.ID, exec), "removing zone")
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	return updated, nil
}
