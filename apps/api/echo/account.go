package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core/account"
)

const wrongEmailText = "The email or the verification link is wrong."

func (s *server) registerAccountRoutes() {
	s.app.GET("/sign-up", s.signUpForm)
	s.app.POST("/sign-up", s.signUpSubmit)
	s.app.GET("/check-email-token", s.checkEmailToken)
	s.app.GET("/check-email", authed(s.checkEmail))
	s.app.GET("/resend-confirm-email", authed(s.resendConfirmEmail))
	s.app.GET("/login", s.loginForm)
	s.app.POST("/login", s.loginSubmit)
	s.app.POST("/logout", s.logoutSubmit)
	s.app.GET("/profile/:nickname", s.viewProfile)
}

func (s *server) signUpForm(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "account/sign-up", echo.Map{"Form": account.SignUpForm{}})
}

func (s *server) signUpSubmit(ctx echo.Context) error {
	var form account.SignUpForm
	if err := bind(ctx, &form); err != nil {
		return err
	}

	acc, err := s.deps.AccountSvc.ProcessNewAccount(ctx.Request().Context(), form)
	errs, err := s.fieldErrors(err)
	if err != nil {
		return errors.Wrap(err, "processing new account")
	}
	if errs != nil {
		form.Password = ""
		return s.render(ctx, http.StatusOK, "account/sign-up", echo.Map{"Form": form, "Errors": errs})
	}

	if err = s.login(ctx, acc); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (s *server) checkEmailToken(ctx echo.Context) error {
	token, email := ctx.QueryParam("token"), ctx.QueryParam("email")
	acc, count, err := s.deps.AccountSvc.CheckEmailToken(ctx.Request().Context(), token, email)
	if err == account.ErrInvalidEmailToken {
		return s.render(ctx, http.StatusOK, "account/checked-email", echo.Map{"Error": wrongEmailText})
	} else if err != nil {
		return errors.Wrap(err, "checking email token")
	}

	if err = s.login(ctx, acc); err != nil {
		return err
	}
	return s.render(ctx, http.StatusOK, "account/checked-email", echo.Map{
		"Nickname":      acc.Nickname,
		"NumberOfUsers": count,
	})
}

func (s *server) checkEmail(ctx echo.Context, acc account.Account) error {
	return s.render(ctx, http.StatusOK, "account/check-email", echo.Map{"Email": acc.Email})
}

func (s *server) resendConfirmEmail(ctx echo.Context, acc account.Account) error {
	err := s.deps.AccountSvc.ResendConfirmEmail(ctx.Request().Context(), acc)
	if err == account.ErrConfirmEmailTooSoon {
		return s.render(ctx, http.StatusOK, "account/check-email", echo.Map{
			"Email": acc.Email,
			"Error": "A verification email can only be sent once per hour.",
		})
	} else if err != nil {
		return errors.Wrap(err, "resending confirmation email")
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (s *server) loginForm(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "account/login", echo.Map{"Form": account.LoginForm{}})
}

func (s *server) loginSubmit(ctx echo.Context) error {
	var form account.LoginForm
	if err := bind(ctx, &form); err != nil {
		return err
	}

	acc, err := s.deps.AccountSvc.Authenticate(ctx.Request().Context(), form)
	if err == account.ErrInvalidCredentials {
		form.Password = ""
		return s.render(ctx, http.StatusOK, "account/login", echo.Map{
			"Form":  form,
			"Error": "Invalid username or password.",
		})
	}
	errs, err := s.fieldErrors(err)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if errs != nil {
		form.Password = ""
		return s.render(ctx, http.StatusOK, "account/login", echo.Map{"Form": form, "Errors": errs})
	}

	if err = s.login(ctx, acc); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/")
}

func (s *server) logoutSubmit(ctx echo.Context) error {
	s.logout(ctx)
	return ctx.Redirect(http.StatusFound, "/")
}

func (s *server) viewProfile(ctx echo.Context) error {
	profile, err := s.deps.AccountSvc.GetByNickname(ctx.Request().Context(), ctx.Param("nickname"))
	if err == account.ErrNotFound {
		return errHttpNotFound
	} else if err != nil {
		return errors.Wrap(err, "getting account")
	}

	acc, ok := getContextAccount(ctx)
	return s.render(ctx, http.StatusOK, "account/profile", echo.Map{
		"Profile": profile,
		"IsOwner": ok && acc.ID == profile.ID,
	})
}
