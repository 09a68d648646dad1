package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
)

const (
	settingsProfileView       = "settings/profile"
	settingsPasswordView      = "settings/password"
	settingsNotificationsView = "settings/notifications"
	settingsAccountView       = "settings/account"
)

func (s *server) registerSettingsRoutes() {
	g := s.app.Group("/settings")

	g.GET("/profile", authed(s.profileForm))
	g.POST("/profile", authed(s.profileSubmit))
	g.GET("/password", authed(s.passwordForm))
	g.POST("/password", authed(s.passwordSubmit))
	g.GET("/notifications", authed(s.notificationsForm))
	g.POST("/notifications", authed(s.notificationsSubmit))
	g.GET("/account", authed(s.accountForm))
	g.POST("/account", authed(s.accountSubmit))

	g.GET("/tags", authed(s.tagsForm))
	g.POST("/tags/add", authed(s.addTag))
	g.POST("/tags/remove", authed(s.removeTag))
	g.GET("/zones", authed(s.zonesForm))
	g.POST("/zones/add", authed(s.addZone))
	g.POST("/zones/remove", authed(s.removeZone))
}

// Profile

func (s *server) profileForm(ctx echo.Context, acc account.Account) error {
	return s.render(ctx, http.StatusOK, settingsProfileView, echo.Map{"Form": acc.Profile})
}

func (s *server) profileSubmit(ctx echo.Context, acc account.Account) error {
	var form account.Profile
	if err := bind(ctx, &form); err != nil {
		return err
	}
	_, err := s.deps.AccountSvc.UpdateProfile(ctx.Request().Context(), acc, form)
	return s.settingsResult(ctx, err, settingsProfileView, form, "Profile updated.")
}

// Password

func (s *server) passwordForm(ctx echo.Context, _ account.Account) error {
	return s.render(ctx, http.StatusOK, settingsPasswordView, echo.Map{"Form": account.PasswordForm{}})
}

func (s *server) passwordSubmit(ctx echo.Context, acc account.Account) error {
	var form account.PasswordForm
	if err := bind(ctx, &form); err != nil {
		return err
	}
	_, err := s.deps.AccountSvc.UpdatePassword(ctx.Request().Context(), acc, form)
	return s.settingsResult(ctx, err, settingsPasswordView, account.PasswordForm{}, "Password updated.")
}

// Notifications

func (s *server) notificationsForm(ctx echo.Context, acc account.Account) error {
	return s.render(ctx, http.StatusOK, settingsNotificationsView, echo.Map{"Form": acc.Notifications})
}

func (s *server) notificationsSubmit(ctx echo.Context, acc account.Account) error {
	var form account.Notifications
	if err := bind(ctx, &form); err != nil {
		return err
	}
	_, err := s.deps.AccountSvc.UpdateNotifications(ctx.Request().Context(), acc, form)
	return s.settingsResult(ctx, err, settingsNotificationsView, form, "Notification settings updated.")
}

// Account

func (s *server) accountForm(ctx echo.Context, acc account.Account) error {
	return s.render(ctx, http.StatusOK, settingsAccountView, echo.Map{
		"Form": account.NicknameForm{Nickname: acc.Nickname},
	})
}

func (s *server) accountSubmit(ctx echo.Context, acc account.Account) error {
	var form account.NicknameForm
	if err := bind(ctx, &form); err != nil {
		return err
	}
	updated, err := s.deps.AccountSvc.UpdateNickname(ctx.Request().Context(), acc, form)
	if err == nil && updated.Nickname != acc.Nickname {
		// the token carries the nickname
		if err = s.login(ctx, updated); err != nil {
			return err
		}
	}
	return s.settingsResult(ctx, err, settingsAccountView, form, "Nickname updated.")
}

// settingsResult redirects back to the settings page with a flash message on success,
// or renders the form with its errors on a validation failure.
func (s *server) settingsResult(ctx echo.Context, err error, view string, form interface{}, msg string) error {
	errs, err := s.fieldErrors(err)
	if err != nil {
		return errors.Wrapf(err, "updating %s", view)
	}
	if errs != nil {
		return s.render(ctx, http.StatusOK, view, echo.Map{"Form": form, "Errors": errs})
	}
	return s.redirectWithFlash(ctx, "/"+view, msg)
}

// Tags

func (s *server) tagsForm(ctx echo.Context, acc account.Account) error {
	titles, err := s.deps.TagSvc.AllTitles(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting tags")
	}
	whitelist, err := json.Marshal(titles)
	if err != nil {
		return errors.Wrap(err, "encoding tags")
	}
	return s.render(ctx, http.StatusOK, "settings/tags", echo.Map{
		"Tags":      tag.Titles(acc.Tags()),
		"Whitelist": string(whitelist),
	})
}

func (s *server) bindTagForm(ctx echo.Context) (tag.TagForm, error) {
	var form tag.TagForm
	if err := bind(ctx, &form); err != nil {
		return form, err
	}
	form.Clean()
	return form, s.deps.Validate.Struct(form)
}

func (s *server) addTag(ctx echo.Context, acc account.Account) error {
	form, err := s.bindTagForm(ctx)
	if err != nil {
		return err
	}
	if _, err = s.deps.AccountSvc.AddTag(ctx.Request().Context(), acc, form.TagTitle); err != nil {
		return errors.Wrap(err, "adding tag")
	}
	return ctx.NoContent(http.StatusOK)
}

func (s *server) removeTag(ctx echo.Context, acc account.Account) error {
	form, err := s.bindTagForm(ctx)
	if err != nil {
		return err
	}
	_, err = s.deps.AccountSvc.RemoveTag(ctx.Request().Context(), acc, form.TagTitle)
	if err == tag.ErrNotFound {
		return ctx.NoContent(http.StatusBadRequest)
	} else if err != nil {
		return errors.Wrap(err, "removing tag")
	}
	return ctx.NoContent(http.StatusOK)
}

// Zones

func (s *server) zonesForm(ctx echo.Context, acc account.Account) error {
	names, err := s.deps.ZoneSvc.AllNames(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "getting zones")
	}
	whitelist, err := json.Marshal(names)
	if err != nil {
		return errors.Wrap(err, "encoding zones")
	}
	return s.render(ctx, http.StatusOK, "settings/zones", echo.Map{
		"Zones":     zone.Names(acc.Zones()),
		"Whitelist": string(whitelist),
	})
}

type zoneMutation func(ctx echo.Context, acc account.Account, city, province string) (account.Account, error)

func (s *server) mutateZone(ctx echo.Context, acc account.Account, mutate zoneMutation) error {
	var form zone.ZoneForm
	if err := bind(ctx, &form); err != nil {
		return err
	}
	if err := s.deps.Validate.Struct(form); err != nil {
		return err
	}
	city, province, err := form.Key()
	if err != nil {
		return ctx.NoContent(http.StatusBadRequest)
	}

	_, err = mutate(ctx, acc, city, province)
	if err == zone.ErrNotFound {
		return ctx.NoContent(http.StatusBadRequest)
	} else if err != nil {
		return errors.Wrap(err, "updating zones")
	}
	return ctx.NoContent(http.StatusOK)
}

func (s *server) addZone(ctx echo.Context, acc account.Account) error {
	return s.mutateZone(ctx, acc, func(ctx echo.Context, acc account.Account, city, province string) (account.Account, error) {
		return s.deps.AccountSvc.AddZone(ctx.Request().Context(), acc, city, province)
	})
}

func (s *server) removeZone(ctx echo.Context, acc account.Account) error {
	return s.mutateZone(ctx, acc, func(ctx echo.Context, acc account.Account, city, province string) (account.Account, error) {
		return s.deps.AccountSvc.RemoveZone(ctx.Request().Context(), acc, city, province)
	})
}
