package echoapi

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const flashKey = "flash"

func newSessionStore(secret string) sessions.Store {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// setFlash stores a one-time message, displayed by the next rendered page.
func (s *server) setFlash(ctx echo.Context, msg string) error {
	sess, err := s.sessions.Get(ctx.Request(), s.deps.Conf.Server.SessionName)
	if err != nil && sess == nil {
		return errors.Wrap(err, "getting session")
	}
	sess.AddFlash(msg, flashKey)
	return errors.Wrap(sess.Save(ctx.Request(), ctx.Response()), "saving session")
}

// popFlashes returns and clears the pending messages, oldest first.
func (s *server) popFlashes(ctx echo.Context) []string {
	sess, err := s.sessions.Get(ctx.Request(), s.deps.Conf.Server.SessionName)
	if sess == nil {
		return nil
	}
	if err != nil { // invalid cookie: start over
		sess.Options.MaxAge = -1
		_ = sess.Save(ctx.Request(), ctx.Response())
		return nil
	}
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return nil
	}
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		s.deps.Logger.Warn("saving session", errors.Wrap(err, "saving session"))
	}
	msgs := make([]string, 0, len(flashes))
	for _, f := range flashes {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

// redirectWithFlash sets msg and redirects to url.
func (s *server) redirectWithFlash(ctx echo.Context, url, msg string) error {
	if err := s.setFlash(ctx, msg); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, url)
}
