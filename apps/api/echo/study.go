package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
)

func (s *server) registerStudyRoutes() {
	s.app.GET("/new-study", authed(s.studyForm))
	s.app.POST("/new-study", authed(s.studySubmit))
	s.app.GET("/study/:path", s.viewStudy)
}

func (s *server) studyForm(ctx echo.Context, _ account.Account) error {
	return s.render(ctx, http.StatusOK, "study/form", echo.Map{"Form": study.StudyForm{}})
}

func (s *server) studySubmit(ctx echo.Context, acc account.Account) error {
	var form study.StudyForm
	if err := bind(ctx, &form); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	errs, err := s.fieldErrors(s.deps.StudySvc.ValidateForm(reqCtx, &form))
	if err != nil {
		return errors.Wrap(err, "validating study")
	}
	if errs != nil {
		return s.render(ctx, http.StatusOK, "study/form", echo.Map{"Form": form, "Errors": errs})
	}

	created, err := s.deps.StudySvc.CreateNewStudy(reqCtx, form.Study(), acc)
	if err != nil {
		return errors.Wrap(err, "creating study")
	}
	return ctx.Redirect(http.StatusFound, "/study/"+url.PathEscape(created.Path))
}

func (s *server) viewStudy(ctx echo.Context) error {
	st, err := s.deps.StudySvc.GetByPath(ctx.Request().Context(), ctx.Param("path"))
	if err == study.ErrNotFound {
		return errHttpNotFound
	} else if err != nil {
		return errors.Wrap(err, "getting study")
	}

	acc, ok := getContextAccount(ctx)
	return s.render(ctx, http.StatusOK, "study/view", echo.Map{
		"Study":     st,
		"IsManager": ok && st.IsManager(acc),
	})
}
