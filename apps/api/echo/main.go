package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *server) home(ctx echo.Context) error {
	return s.render(ctx, http.StatusOK, "index", nil)
}
