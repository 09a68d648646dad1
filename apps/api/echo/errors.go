package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

func wantsJSON(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func (s *server) newAppHTTPErrorHandler(signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		if fldErrs, ok := core.FieldErrors(err, s.deps.Translator); ok {
			code = http.StatusBadRequest
			message = fldErrs
		} else if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
			if herr.Internal != nil {
				if internal, ok := herr.Internal.(*echo.HTTPError); ok {
					herr = internal
				}
			}
			code = herr.Code
			message = herr.Message
		} else { // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if acc, ok := getContextAccount(ctx); ok {
				args = append(args, acc)
			}
			s.deps.Logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		switch {
		case ctx.Request().Method == http.MethodHead: // Issue #608
			err = ctx.NoContent(code)
		case wantsJSON(ctx.Request()):
			if m, ok := message.(string); ok {
				message = echo.Map{"error": m}
			}
			err = ctx.JSON(code, message)
		default:
			err = s.render(ctx, code, "error", echo.Map{"Code": code, "Message": message})
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
