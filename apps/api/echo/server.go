package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/chingu/core"
	"github.com/trezcool/chingu/core/account"
	"github.com/trezcool/chingu/core/study"
	"github.com/trezcool/chingu/core/tag"
	"github.com/trezcool/chingu/core/zone"
	appfs "github.com/trezcool/chingu/fs"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		AccountSvc *account.Service
		TagSvc     *tag.Service
		ZoneSvc    *zone.Service
		StudySvc   *study.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		sessions sessions.Store
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) (Server, error) {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionStore(deps.Conf.SecretKey),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	renderer, err := newTemplateRenderer(appfs.FS)
	if err != nil {
		return nil, errors.Wrap(err, "loading views")
	}
	s.app.Renderer = renderer
	s.setup()
	return s, nil
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.loadAccountMiddleware)

	s.app.HTTPErrorHandler = s.newAppHTTPErrorHandler(s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.registerAccountRoutes()
	s.registerSettingsRoutes()
	s.registerStudyRoutes()
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

// render renders the view `name`, adding the data shared by all pages.
func (s *server) render(ctx echo.Context, code int, name string, data echo.Map) error {
	if data == nil {
		data = echo.Map{}
	}
	data["AppName"] = s.deps.Conf.AppName
	if _, ok := data["Account"]; !ok {
		var accPtr *account.Account
		if acc, ok := getContextAccount(ctx); ok {
			accPtr = &acc
		}
		data["Account"] = accPtr
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	if code < http.StatusBadRequest {
		data["Flash"] = s.popFlashes(ctx)
	}
	return ctx.Render(code, name, data)
}

func bind(ctx echo.Context, form interface{}) error {
	return errors.Wrap(ctx.Bind(form), "binding form")
}

// fieldErrors splits validation errors from the other ones.
func (s *server) fieldErrors(err error) (map[string]string, error) {
	if err == nil {
		return nil, nil
	}
	if errs, ok := core.FieldErrors(err, s.deps.Translator); ok {
		return errs, nil
	}
	return nil, err
}
