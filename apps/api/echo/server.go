package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/EsdrasCaleb/moodle-mod-msteams/core"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/calendar"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/course"
	"github.com/EsdrasCaleb/moodle-mod-msteams/core/msteams"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		InstanceSvc    *msteams.Service
		CourseRepo     course.Repository
		EventRepo      calendar.EventRepository
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps       ServerDeps
		app        *echo.Echo
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:       deps,
		app:        echo.New(),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf
	appJWTConfig.SigningKey = []byte(conf.SecretKey)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerInstanceAPI(s.app, v1, jwt, s.deps)
}

// signalShutdown initiates a graceful shutdown from within a request.
func (s *server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) Start() {
	s.errCh <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the MSTeams module API!")
}
