package logsvc

import (
	"fmt"
	"io"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/chingu/core"
)

// RollbarLogger reports to Rollbar and writes every entry to the console.
type RollbarLogger struct {
	std      zerolog.Logger
	exitFunc func(code int)
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(w io.Writer, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	return &RollbarLogger{
		std:      zerolog.New(w).Level(level).With().Timestamp().Str("app", conf.AppName).Logger(),
		exitFunc: os.Exit,
	}
}

func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare splits args into the rollbar arguments and the person they relate to.
// expected fmt: msg | error, map[string]interface{}, core.Person
func (l *RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, core.Person) {
	var person core.Person
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		if p, ok := arg.(core.Person); ok {
			if person == nil { // only set one person
				person = p
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if person != nil {
		id, username, email := person.LogPerson()
		rollbar.SetPerson(id, username, email)
	} else {
		rollbar.ClearPerson()
	}
	return newArgs, person
}

func (l *RollbarLogger) print(evt *zerolog.Event, msg string, args []interface{}, person core.Person) {
	for _, arg := range args[1:] {
		switch a := arg.(type) {
		case error:
			evt = evt.Str(zerolog.ErrorFieldName, fmt.Sprintf("%+v", a))
		case map[string]interface{}:
			evt = evt.Fields(a)
		default:
			evt = evt.Interface("arg", a)
		}
	}
	if person != nil {
		id, username, _ := person.LogPerson()
		evt = evt.Str("person_id", id).Str("person", username)
	}
	evt.Msg(msg)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	rArgs, p := l.prepare(msg, args)
	rollbar.Debug(rArgs...)
	l.print(l.std.Debug(), msg, rArgs, p)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rArgs, p := l.prepare(msg, args)
	rollbar.Info(rArgs...)
	l.print(l.std.Info(), msg, rArgs, p)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rArgs, p := l.prepare(msg, args)
	rollbar.Warning(rArgs...)
	l.print(l.std.Warn(), msg, rArgs, p)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rArgs, p := l.prepare(msg, args)
	rollbar.Error(rArgs...)
	l.print(l.std.Error(), msg, rArgs, p)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	rArgs, p := l.prepare(msg, args)
	rollbar.Critical(rArgs...)
	l.print(l.std.WithLevel(zerolog.FatalLevel), msg, rArgs, p)
	rollbar.Wait()
	l.exitFunc(1)
}
