package logsvc

import (
	"context"
	"os"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/rs/zerolog"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/session"
)

// RollbarLogger writes every entry to zerolog and reports it to Rollbar (when enabled).
type RollbarLogger struct {
	zl     zerolog.Logger
	client *rollbar.Client
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl zerolog.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.New(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, "")
	client.SetStackTracer(errors.StackTracer)
	client.SetEnabled(!conf.Debug && conf.RollbarToken != "")
	return &RollbarLogger{zl: zl, client: client}
}

// rollbarItem is one entry as reported to Rollbar.
type rollbarItem struct {
	err    error
	extras map[string]interface{}
	person *rollbar.Person
}

// newRollbarItem splits args (expected fmt: error, map[string]interface{}, session.Session).
// The person is attached to this item only, never to the shared client.
func newRollbarItem(msg string, args []interface{}) rollbarItem {
	item := rollbarItem{extras: map[string]interface{}{}}
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			if item.err == nil {
				item.err = v
			}
		case map[string]interface{}:
			for k, val := range v {
				item.extras[k] = val
			}
		case session.Session:
			if item.person == nil { // only one person
				item.person = &rollbar.Person{Id: v.SubjectID, Username: v.SubjectID}
			}
		default:
			item.extras["detail"] = v
		}
	}
	if item.err != nil {
		item.extras["message"] = msg
	}
	return item
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	item := newRollbarItem(msg, args)
	ctx := context.Background()
	if item.person != nil {
		ctx = rollbar.NewPersonContext(ctx, item.person)
	}
	if item.err != nil {
		l.client.ErrorWithExtrasAndContext(ctx, level, item.err, item.extras)
		return
	}
	l.client.MessageWithExtrasAndContext(ctx, level, msg, item.extras)
}

func (l RollbarLogger) write(evt *zerolog.Event, msg string, args []interface{}) {
	for _, arg := range args {
		switch v := arg.(type) {
		case error:
			evt = evt.Err(v)
		case map[string]interface{}:
			evt = evt.Fields(v)
		case session.Session:
			evt = evt.Str("subject_id", v.SubjectID).Str("role", v.Role.String())
		default:
			evt = evt.Interface("detail", v)
		}
	}
	evt.Msg(msg)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.report(rollbar.DEBUG, msg, args)
	l.write(l.zl.Debug(), msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
	l.write(l.zl.Info(), msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
	l.write(l.zl.Warn(), msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
	l.write(l.zl.Error(), msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	l.client.Wait()
	l.write(l.zl.WithLevel(zerolog.FatalLevel), msg, args)
	os.Exit(1)
}
