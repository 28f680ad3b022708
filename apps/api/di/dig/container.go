package dig_container

import (
	"context"
	"fmt"
	"log"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/masomo-portal/apps/api/echo"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/dashboard"
	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/core/user"
	logsvc "github.com/trezcool/masomo-portal/services/logger"
	"github.com/trezcool/masomo-portal/storage/database"
	"github.com/trezcool/masomo-portal/storage/database/inmem"
	"github.com/trezcool/masomo-portal/storage/database/mongo"
	"github.com/trezcool/masomo-portal/storage/database/sqlx"
	"github.com/trezcool/masomo-portal/storage/sessions/inmem"
	"github.com/trezcool/masomo-portal/storage/sessions/redis"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Closer releases a resource when the application stops.
type Closer func() error

type (
	repositoryResult struct {
		dig.Out
		Repo   user.Writer
		Closer Closer `group:"closers"`
	}

	sessionStoreResult struct {
		dig.Out
		Store  session.Store
		Closer Closer `group:"closers"`
	}

	// ClosersParam collects every Closer provided to the container.
	ClosersParam struct {
		dig.In
		Closers []Closer `group:"closers"`
	}
)

func noopCloser() error { return nil }

func newZerolog(conf *core.Config) zerolog.Logger {
	return logsvc.NewZerolog(logsvc.Options{Level: conf.LogLevel, Pretty: conf.Debug})
}

func newLogger(zl zerolog.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.With().Str("component", "api").Logger(), conf)
}

func newDBLogger(zl zerolog.Logger, conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(zl.With().Str("component", "db").Logger(), conf)
}

// newUserRepository opens the configured credential store.
func newUserRepository(conf *core.Config, loggerParam DBLoggerParam) repositoryResult {
	logger := loggerParam.Logger
	var repo user.Writer
	closer := Closer(noopCloser)

	switch conf.Database.Driver {
	case "postgres":
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		if err = database.Migrate(db.DB); err != nil {
			logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
		}
		repo = sqlxrepos.NewUserRepository(db)
		closer = db.Close
	case "mongo":
		client, db, err := mongodb.Connect(context.Background(), conf.Database.MongoURI, conf.Database.MongoName)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		repo = mongodb.NewUserRepository(db)
		closer = func() error { return client.Disconnect(context.Background()) }
	default:
		repo = inmemdb.NewUserRepository(inmemdb.Open())
	}

	if conf.SeedsDemo() {
		n, err := database.SeedDemo(context.Background(), repo)
		if err != nil {
			logger.Fatal(fmt.Sprintf("seeding demo identities: %v", err), err)
		}
		logger.Info(fmt.Sprintf("seeded %d demo identities", n))
	}
	return repositoryResult{Repo: repo, Closer: closer}
}

func newSessionStore(conf *core.Config, loggerParam DBLoggerParam) sessionStoreResult {
	if conf.Session.Store != "redis" {
		return sessionStoreResult{Store: inmemsessions.NewStore(), Closer: noopCloser}
	}

	client := redis.NewClient(&redis.Options{Addr: conf.Session.RedisAddr, DB: conf.Session.RedisDB})
	if err := client.Ping(context.Background()).Err(); err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
	}
	return sessionStoreResult{Store: redisessions.NewStore(client, conf.Session.KeyPrefix), Closer: client.Close}
}

func newSessionManager(conf *core.Config, store session.Store) *session.Manager {
	return session.NewManager(session.Options{
		Store:  store,
		Signer: session.NewSigner(conf.SecretKey, conf.AppName),
		TTL:    conf.Session.TTL,
	})
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	AccessLog  zerolog.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Auth       *user.Service
	Sessions   *session.Manager
	Router     *dashboard.Router
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.Options{
		Address:      p.Conf.Server.Address,
		AppName:      p.Conf.AppName,
		Debug:        p.Conf.Debug,
		CookieName:   p.Conf.Session.CookieName,
		CookieSecure: p.Conf.Session.CookieSecure,
		Logger:       p.Logger,
		AccessLog:    p.AccessLog,
		Validate:     p.Validate,
		Translator:   p.Translator,
		Auth:         p.Auth,
		Sessions:     p.Sessions,
		Router:       p.Router,
	})
}

func newAuthService(repo user.Writer) (*user.Service, error) {
	return user.NewService(repo)
}

type NewConfigFunc func() *core.Config

// New returns a new dependency injection dig.Container
func New(newConfig ...NewConfigFunc) *dig.Container {
	c := dig.New()

	confFunc := NewConfigFunc(core.NewConfig)
	if len(newConfig) > 0 {
		confFunc = newConfig[0]
	}

	must(c.Provide(confFunc))
	must(c.Provide(newZerolog))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newUserRepository))
	must(c.Provide(newSessionStore))
	must(c.Provide(newSessionManager))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newAuthService))
	must(c.Provide(dashboard.NewRouter))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
