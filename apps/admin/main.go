package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	dig_container "github.com/trezcool/masomo-portal/apps/api/di/dig"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/user"
	"github.com/trezcool/masomo-portal/storage/database"
)

var logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags)

func main() {
	c := dig_container.New()

	err := c.Invoke(func(
		conf *core.Config,
		repo user.Writer,
		validate *validator.Validate,
		translator ut.Translator,
		closersParam dig_container.ClosersParam,
	) error {
		defer func() {
			for _, closer := range closersParam.Closers {
				_ = closer()
			}
		}()

		cli := commandLine{
			provisioner: user.NewProvisioner(repo, validate),
			persistent:  conf.Database.Persistent(),
			openDB: func() (*sql.DB, error) {
				if conf.Database.Driver != "postgres" {
					return nil, errors.Errorf("migrations need the postgres driver (got %q)", conf.Database.Driver)
				}
				db, err := database.Open(conf)
				if err != nil {
					return nil, err
				}
				return db.DB, nil
			},
		}
		if err := cli.run(os.Args); err != nil {
			if errors.Cause(err) != errHelp {
				logger.Printf("\nerror: %s\n", describe(err, translator))
			}
			return err
		}
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

// describe flattens validation errors into one line per field.
func describe(err error, translator ut.Translator) string {
	fields, ok := core.FieldErrors(err, translator)
	if !ok {
		return err.Error()
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	s := "invalid input:"
	for _, name := range names {
		s += fmt.Sprintf("\n  %s: %s", name, fields[name])
	}
	return s
}
