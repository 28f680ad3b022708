package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/user"
	"github.com/trezcool/masomo-portal/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

// addUser provisions a new active identity.
func (cli *commandLine) addUser(id, role, name, pwd string) error {
	usr, err := cli.provisioner.Create(context.Background(), user.NewUser{
		ID:              id,
		Name:            name,
		Role:            user.Role(role),
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	if err != nil {
		return err
	}
	logger.Printf("created %s (%s)", usr.ID, usr.Role)
	return nil
}

func (cli *commandLine) resetPassword(id, pwd string) error {
	if err := cli.provisioner.ResetPassword(context.Background(), id, pwd); err != nil {
		return err
	}
	logger.Printf("password of %s reset", user.CleanID(id))
	return nil
}

func (cli *commandLine) migrate(args []string) error {
	db, err := cli.openDB()
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	if db != nil {
		defer func() { _ = db.Close() }()
	}
	return gooseRunFunc(db, args[0], args[1:]...)
}
