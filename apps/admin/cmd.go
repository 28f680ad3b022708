package main

import (
	"bytes"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/trezcool/masomo-portal/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp             = errors.New("help provided")
	errPasswordMismatch = errors.New("passwords do not match")
	errVolatileStore    = errors.New("identities would be lost on exit: set database.driver to postgres or mongo")
)

type commandLine struct {
	provisioner *user.Provisioner
	persistent  bool                    // adduser and resetpassword refuse to run otherwise
	openDB      func() (*sql.DB, error) // only needed by migrate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -id ID -role ROLE -name NAME - create an identity (the password is prompted)")
	fmt.Println("  resetpassword -id ID                 - reset an identity's password")
	fmt.Println("  migrate COMMAND [ARGS]               - run a goose migration command (up, down, status, ...)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserID := addUserCmd.String("id", "", "The identity's ID, its prefix must match the role (e.g. STU123).")
	addUserRole := addUserCmd.String("role", "", "One of: student, teacher, parent, admin, exams-officer, admission-officer, finance-officer, media-officer.")
	addUserName := addUserCmd.String("name", "", "The identity's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordID := resetPasswordCmd.String("id", "", "The identity's ID. The password will be prompted next.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserID == "" || *addUserRole == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		if !cli.persistent {
			return errVolatileStore
		}
		pwd, err := promptPassword(true)
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserID, *addUserRole, *addUserName, pwd)
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordID == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		if !cli.persistent {
			return errVolatileStore
		}
		pwd, err := promptPassword(false)
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordID, pwd)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword(confirm bool) (string, error) {
	fd := int(os.Stdin.Fd())
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if !confirm || len(pwd) == 0 {
		return string(pwd), nil
	}

	fmt.Print("Confirm password:")
	again, err := readPasswordFunc(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if !bytes.Equal(pwd, again) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}
