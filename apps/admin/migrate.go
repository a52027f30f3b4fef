package main

import (
	"fmt"
	"strconv"

	"github.com/trezcool/goose"

	appfs "github.com/youbihi/attest/fs"
)

// mockable
var (
	gooseUpFunc      = goose.Up
	gooseUpByOneFunc = goose.UpByOne
	gooseUpToFunc    = goose.UpTo
	gooseDownFunc    = goose.Down
	gooseDownToFunc  = goose.DownTo
	gooseRedoFunc    = goose.Redo
)

func (cli *commandLine) migrate(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	db := cli.db.DB
	switch cmd := args[0]; cmd {
	case "up":
		return gooseUpFunc(db, appfs.FS, "migrations")
	case "up-by-one":
		return gooseUpByOneFunc(db, appfs.FS, "migrations")
	case "up-to":
		version, err := migrationVersion(cmd, args[1:])
		if err != nil {
			return err
		}
		return gooseUpToFunc(db, appfs.FS, "migrations", version)
	case "down":
		return gooseDownFunc(db, appfs.FS, "migrations")
	case "down-to":
		version, err := migrationVersion(cmd, args[1:])
		if err != nil {
			return err
		}
		return gooseDownToFunc(db, appfs.FS, "migrations", version)
	case "redo":
		return gooseRedoFunc(db, appfs.FS, "migrations")
	default:
		return fmt.Errorf("%q: no such command", cmd)
	}
}

func migrationVersion(cmd string, args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s must be of form: migrate %s VERSION", cmd, cmd)
	}
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("version must be a number (got '%s')", args[0])
	}
	return version, nil
}
