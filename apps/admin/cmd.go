package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/youbihi/attest/core/attendance"
	"github.com/youbihi/attest/core/schedule"
	"github.com/youbihi/attest/core/user"
	"github.com/youbihi/attest/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *database.DB
	usrRepo  user.Repository
	schedSvc *schedule.Service
	attSvc   *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo - run database migrations")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - update or create a user. The password will be prompted.")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  ensurecalendar -start YYYY-MM-DD -end YYYY-MM-DD - provision calendar days over a date range")
	fmt.Println("  generatesessions -scope timetable|assignment|semester|class|institution -id ID [-start YYYY-MM-DD -end YYYY-MM-DD] - generate class sessions")
	fmt.Println("  cleanuptokens [-every DURATION] - delete stale attendance tokens, once or periodically")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all roles to the user.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	ensureCalendarCmd := flag.NewFlagSet("ensurecalendar", flag.ExitOnError)
	ensureCalendarStart := ensureCalendarCmd.String("start", "", "Range start date (YYYY-MM-DD), inclusive.")
	ensureCalendarEnd := ensureCalendarCmd.String("end", "", "Range end date (YYYY-MM-DD), inclusive.")

	generateSessionsCmd := flag.NewFlagSet("generatesessions", flag.ExitOnError)
	generateSessionsScope := generateSessionsCmd.String("scope", "", "Generation scope: timetable, assignment, semester, class or institution.")
	generateSessionsID := generateSessionsCmd.String("id", "", "ID of the scoped entity.")
	generateSessionsStart := generateSessionsCmd.String("start", "", "Range start date (YYYY-MM-DD), inclusive. Ignored for the semester scope.")
	generateSessionsEnd := generateSessionsCmd.String("end", "", "Range end date (YYYY-MM-DD), inclusive. Ignored for the semester scope.")

	cleanupTokensCmd := flag.NewFlagSet("cleanuptokens", flag.ExitOnError)
	cleanupTokensEvery := cleanupTokensCmd.Duration("every", 0, "Re-run the cleanup on this interval instead of once.")

	switch args[1] {
	case "migrate":
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "ensurecalendar":
		if err := ensureCalendarCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *ensureCalendarStart == "" || *ensureCalendarEnd == "" {
			ensureCalendarCmd.Usage()
			return errHelp
		}
		return cli.ensureCalendar(*ensureCalendarStart, *ensureCalendarEnd)

	case "generatesessions":
		if err := generateSessionsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *generateSessionsScope == "" || *generateSessionsID == "" {
			generateSessionsCmd.Usage()
			return errHelp
		}
		return cli.generateSessions(*generateSessionsScope, *generateSessionsID, *generateSessionsStart, *generateSessionsEnd)

	case "cleanuptokens":
		if err := cleanupTokensCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.cleanupTokens(*cleanupTokensEvery)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
