package main

import (
	"context"
	"fmt"
	"time"

	"github.com/youbihi/attest/core"
	"github.com/youbihi/attest/core/schedule"
)

func (cli *commandLine) generateSessions(scope, id, start, end string) error {
	scope = core.CleanString(scope, true /* lower */)

	var startDate, endDate time.Time
	var err error
	if scope != "semester" {
		if startDate, err = parseDate(start); err != nil {
			return err
		}
		if endDate, err = parseDate(end); err != nil {
			return err
		}
	}

	var created []schedule.Session
	ctx := context.Background()
	switch scope {
	case "timetable":
		created, err = cli.schedSvc.GenerateForTimeTable(ctx, id, startDate, endDate)
	case "assignment":
		created, err = cli.schedSvc.GenerateForAssignment(ctx, id, startDate, endDate)
	case "semester":
		created, err = cli.schedSvc.GenerateForSemester(ctx, id)
	case "class":
		created, err = cli.schedSvc.GenerateForClass(ctx, id, startDate, endDate)
	case "institution":
		created, err = cli.schedSvc.GenerateForInstitution(ctx, id, startDate, endDate)
	default:
		return fmt.Errorf("%q: no such scope", scope)
	}
	if err != nil {
		return err
	}

	logger.Printf("%d session(s) generated", len(created))
	return nil
}
