package main

import "context"

func (cli *commandLine) ensureCalendar(start, end string) error {
	startDate, err := parseDate(start)
	if err != nil {
		return err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return err
	}

	created, err := cli.schedSvc.EnsureCalendarRange(context.Background(), startDate, endDate)
	if err != nil {
		return err
	}
	logger.Printf("calendar provisioned: %d day(s) created", created)
	return nil
}
