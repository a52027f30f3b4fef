package main

import (
	"context"
	"time"
)

// cleanupTokens deletes stale attendance tokens, once or on a ticker when
// every is positive. The periodic mode only stops on a fatal error.
func (cli *commandLine) cleanupTokens(every time.Duration) error {
	ctx := context.Background()

	run := func() error {
		deleted, err := cli.attSvc.CleanupExpiredTokens(ctx)
		if err != nil {
			return err
		}
		logger.Printf("%d stale token(s) deleted", deleted)
		return nil
	}

	if every <= 0 {
		return run()
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		if err := run(); err != nil {
			return err
		}
		<-ticker.C
	}
}
