package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/pfrederiksen/club-fixtures/internal/logger"
	"github.com/robfig/cron/v3"
)

// runScheduled runs job once immediately and then on every tick of spec
// until ctx is cancelled. A tick that fires while the previous run is still
// going is skipped.
func runScheduled(ctx context.Context, spec string, loc *time.Location, job func(context.Context)) error {
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	id, err := c.AddFunc(spec, func() { job(ctx) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	job(ctx)

	c.Start()
	logger.Info("Scheduler started", logger.Fields{
		"schedule": spec,
		"next_run": c.Entry(id).Next.Format(time.RFC3339),
	})

	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("Scheduler stopped", nil)
	return nil
}

// cronLogger routes scheduler messages to the structured logger
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, cronFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, cronFields(keysAndValues), err)
}

func cronFields(keysAndValues []interface{}) logger.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make(logger.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = fmt.Sprint(keysAndValues[i+1])
	}
	return fields
}
