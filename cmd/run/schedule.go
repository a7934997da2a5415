package run

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// runSchedule repeats job on a cron spec until ctx is done or maxRuns runs have completed.
// Overlapping ticks are skipped. maxRuns <= 0 means no limit.
func runSchedule(ctx context.Context, spec string, maxRuns int, job func(ctx context.Context) error, log zerolog.Logger) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runs atomic.Int64
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(time.Local),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(schedule, cron.FuncJob(func() {
		n := runs.Add(1)
		if maxRuns > 0 && n > int64(maxRuns) {
			return
		}

		log.Info().Int64("run", n).Msg("Scheduled run starting")
		if err := job(runCtx); err != nil {
			log.Error().Err(err).Int64("run", n).Msg("Scheduled run failed")
		}

		if maxRuns > 0 && n >= int64(maxRuns) {
			cancel()
		}
	}))

	c.Start()
	log.Info().Str("spec", spec).Time("next", schedule.Next(time.Now())).Msg("Scheduler started")

	<-runCtx.Done()
	<-c.Stop().Done()

	// reaching maxRuns is a normal stop; only the caller's cancellation is reported
	return ctx.Err()
}
