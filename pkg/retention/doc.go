// Package retention enforces age-based retention on event stores.
//
// A Pruner deletes events older than the configured retention period from
// any store exposing the pruning capability; a Scheduler runs the pruner on
// a cron expression.
//
//	pruner := retention.NewPruner(store, &retention.Config{
//	    RetentionDays: 30,
//	    PruneSchedule: "0 3 * * *", // Daily at 3 AM
//	})
//	sched := retention.NewScheduler(pruner)
//	if err := sched.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer sched.Stop()
//
// A retention period of 0 disables pruning; an empty schedule disables the
// scheduler.
package retention
