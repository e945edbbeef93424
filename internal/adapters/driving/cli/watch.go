package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scheduled imports until interrupted",
	Long: `Runs the import scheduler in the foreground. Every sweep visits each
configured entity: entities with a stored watermark get a delta import,
entities without one get their first full import.

The configuration file is watched while running; edits are applied by
restarting the scheduler between sweeps.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

// watchInterval is a flag for the watch command. Zero keeps the
// configured interval.
var watchInterval time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Sweep interval, overriding the configuration")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if schedulerService == nil {
		return errors.New("scheduler not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Config edits land here; the run loop drains it between scheduler
	// restarts. The watcher goroutine is the only sender, so replacing a
	// pending config never blocks.
	reloads := make(chan domain.Config, 1)
	if configStore != nil {
		go func() {
			err := configStore.Watch(ctx,
				func(cfg domain.Config) {
					select {
					case <-reloads:
					default:
					}
					reloads <- cfg
				},
				func(err error) {
					cmd.PrintErrf("config watch: %v\n", err)
				})
			if err != nil && ctx.Err() == nil {
				cmd.PrintErrf("config watch stopped: %v\n", err)
			}
		}()
	}

	cmd.Println("Watching for scheduled imports. Press Ctrl+C to stop.")

	for {
		startErr := make(chan error, 1)
		go func(s driving.Scheduler) {
			startErr <- s.Start(ctx)
		}(schedulerService)

		select {
		case cfg := <-reloads:
			if err := schedulerService.Stop(); err != nil {
				cmd.PrintErrf("stopping scheduler: %v\n", err)
			}
			// Wait for the sweep in flight before rewiring.
			<-startErr
			if rebuildFn == nil {
				continue
			}
			if err := rebuildFn(cfg); err != nil {
				cmd.PrintErrf("applying reloaded configuration: %v\n", err)
				continue
			}
			cmd.Printf("Configuration reloaded: %d entities.\n", len(cfg.Entities))
		case err := <-startErr:
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				cmd.Println("\nStopped.")
				return nil
			}
			if err != nil {
				return err
			}
			return errors.New("schedule is disabled; enable it in the configuration or pass --interval")
		}
	}
}
