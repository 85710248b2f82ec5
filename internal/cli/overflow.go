package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Swind/go-executor/core"
)

func newOverflowCmd(opts *rootOptions) *cobra.Command {
	var (
		capacity int
		tasks    int
		fatal    bool
	)

	cmd := &cobra.Command{
		Use:   "overflow",
		Short: "Spawn more tasks than the ready queue holds",
		Long: "overflow queues --tasks tasks into a queue of --capacity slots before\n" +
			"the executor starts. By default the extra spawns are rejected through\n" +
			"TrySpawn; with --fatal, Spawn is used and the first extra task aborts\n" +
			"the run with a queue overflow error.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if capacity <= 0 || tasks < 0 {
				return fmt.Errorf("--capacity must be positive and --tasks not negative")
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			a.cfg.Executor.QueueCapacity = capacity

			exec, spawner := a.newScheduler()

			if fatal {
				if err := spawnAll(spawner, tasks); err != nil {
					spawner.Close()
					return err
				}
			} else {
				accepted, rejected := 0, 0
				for range tasks {
					switch err := spawner.TrySpawn(core.Yield()); {
					case err == nil:
						accepted++
					case errors.Is(err, core.ErrQueueFull):
						rejected++
					default:
						spawner.Close()
						return err
					}
				}
				fmt.Fprintf(a.out, "accepted=%d rejected=%d\n", accepted, rejected)
			}
			spawner.Close()

			if err := a.run(cmd.Context(), exec); err != nil {
				return err
			}
			a.printStats(exec)
			return nil
		},
	}

	cmd.Flags().IntVar(&capacity, "capacity", 8, "Ready queue capacity")
	cmd.Flags().IntVar(&tasks, "tasks", 12, "Number of tasks to spawn")
	cmd.Flags().BoolVar(&fatal, "fatal", false, "Use Spawn and treat overflow as fatal")
	return cmd
}

// spawnAll spawns n tasks with Spawn and converts an overflow panic into an
// error.
func spawnAll(spawner *core.Spawner, n int) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var overflow *core.QueueOverflowError
			if e, ok := rec.(error); ok && errors.As(e, &overflow) {
				err = fmt.Errorf("fatal: %w", overflow)
				return
			}
			panic(rec)
		}
	}()

	for range n {
		spawner.Spawn(core.Yield())
	}
	return nil
}
