package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Swind/go-executor/core"
)

func newTimersCmd(opts *rootOptions) *cobra.Command {
	var (
		count    int
		maxDelay time.Duration
		shared   bool
	)

	cmd := &cobra.Command{
		Use:   "timers",
		Short: "Spawn timer tasks and report when each fires",
		Long: "timers spawns --count tasks that each wait on a timer, longest first,\n" +
			"so they complete in the reverse of their spawn order. With --shared all\n" +
			"deadlines go through one DelayManager goroutine instead of one goroutine\n" +
			"per timer.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			if maxDelay < 0 {
				return fmt.Errorf("--max-delay must not be negative, got %v", maxDelay)
			}

			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			if count > a.cfg.Executor.QueueCapacity {
				return fmt.Errorf("--count %d exceeds the queue capacity %d", count, a.cfg.Executor.QueueCapacity)
			}

			exec, spawner := a.newScheduler()

			sleep := core.Sleep
			var delays []*core.DelayManager
			if shared {
				dm := core.NewDelayManager()
				defer dm.Stop()
				sleep = dm.Sleep
				delays = append(delays, dm)
			}

			start := time.Now()
			fmt.Fprintln(a.out, "start!")
			for i := range count {
				delay := maxDelay * time.Duration(count-i) / time.Duration(count)
				name := fmt.Sprintf("timer-%d", i)
				spawner.SpawnNamed(name, core.Map(sleep(delay), func(core.Unit) core.Unit {
					fmt.Fprintf(a.out, "%s (%v) fired after %v\n", name, delay, time.Since(start).Round(time.Millisecond))
					return core.Unit{}
				}))
			}
			spawner.Close()

			if err := a.run(cmd.Context(), exec, delays...); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "done!")
			a.printStats(exec)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 5, "Number of timer tasks")
	cmd.Flags().DurationVar(&maxDelay, "max-delay", 2*time.Second, "Delay of the first (longest) timer")
	cmd.Flags().BoolVar(&shared, "shared", false, "Use one shared DelayManager for every timer")
	return cmd
}
