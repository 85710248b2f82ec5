package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Swind/go-executor/core"
)

func newComposeCmd(opts *rootOptions) *cobra.Command {
	var step time.Duration

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Learn a song, then sing it, while dancing",
		Long: "compose chains two timed steps with Then and joins the chain with a\n" +
			"third step, all inside one task. The total time is the longer branch,\n" +
			"not the sum of all three.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}

			// Outside any executor.
			fmt.Fprintln(a.out, core.BlockOn(core.FromFunc(func() string { return "hello, world!" })))

			exec, spawner := a.newScheduler()
			start := time.Now()

			learnSong := core.Map(core.Sleep(3*step), func(core.Unit) string {
				fmt.Fprintln(a.out, "learned the song")
				return "Never Gonna Give You Up"
			})
			sing := func(song string) core.Future[core.Unit] {
				return core.Map(core.Sleep(step), func(core.Unit) core.Unit {
					fmt.Fprintf(a.out, "sang %q\n", song)
					return core.Unit{}
				})
			}
			dance := core.Map(core.Sleep(2*step), func(core.Unit) core.Unit {
				fmt.Fprintln(a.out, "danced")
				return core.Unit{}
			})

			performance := core.Join2(core.Then(learnSong, sing), dance)
			handle := core.SpawnWithHandle(spawner, core.Map(performance, func(core.Pair[core.Unit, core.Unit]) time.Duration {
				return time.Since(start)
			}))
			spawner.Close()

			if err := a.run(cmd.Context(), exec); err != nil {
				return err
			}

			took, err := handle.Wait(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "performance took %v\n", took.Round(time.Millisecond))
			a.printStats(exec)
			return nil
		},
	}

	cmd.Flags().DurationVar(&step, "step", 100*time.Millisecond, "Unit of time for each step")
	return cmd
}
