package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arthur-debert/bundler/pkg/telemetry"
	"github.com/arthur-debert/bundler/pkg/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	b := &buildOptions{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: MsgWatchShort,
		Long:  MsgWatchLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(opts, b.apply(cmd))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debounce") {
				proj.cfg.Watch.Debounce = debounce
			}

			shutdown, err := telemetry.Setup(opts.trace || proj.cfg.Build.Trace, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(context.Background()) }()

			p, err := proj.newPipeline(false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			w := watch.New(p, proj.cfg.Source.Dir, proj.cfg.Watch.Debounce,
				watch.WithSkipDir(proj.cfg.Output.Dir),
				watch.WithSkipDir(proj.cfg.Cache.Dir),
				watch.WithOnBuild(func(r watch.Report) {
					if len(r.Changed) > 0 {
						fmt.Fprintf(out, MsgWatchRebuilding+"\n", len(r.Changed))
					}
					fmt.Fprintln(out, renderer.RenderBuild(r.Result, r.Err))
				}),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := w.Run(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), MsgWatchStopped)
			return nil
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, MsgFlagDebounce)
	b.register(cmd)
	return cmd
}
