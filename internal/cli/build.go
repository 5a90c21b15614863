package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/arthur-debert/bundler/pkg/config"
	"github.com/arthur-debert/bundler/pkg/telemetry"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	dryRun       bool
	out          string
	workers      int
	partial      bool
	requireMatch bool
}

// apply copies the flags the user set over the loaded configuration.
// Relative paths are resolved against the project directory.
func (b *buildOptions) apply(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("out") {
			cfg.Output.Dir = b.out
			if !filepath.IsAbs(b.out) {
				cfg.Output.Dir = filepath.Join(cfg.Root, b.out)
			}
		}
		if flags.Changed("workers") {
			cfg.Build.Workers = b.workers
		}
		if flags.Changed("partial") {
			cfg.Policy.PartialManifest = b.partial
		}
		if flags.Changed("require-match") {
			cfg.Policy.RequireMatch = b.requireMatch
		}
	}
}

func (b *buildOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&b.out, "out", "o", "", MsgFlagOut)
	cmd.Flags().IntVarP(&b.workers, "workers", "j", 0, MsgFlagWorkers)
	cmd.Flags().BoolVar(&b.partial, "partial", false, MsgFlagPartial)
	cmd.Flags().BoolVar(&b.requireMatch, "require-match", false, MsgFlagRequire)
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	b := &buildOptions{}

	cmd := &cobra.Command{
		Use:     "build",
		Short:   MsgBuildShort,
		Long:    MsgBuildLong,
		Example: MsgBuildExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer(cmd)
			if err != nil {
				return err
			}
			proj, err := loadProject(opts, b.apply(cmd))
			if err != nil {
				return err
			}

			shutdown, err := telemetry.Setup(opts.trace || proj.cfg.Build.Trace, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = shutdown(context.Background()) }()

			p, err := proj.newPipeline(b.dryRun)
			if err != nil {
				return err
			}

			log.Info().
				Str("source", proj.cfg.Source.Dir).
				Str("output", proj.cfg.Output.Dir).
				Bool("dry_run", b.dryRun).
				Msg("Building")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			res, err := p.Run(ctx)
			fmt.Fprintln(cmd.OutOrStdout(), renderer.RenderBuild(res, err))
			if b.dryRun {
				fmt.Fprintln(cmd.ErrOrStderr(), MsgDryRunNotice)
			}
			if err != nil {
				return reportedError{err}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&b.dryRun, "dry-run", false, MsgFlagDryRun)
	b.register(cmd)
	return cmd
}
