package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/bundler/pkg/config"
	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: MsgInitShort,
		Long:  MsgInitLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(opts.dir)
			if err != nil {
				return fmt.Errorf(MsgErrAbsPath, err)
			}
			path := opts.configPath
			if path == "" {
				path = config.FileNames[0]
			}
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}

			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.ErrAlreadyExists, MsgErrConfigExists, path)
			}

			data, err := config.GenerateStarter()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
			}

			log.Info().Str("path", path).Msg("Wrote starter configuration")
			fmt.Fprintf(cmd.OutOrStdout(), MsgInitCreated, path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}
