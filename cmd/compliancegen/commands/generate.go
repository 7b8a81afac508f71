package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/cmd/compliancegen/generate"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

// loadConfig reads the config at path, - for stdin, or returns the
// defaults if path is empty.
func loadConfig(path string) (*config.Options, error) {
	if path == "" {
		opts := config.DefaultOptions()
		return opts, config.Complete(opts)
	}

	var b []byte
	var err error

	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
		cli.Verboseln("Using config from stdin.")
	} else {
		b, err = os.ReadFile(path)
		cli.Verboseln("Using config from \"" + path + "\".")
	}
	if err != nil {
		return nil, err
	}

	return config.Load(b)
}

func init() {
	genOpts := &config.GenerateOptions{}

	var success bool

	generateCmd := &cobra.Command{
		Use:          "generate [flags] [input]...",
		Short:        "Generate code",
		Aliases:      []string{"gen"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if success {
				cli.Successln("All done!")
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if genOpts.OutPath == "" || genOpts.OutPath == "-" {
				cli.Silent = true
			}

			if genOpts.ConfigPath != "" && genOpts.ConfigPath != "-" {
				if absConfig, err := filepath.Abs(genOpts.ConfigPath); err == nil {
					genOpts.ConfigPath = absConfig
				}
			}

			logger := cli.NewLogger()
			defer logger.Sync() // nolint:errcheck

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if genOpts.Watch {
				if genOpts.ConfigPath == "-" {
					opts, err := loadConfig("-")
					if err != nil {
						return err
					}
					return generate.Watch(ctx, genOpts, func() (*config.Options, error) {
						return opts, nil
					}, args, logger)
				}

				return generate.Watch(ctx, genOpts, func() (*config.Options, error) {
					return loadConfig(genOpts.ConfigPath)
				}, args, logger)
			}

			opts, err := loadConfig(genOpts.ConfigPath)
			if err != nil {
				return err
			}

			if err := generate.Generate(ctx, genOpts, opts, args, logger); err != nil {
				return err
			}

			success = true
			return nil
		},
	}
	generateCmd.Flags().StringVarP(&genOpts.ConfigPath, "config", "c", "", "path to the configuration file or - for stdin")
	generateCmd.Flags().StringVarP(&genOpts.OutPath, "out", "o", "", "the output directory or - for stdout")
	generateCmd.Flags().BoolVarP(&genOpts.Yes, "yes", "y", false, "answer to all prompts with yes")
	generateCmd.Flags().BoolVarP(&genOpts.Recursive, "recursive", "r", false, "read input directories recursively")
	generateCmd.Flags().StringVarP(&genOpts.Targets, "targets", "t", "", "targets to generate in the following format: \"java:evidence+annotations,go\", this overrides the values in the config")
	generateCmd.Flags().BoolVarP(&genOpts.NoCheck, "no-check", "", false, "do not check the generated code")
	generateCmd.Flags().BoolVarP(&genOpts.CheckOnly, "check-only", "", false, "only verify that the output directory is up to date, writing nothing")
	generateCmd.Flags().BoolVarP(&genOpts.Watch, "watch", "w", false, "generate again whenever an input changes")
	generateCmd.Flags().DurationVarP(&genOpts.Timeout, "timeout", "", 0, "abort a generation taking longer than this")

	rootCmd.AddCommand(generateCmd)
}
