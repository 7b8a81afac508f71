package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/cmd/compliancegen/generate"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/engine"
	"github.com/fluohq/compliancegen/pkg/ident"
	"github.com/fluohq/compliancegen/pkg/util"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

var grammars = []ident.Grammar{ident.Java, ident.Go, ident.Python, ident.TypeScript}

func init() {
	inspectOpts := &config.InspectOptions{}

	inspectCmd := &cobra.Command{
		Use:          "inspect [flags] [input]...",
		Short:        "Show the controls of frameworks and their identifiers in every language",
		Aliases:      []string{"i"},
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadConfig(inspectOpts.ConfigPath)
			if err != nil {
				return err
			}

			frameworks, err := generate.Load(context.Background(), opts, args, inspectOpts.Recursive)
			if err != nil {
				return err
			}

			if inspectOpts.Dump {
				spew.Config.SortKeys = true
				spew.Fdump(os.Stdout, frameworks)
				return nil
			}

			if err := engine.Validate(frameworks); err != nil {
				cli.Warningln(err)
			}

			return printFrameworks(os.Stdout, frameworks)
		},
	}

	inspectCmd.Flags().StringVarP(&inspectOpts.ConfigPath, "config", "c", "", "path to the configuration file or - for stdin")
	inspectCmd.Flags().BoolVarP(&inspectOpts.Recursive, "recursive", "r", false, "read input directories recursively")
	inspectCmd.Flags().BoolVarP(&inspectOpts.Dump, "dump", "", false, "dump the parsed frameworks instead")

	rootCmd.AddCommand(inspectCmd)
}

func printFrameworks(out io.Writer, frameworks []*control.Framework) error {
	for i, fw := range frameworks {
		if i > 0 {
			fmt.Fprintln(out)
		}

		fmt.Fprintf(out, "%v (%v, %v)\n", fw.ID, fw.DisplayName(), util.Plural(len(fw.Controls), "control"))

		tables := make([]*ident.Table, len(grammars))
		for gi, g := range grammars {
			t, err := ident.Build(g, fw.ControlIDs())
			if err != nil {
				fmt.Fprintf(out, "\t%v: %v\n", g, err)
				continue
			}
			tables[gi] = t
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

		fmt.Fprint(w, "\tID\tRISK")
		for _, g := range grammars {
			fmt.Fprintf(w, "\t%v", g)
		}
		fmt.Fprintln(w)

		for _, c := range fw.Controls {
			fmt.Fprintf(w, "\t%q\t%v", c.ID, c.RiskLevel)
			for _, t := range tables {
				name := "-"
				if t != nil {
					if n, ok := t.Lookup(c.ID); ok {
						name = n
					}
				}
				fmt.Fprintf(w, "\t%v", name)
			}
			fmt.Fprintln(w)
		}

		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}
