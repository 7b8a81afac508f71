package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/pkg/common"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/parser"
	"github.com/fluohq/compliancegen/pkg/transformer"
	"github.com/fluohq/compliancegen/pkg/util"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

const configComment = "# Generated config file for compliancegen, a compliance evidence code generator.\n\n"

func init() {
	getCmd := &cobra.Command{
		Use:          "get [target]",
		Short:        "Get available values",
		SilenceUsage: false,
	}

	getOpts := &config.GetOptions{}

	getConfigCmd := &cobra.Command{
		Use:          "configuration",
		Short:        "Provides an example configuration",
		Aliases:      []string{"c", "conf", "config"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if getOpts.OutPath == "" || getOpts.OutPath == "-" {
				cli.Silent = true
			}

			if getOpts.NoComments {
				util.DisableYAMLMarshalComments = true
			}

			conf := config.DefaultOptions()
			if getOpts.All {
				conf = config.AllOptions()
			}

			b, err := marshalYAML(conf)
			if err != nil {
				return err
			}

			if getOpts.OutPath == "" || getOpts.OutPath == "-" {
				fmt.Print(configComment + string(b))
				return nil
			}

			return writeConfig(getOpts, []byte(configComment+string(b)))
		},
	}

	getConfigCmd.Flags().BoolVarP(&getOpts.NoComments, "no-comments", "", false, "Disables all comments")
	getConfigCmd.Flags().StringVarP(&getOpts.OutPath, "out", "o", "", "the output file")
	getConfigCmd.Flags().BoolVarP(&getOpts.All, "all", "a", false, "include all possible values")
	getConfigCmd.Flags().BoolVarP(&getOpts.Force, "force", "f", false, "force overwriting files")

	getParsersCmd := &cobra.Command{
		Use:          "parsers",
		Short:        "List all parsers",
		Aliases:      []string{"p", "parser", "parse"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printParsers()
		},
	}

	getTransformersCmd := &cobra.Command{
		Use:          "transformers",
		Short:        "List all transformers",
		Aliases:      []string{"t", "trans", "transform"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printTransformers()
		},
	}

	getGeneratorsCmd := &cobra.Command{
		Use:          "generators",
		Short:        "List all generators",
		Aliases:      []string{"g", "gen", "generator"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printGenerators()
		},
	}

	getAllCmd := &cobra.Command{
		Use:          "all",
		Short:        "List all components",
		Aliases:      []string{"a"},
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			printParsers()
			fmt.Println()
			printTransformers()
			fmt.Println()
			printGenerators()
		},
	}

	getDocsCmd := &cobra.Command{
		Use:          "docs [component]",
		Short:        "Print the documentation of a component",
		Aliases:      []string{"d", "doc"},
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, ok := docs(strings.ToLower(args[0]))
			if !ok {
				return fmt.Errorf(`component with name "%v" not found`, args[0])
			}
			fmt.Print(md)
			return nil
		},
	}

	getCmd.AddCommand(getAllCmd)
	getCmd.AddCommand(getGeneratorsCmd)
	getCmd.AddCommand(getTransformersCmd)
	getCmd.AddCommand(getParsersCmd)
	getCmd.AddCommand(getConfigCmd)
	getCmd.AddCommand(getDocsCmd)

	rootCmd.AddCommand(getCmd)
}

// docs returns the documentation of the generator, parser or
// transformer with the given name, in this order.
func docs(name string) (string, bool) {
	if g, ok := config.FindGenerator(name); ok {
		md, ok := g.(common.DescriptionMarkdown)
		if !ok {
			return g.Description() + "\n", true
		}
		return md.DescriptionMarkdown(), true
	}
	if p, ok := parser.Find(config.Parsers, name); ok {
		return p.DescriptionMarkdown(), true
	}
	if t, ok := transformer.Find(config.Transformers, name); ok {
		return t.DescriptionMarkdown(), true
	}
	return "", false
}

func writeConfig(getOpts *config.GetOptions, b []byte) error {
	if !getOpts.Force {
		if _, err := os.Stat(getOpts.OutPath); err == nil {
			return fmt.Errorf("file already exists, use \"-f\" to force overwrite")
		}
	}

	if info, err := os.Stat(getOpts.OutPath); err == nil && info.IsDir() {
		return fmt.Errorf("output path should be a file, not a directory")
	}

	if err := os.MkdirAll(filepath.Dir(getOpts.OutPath), os.ModePerm); err != nil {
		return err
	}

	if err := os.WriteFile(getOpts.OutPath, b, 0o644); err != nil {
		return err
	}

	cli.Successf("%v written.\n", getOpts.OutPath)
	return nil
}

func printComponents[T common.Component](title string, components []T, extra func(T) string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)

	cli.Infof("Available %v: %v\n", title, strings.Join(common.Names(components), ", "))
	for _, c := range components {
		name := c.Name()
		if extra != nil {
			name += " (" + extra(c) + ")"
		}
		fmt.Fprintf(w, "\t%v\t%v\n", name, c.Description())
	}
	w.Flush()
}

func printParsers() {
	printComponents("parsers", config.Parsers, func(p parser.Parser) string {
		return strings.Join(p.Extensions(), ", ")
	})
}

func printTransformers() {
	printComponents[transformer.Transformer]("transformers", config.Transformers, nil)
}

func printGenerators() {
	printComponents("generators", config.Generators, func(g generator.Generator) string {
		targets := make([]string, 0, len(g.Targets()))
		for t := range g.Targets() {
			targets = append(targets, t)
		}
		sort.Strings(targets)
		return strings.Join(targets, ", ")
	})
}

// marshalYAML formats the output YAML properly.
func marshalYAML(v interface{}) ([]byte, error) {
	buf := &bytes.Buffer{}

	e := yaml.NewEncoder(buf)

	e.SetIndent(2)

	err := e.Encode(v)
	if err != nil {
		return nil, err
	}

	return []byte(strings.ReplaceAll(buf.String(), "\n\n\n", "\n\n")), nil
}
