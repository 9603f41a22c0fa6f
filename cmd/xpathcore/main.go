// Command xpathcore is a peripheral CLI over the facade package: compile
// an expression, evaluate it once, or run it and capture the result as an
// XML tree. Configuration is pflag-driven, with spf13/cobra supplying
// the command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/xpathcore/internal/config"
	"github.com/oxhq/xpathcore/internal/diagnostics"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "xpathcore",
		Short: "Compile and run XPath 2.0 / XQuery 1.0 / XSLT expressions",
		Long:  "xpathcore drives the facade package: compile a source expression once and evaluate it against a context document, with optional persisted trace diagnostics.",
	}

	opts := config.RegisterFlags(root.PersistentFlags())
	var yamlPath, envPath, traceDB string
	root.PersistentFlags().StringVar(&yamlPath, "config", "", "YAML configuration file (see internal/config.Options)")
	root.PersistentFlags().StringVar(&envPath, "env", "", "dotenv file to load (XPATHCORE_-prefixed variables)")
	root.PersistentFlags().StringVar(&traceDB, "trace-db", "", "persist a trace/error record of this run to a SQLite database at this path")

	loadOptions := func() (*config.Options, error) {
		if err := config.LoadYAML(yamlPath, opts); err != nil {
			return nil, err
		}
		if err := config.LoadDotEnv(envPath, opts); err != nil {
			return nil, err
		}
		return opts, nil
	}

	openTrace := func(language, source string) (*diagnostics.Store, *diagnostics.RunRecorder, error) {
		if traceDB == "" {
			return nil, nil, nil
		}
		store, err := diagnostics.Open(traceDB, opts.Verbose)
		if err != nil {
			return nil, nil, err
		}
		recorder, err := store.BeginRun(language, source)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, recorder, nil
	}

	root.AddCommand(
		newCompileCommand(loadOptions),
		newEvalCommand(loadOptions, openTrace),
		newRunCommand(loadOptions, openTrace),
	)
	return root
}
