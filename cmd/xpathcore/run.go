package main

import (
	"github.com/spf13/cobra"

	"github.com/oxhq/xpathcore/facade"
	"github.com/oxhq/xpathcore/internal/config"
	"github.com/oxhq/xpathcore/internal/diagnostics"
	"github.com/oxhq/xpathcore/internal/node"
)

func newRunCommand(
	loadOptions func() (*config.Options, error),
	openTrace func(language, source string) (*diagnostics.Store, *diagnostics.RunRecorder, error),
) *cobra.Command {
	var file, language, contextFile string
	cmd := &cobra.Command{
		Use:   "run [expression]",
		Short: "Evaluate an expression and serialize its result as an XML document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var expr string
			if len(args) > 0 {
				expr = args[0]
			}
			source, err := sourceText(expr, file)
			if err != nil {
				return err
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			sc, err := opts.StaticContext()
			if err != nil {
				return err
			}
			exe, err := compileSource(language, source, sc)
			if err != nil {
				return err
			}
			sel, err := loadSelector(exe, opts, contextFile)
			if err != nil {
				return err
			}

			store, recorder, err := openTrace(language, source)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				sel.SetTraceListener(recorder).SetErrorListener(recorder)
			}

			dest := facade.NewTreeDestination(node.NewNamePool())
			runErr := sel.Run(dest)
			if recorder != nil {
				_ = recorder.Finish(runErr == nil)
			}
			if runErr != nil {
				return runErr
			}
			return serializeTree(cmd.OutOrStdout(), dest.Build())
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the expression from this file instead of the argument")
	cmd.Flags().StringVar(&language, "lang", "xpath", "expression language: xpath, xquery or xslt")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "XML document to use as the initial context item")
	return cmd
}
