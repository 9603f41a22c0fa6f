package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oxhq/xpathcore/internal/config"
	"github.com/oxhq/xpathcore/internal/diagnostics"
)

func newEvalCommand(
	loadOptions func() (*config.Options, error),
	openTrace func(language, source string) (*diagnostics.Store, *diagnostics.RunRecorder, error),
) *cobra.Command {
	var file, language, contextFile string
	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression and print one result item per line",
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

			items, err := sel.Evaluate()
			if recorder != nil {
				_ = recorder.Finish(err == nil)
			}
			if err != nil {
				return err
			}
			for _, item := range items {
				fmt.Fprintln(cmd.OutOrStdout(), item.StringValue())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the expression from this file instead of the argument")
	cmd.Flags().StringVar(&language, "lang", "xpath", "expression language: xpath, xquery or xslt")
	cmd.Flags().StringVar(&contextFile, "context-file", "", "XML document to use as the initial context item")
	return cmd
}
