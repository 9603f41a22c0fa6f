package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oxhq/xpathcore/internal/config"
)

// sourceText returns expr verbatim unless filePath is set, in which case
// it reads the expression from that file instead.
func sourceText(expr, filePath string) (string, error) {
	if filePath == "" {
		return expr, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filePath, err)
	}
	return string(data), nil
}

func newCompileCommand(loadOptions func() (*config.Options, error)) *cobra.Command {
	var file, language string
	cmd := &cobra.Command{
		Use:   "compile [expression]",
		Short: "Compile an expression and report any static error",
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
			if _, err := compileSource(language, source, sc); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the expression from this file instead of the argument")
	cmd.Flags().StringVar(&language, "lang", "xpath", "expression language: xpath, xquery or xslt")
	return cmd
}
