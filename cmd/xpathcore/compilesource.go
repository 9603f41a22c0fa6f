package main

import (
	"fmt"

	"github.com/oxhq/xpathcore/facade"
	"github.com/oxhq/xpathcore/internal/parse"
)

// compileSource dispatches to the facade entry point matching language,
// the shared front end for xpathcore's compile/eval/run subcommands.
func compileSource(language, source string, sc *parse.StaticContext) (*facade.Executable, error) {
	switch language {
	case "xpath", "":
		return facade.CompileXPath(source, sc)
	case "xquery":
		return facade.CompileXQuery(source, sc)
	case "xslt":
		return facade.CompileXSLT(source, sc)
	default:
		return nil, fmt.Errorf("unknown language %q (want xpath, xquery or xslt)", language)
	}
}
