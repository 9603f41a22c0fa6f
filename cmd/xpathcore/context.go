package main

import (
	"os"

	"github.com/oxhq/xpathcore/facade"
	"github.com/oxhq/xpathcore/internal/config"
	"github.com/oxhq/xpathcore/internal/node"
)

// loadSelector builds a Selector for exe: the context item from contextFile
// (an XML document, when given) and every external variable opts declared,
// ready for the caller to Iterate/Evaluate/Run.
func loadSelector(exe *facade.Executable, opts *config.Options, contextFile string) (*facade.Selector, error) {
	sel := exe.Load()
	for name, value := range opts.ExternalBindings() {
		sel.SetExternalVariable(name, value)
	}
	if contextFile != "" {
		f, err := os.Open(contextFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		pool := node.NewNamePool()
		tree, err := loadXML(f, pool)
		if err != nil {
			return nil, err
		}
		sel.SetContextItem(tree.Root())
	}
	return sel, nil
}
