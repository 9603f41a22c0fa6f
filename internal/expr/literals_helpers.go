package expr

import (
	"github.com/oxhq/xpathcore/internal/sequence"
	"github.com/oxhq/xpathcore/internal/value"
	"github.com/oxhq/xpathcore/internal/xdm"
)

// intItemOf wraps n as an xs:integer sequence item, used by the FLWOR
// positional variable binding and similar internal bookkeeping that has
// no Expression of its own to evaluate.
func intItemOf(n int) sequence.Item {
	return value.NewInteger(xdm.TypeInteger, int64(n))
}

// boolItemOf wraps b as an xs:boolean sequence item.
func boolItemOf(b bool) sequence.Item {
	return value.NewBoolean(b)
}
