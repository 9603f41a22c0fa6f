package facade

import (
	"github.com/oxhq/xpathcore/internal/errors"
	"github.com/oxhq/xpathcore/internal/eval"
	"github.com/oxhq/xpathcore/internal/parse"
	"github.com/oxhq/xpathcore/internal/sequence"
)

// Selector is the per-evaluation handle over a compiled Executable: an
// Executable configured with a context item, external variable bindings,
// a URI resolver and a listener pair, ready to iterate, evaluate a
// single item, or push its result through a Destination. A Selector
// carries all of a Context's mutable state so one Executable can be
// loaded into many independent Selectors, including concurrently
//.
type Selector struct {
	executable *Executable

	contextItem   sequence.Item
	variables     map[eval.VarKey]*sequence.GroundedSequence
	uriResolver   eval.URIResolver
	errorListener errors.ErrorListener
	traceListener errors.TraceListener

	implicitTimezoneMinutes int
}

func newSelector(e *Executable) *Selector {
	return &Selector{
		executable:              e,
		variables:               make(map[eval.VarKey]*sequence.GroundedSequence),
		errorListener:           errors.DiscardingErrorListener{},
		traceListener:           errors.DiscardingTraceListener{},
		implicitTimezoneMinutes: e.sc.ImplicitTimezoneMinutes,
	}
}

// SetContextItem sets the initial context item an Iterate/Evaluate/Run
// call starts from.
func (s *Selector) SetContextItem(item sequence.Item) *Selector {
	s.contextItem = item
	return s
}

// SetExternalVariable binds name, previously declared via the
// Executable's StaticContext.ExternalVariables, to value. Binding a name
// the StaticContext never declared has no effect on evaluation (the
// compiled tree has no VariableReference that resolves to it).
func (s *Selector) SetExternalVariable(name string, value *sequence.GroundedSequence) *Selector {
	s.variables[parse.ExternalVariableKey(name)] = value
	return s
}

// SetURIResolver installs the resolver fn:doc and similar functions use
// to dereference an href.
func (s *Selector) SetURIResolver(r eval.URIResolver) *Selector {
	s.uriResolver = r
	return s
}

// SetErrorListener installs the listener notified of warnings and of the
// fatal error (if any) that aborts evaluation.
func (s *Selector) SetErrorListener(l errors.ErrorListener) *Selector {
	if l == nil {
		l = errors.DiscardingErrorListener{}
	}
	s.errorListener = l
	return s
}

// SetTraceListener installs the listener notified of expression entry/exit,
//
func (s *Selector) SetTraceListener(l errors.TraceListener) *Selector {
	if l == nil {
		l = errors.DiscardingTraceListener{}
	}
	s.traceListener = l
	return s
}

// SetImplicitTimezone overrides the implicit timezone (in minutes east of
// UTC) used to compare calendar values that carry no timezone of their
// own, defaulting to the Executable's StaticContext value.
func (s *Selector) SetImplicitTimezone(minutes int) *Selector {
	s.implicitTimezoneMinutes = minutes
	return s
}

// newContext builds the root dynamic Context an Iterate/Evaluate/Run
// call evaluates the compiled tree against.
func (s *Selector) newContext() *eval.Context {
	ctx := eval.NewContext(s.contextItem)
	for k, v := range s.variables {
		ctx = ctx.BindVariable(k, v)
	}
	ctx.URIResolver = s.uriResolver
	ctx.ErrorListener = s.errorListener
	ctx.TraceListener = s.traceListener
	ctx.ImplicitTimezoneMinutes = s.implicitTimezoneMinutes
	return ctx
}

// notify reports a fatal error to the configured error listener before
// it propagates to the caller, per the listener protocol: the listener
// is told exactly once, then the error continues upward unchanged.
func (s *Selector) notify(err error) error {
	if err == nil {
		return nil
	}
	if xe, ok := err.(*errors.XError); ok {
		s.errorListener.Error(errors.SeverityFatal, xe)
	}
	return err
}

// Iterate evaluates the Executable's tree and returns a lazily-driven
// sequence iterator over its result, the pull half of the host surface.
func (s *Selector) Iterate() (sequence.Iterator, error) {
	it, err := s.executable.Expression().Iterate(s.newContext())
	if err != nil {
		return nil, s.notify(err)
	}
	return it, nil
}

// Evaluate drains Iterate's result into a slice, the common case for a
// host that wants the whole result at once rather than streaming it.
func (s *Selector) Evaluate() ([]sequence.Item, error) {
	it, err := s.Iterate()
	if err != nil {
		return nil, err
	}
	items, err := sequence.Drain(it)
	if err != nil {
		return nil, s.notify(err)
	}
	return items, nil
}

// EvaluateSingle evaluates the tree as a single item (an
// XPath "evaluateSingle" call): the expected cardinality is zero-or-one,
// raising a dynamic error if the result has more than one item.
func (s *Selector) EvaluateSingle() (sequence.Item, error) {
	item, err := s.executable.Expression().EvaluateItem(s.newContext())
	if err != nil {
		return nil, s.notify(err)
	}
	return item, nil
}

// Run drains the Executable's result and pushes it through dest as a
// single top-level sequence, through the push (Destination) output
// model: each result item becomes either one text node's worth of
// character data (an atomic value) or one subtree `append` (a node).
func (s *Selector) Run(dest Destination) error {
	items, err := s.Evaluate()
	if err != nil {
		return err
	}
	if err := dest.StartDocument(); err != nil {
		return err
	}
	for _, item := range items {
		if n, ok := sequence.AsNode(item); ok {
			if err := dest.Append(n); err != nil {
				return err
			}
			continue
		}
		v, _ := sequence.AsAtomic(item)
		if err := dest.Text(v.StringValue()); err != nil {
			return err
		}
	}
	return dest.EndDocument()
}
