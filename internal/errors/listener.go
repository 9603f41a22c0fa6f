package errors

// Severity classifies a listener notification.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityFatal   Severity = "fatal"
)

// ErrorListener receives notifications before a dynamic error is propagated
// and for non-fatal warnings, which do not interrupt evaluation.
type ErrorListener interface {
	// Error is called immediately before a fatal error aborts evaluation.
	Error(severity Severity, err *XError)
	// Warning is called for a recoverable condition; evaluation continues.
	Warning(code Code, message string, loc *Locator)
}

// DiscardingErrorListener implements ErrorListener by discarding everything.
// It is the default used when a Selector has no listener configured.
type DiscardingErrorListener struct{}

func (DiscardingErrorListener) Error(Severity, *XError)        {}
func (DiscardingErrorListener) Warning(Code, string, *Locator) {}

// CollectingErrorListener accumulates every notification it receives in
// memory, for test tooling. The persisted sink in internal/diagnostics is
// its own RunRecorder type, not this one.
type CollectingErrorListener struct {
	Errors   []*XError
	Warnings []string
}

func (c *CollectingErrorListener) Error(_ Severity, err *XError) {
	c.Errors = append(c.Errors, err)
}

func (c *CollectingErrorListener) Warning(code Code, message string, loc *Locator) {
	entry := string(code) + ": " + message
	if loc != nil {
		entry += " (" + loc.String() + ")"
	}
	c.Warnings = append(c.Warnings, entry)
}

// TraceEvent is one notification delivered to a TraceListener: entering or
// leaving the evaluation of an expression.
type TraceEvent struct {
	// Label names the expression kind being traced (e.g. "for", "pathStep").
	Label string
	// Enter is true when the expression is about to be evaluated, false when
	// it has finished.
	Enter bool
	// Locator is the source position of the traced expression, if known.
	Locator *Locator
	// Detail carries an optional human-readable extra (e.g. the context item).
	Detail string
}

// TraceListener receives a TraceEvent for every traced expression evaluation.
// A no-op implementation must be the default so tracing has zero overhead
// when disabled.
type TraceListener interface {
	Trace(event TraceEvent)
}

// DiscardingTraceListener implements TraceListener by discarding everything.
type DiscardingTraceListener struct{}

func (DiscardingTraceListener) Trace(TraceEvent) {}

// CollectingTraceListener accumulates every event it receives in memory,
// for test tooling.
type CollectingTraceListener struct {
	Events []TraceEvent
}

func (c *CollectingTraceListener) Trace(event TraceEvent) {
	c.Events = append(c.Events, event)
}
