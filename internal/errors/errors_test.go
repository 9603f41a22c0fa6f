package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXErrorFormatting(t *testing.T) {
	err := New(FORG0006, DynamicRuntime, "effective boolean value undefined")
	assert.Equal(t, "FORG0006: effective boolean value undefined", err.Error())

	loc := Locator{SystemID: "file.xq", Line: 3, Column: 7}
	located := err.WithLocator(loc)
	assert.Equal(t, "FORG0006: effective boolean value undefined at file.xq:3:7", located.Error())
	// WithLocator must not mutate the receiver.
	assert.Nil(t, err.Locator)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := assertionCause{}
	wrapped := Wrap(XPTY0004, DynamicType, "bad operand", cause)
	require.Error(t, wrapped)
	assert.Contains(t, wrapped.Error(), "bad operand")
	assert.Contains(t, wrapped.Error(), "boom")
	assert.True(t, IsCode(wrapped, XPTY0004))
}

func TestCollectingListeners(t *testing.T) {
	el := &CollectingErrorListener{}
	el.Warning(FODT0003, "timezone out of range", nil)
	el.Error(SeverityError, New(FOAR0001, DynamicRuntime, "division by zero"))
	assert.Len(t, el.Warnings, 1)
	require.Len(t, el.Errors, 1)
	assert.Equal(t, FOAR0001, el.Errors[0].Code)

	tl := &CollectingTraceListener{}
	tl.Trace(TraceEvent{Label: "for", Enter: true})
	tl.Trace(TraceEvent{Label: "for", Enter: false})
	assert.Len(t, tl.Events, 2)
}

type assertionCause struct{}

func (assertionCause) Error() string { return "boom" }
