package localplan

import (
	"bytes"
	"text/template"
)

// error kinds. All are fatal to the planning call in progress.
const (
	UnsupportedPlanNode = 1
	InvalidDriverCap    = 2
	MissingRuntimeSeam  = 3
)

// error templates.
var (
	unsupportedPlanNodeTemplate, _ = template.New("UnsupportedPlanNode").Parse(
		"ErrUnsupportedPlanNode: no operator handler is registered for plan node {{.node}} of kind {{.kind}}.")
	invalidDriverCapTemplate, _ = template.New("InvalidDriverCap").Parse(
		"ErrInvalidDriverCap: plan node {{.node}} declared maxDrivers={{.cap}}, which must be > 0.")
	missingRuntimeSeamTemplate, _ = template.New("MissingRuntimeSeam").Parse(
		"ErrMissingRuntimeSeam: {{.seam}} could not be registered for plan node {{.node}}: {{.cause}}.")
)

// Error is the planner's single error type. It carries a Kind so a caller
// can branch on the failure without string matching the message.
type Error struct {
	kind int
	msg  string
	err  error
}

// Kind returns which of the three fatal planning failures occurred.
func (e *Error) Kind() int {
	return e.kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Unwrap exposes the wrapped runtime error, if any, for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.err
}

// errUnsupportedPlanNode reports an extension node with no registered handler.
func errUnsupportedPlanNode(nodeID string, kind NodeKind) *Error {
	var buf bytes.Buffer
	unsupportedPlanNodeTemplate.Execute(&buf, map[string]string{"node": nodeID, "kind": kind.String()})
	return &Error{kind: UnsupportedPlanNode, msg: buf.String()}
}

// errInvalidDriverCap reports an operator that declared maxDrivers == 0.
func errInvalidDriverCap(nodeID string, cap int) *Error {
	var buf bytes.Buffer
	invalidDriverCapTemplate.Execute(&buf, map[string]any{"node": nodeID, "cap": cap})
	return &Error{kind: InvalidDriverCap, msg: buf.String()}
}

// errMissingRuntimeSeam wraps a runtime registration failure (e.g. a
// duplicate local-merge or merge-join source id) unchanged, per spec.
func errMissingRuntimeSeam(seam string, nodeID string, cause error) *Error {
	var buf bytes.Buffer
	missingRuntimeSeamTemplate.Execute(&buf, map[string]string{"seam": seam, "node": nodeID, "cause": cause.Error()})
	return &Error{kind: MissingRuntimeSeam, msg: buf.String(), err: cause}
}
