package localplan

import (
	"fmt"
	"strings"
)

// String renders one factory as an indented, single-pipeline description:
// node kinds bottom to top, whether it has a sink, and its maxDrivers.
// Debugging aid only — no bearing on planning semantics (spec.md §9's
// "(expansion) Supplemented feature" note), grounded on the pack's
// query-planner reference files that render a plan tree as text.
func (f *DriverFactory) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline %d (maxDrivers=%d, inputDriver=%v, outputDriver=%v)\n", f.pipelineID, f.MaxDrivers, f.InputDriver, f.OutputDriver)
	for _, node := range f.PlanNodes {
		fmt.Fprintf(&b, "  %s[%s]\n", node.Kind(), node.ID())
	}
	if f.ConsumerSupplier != nil {
		b.WriteString("  -> sink\n")
	}
	return b.String()
}

// Describe renders every factory Plan returned, in the order produced, as
// an indented multi-pipeline plan description.
func Describe(factories []*DriverFactory) string {
	var b strings.Builder
	for _, f := range factories {
		b.WriteString(f.String())
	}
	return b.String()
}
