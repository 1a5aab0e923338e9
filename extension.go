package localplan

import "github.com/vectorq/localplan/operator"

// ExtensionHandler constructs an operator for a plan node the hard-coded
// dispatch table in §4.4 does not recognize (NodeKind.Extension) — spec.md
// §6's "Operator::fromPlanNode(ctx, id, node) → optional<Operator>" hook.
// A handler returns ok=false to decline the node, letting a later-registered
// handler (or, ultimately, the UnsupportedPlanNode error) take over.
type ExtensionHandler func(ctx *operator.DriverContext, id operator.OperatorID, node PlanNode) (op operator.Operator, ok bool)

// ExtensionRegistry is an open, ordered list of handlers consulted for
// KindExtension nodes. It has no package-level instance: spec.md §5
// requires the planning phase to be free of shared mutable state across
// calls, so callers construct one and pass it into Plan explicitly.
type ExtensionRegistry struct {
	handlers []ExtensionHandler
}

// NewExtensionRegistry returns an empty registry.
func NewExtensionRegistry() *ExtensionRegistry {
	return &ExtensionRegistry{}
}

// Register appends a handler, consulted in registration order.
func (r *ExtensionRegistry) Register(h ExtensionHandler) {
	r.handlers = append(r.handlers, h)
}

func (r *ExtensionRegistry) dispatch(ctx *operator.DriverContext, id operator.OperatorID, node PlanNode) (operator.Operator, bool) {
	if r == nil {
		return nil, false
	}
	for _, h := range r.handlers {
		if op, ok := h(ctx, id, node); ok {
			return op, true
		}
	}
	return nil, false
}

// The parallelism analyzer's extension hook is PlanNode.MaxDrivers(); there
// is no separate handler type for it. computeMaxDrivers consults it for every
// node whose hard-coded single-driver constraint did not already apply,
// hard-coded kinds included. BaseNode's implementation returns ok=false, so
// most test fixtures never need to touch this; an extension author can
// override PlanNode.MaxDrivers() per node.
