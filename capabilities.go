package localplan

import "github.com/vectorq/localplan/operator"

// Row-level behavior — predicates, projections, join keys, comparators —
// is expression evaluation, and spec.md §1 places expression evaluation
// out of scope: the planner only arranges operators, it does not interpret
// them. The hard-coded kinds in §4.4's dispatch table still need *some*
// function to hand the concrete operator constructors in the operator
// package, though, so the materializer asks each plan node for one through
// a handful of small, optional capability interfaces. A node that doesn't
// implement the relevant interface gets a harmless identity default,
// exactly the way a real engine's expression compiler would fall back to
// "no-op" for a node with no expression attached (e.g. a bare TableScan).
//
// These interfaces are a bridge the spec doesn't name explicitly; they
// exist only so this repo's operators have real row-level bodies to run in
// tests. See DESIGN.md.

// RowPredicate is implemented by Filter nodes that carry a row predicate.
type RowPredicate interface {
	Predicate() func(operator.Row) bool
}

// RowProjection is implemented by Project nodes that carry a projection.
type RowProjection interface {
	Projection() func(operator.Row) operator.Row
}

// GroupKey is implemented by Aggregation/StreamingAggregation nodes.
type GroupKey interface {
	KeyOf() func(operator.Row) string
	Accumulate() func(acc, next operator.Row) operator.Row
}

// RowOrder is implemented by OrderBy/TopN nodes.
type RowOrder interface {
	Less() func(a, b operator.Row) bool
}

// BoundedN is implemented by TopN/Limit nodes that carry a row count.
type BoundedN interface {
	N() int
}

// JoinKeys is implemented by HashJoin/MergeJoin nodes.
type JoinKeys interface {
	ProbeKey() func(operator.Row) string
	BuildKey() func(operator.Row) string
	JoinRows() func(probe, build operator.Row) operator.Row
}

// CrossJoinCombine is implemented by CrossJoin nodes.
type CrossJoinCombine interface {
	CombineRows() func(probe, build operator.Row) operator.Row
}

// PartitionKey is implemented by LocalPartition nodes.
type PartitionKey interface {
	PartitionOf() func(operator.Row) int
}

// SourceRows is implemented by TableScan/Values nodes to supply their
// fixed row set.
type SourceRows interface {
	Rows() []operator.Row
}

// WriteSink is implemented by TableWrite nodes to supply where rows go.
type WriteSink interface {
	WriteRow() func(operator.Row)
}

// UnnestColumn is implemented by Unnest nodes.
type UnnestColumn interface {
	ColumnIndex() int
}

func predicateOf(n PlanNode) func(operator.Row) bool {
	if p, ok := n.(RowPredicate); ok {
		return p.Predicate()
	}
	return func(operator.Row) bool { return true }
}

func projectionOf(n PlanNode) func(operator.Row) operator.Row {
	if p, ok := n.(RowProjection); ok {
		return p.Projection()
	}
	return func(r operator.Row) operator.Row { return r }
}

func rowsOf(n PlanNode) []operator.Row {
	if s, ok := n.(SourceRows); ok {
		return s.Rows()
	}
	return nil
}

func groupKeyOf(n PlanNode) (func(operator.Row) string, func(acc, next operator.Row) operator.Row) {
	if g, ok := n.(GroupKey); ok {
		return g.KeyOf(), g.Accumulate()
	}
	identity := func(acc, _ operator.Row) operator.Row { return acc }
	return func(operator.Row) string { return "" }, identity
}

func lessOf(n PlanNode) func(a, b operator.Row) bool {
	if o, ok := n.(RowOrder); ok {
		return o.Less()
	}
	return func(operator.Row, operator.Row) bool { return false }
}

func boundOf(n PlanNode) int {
	if b, ok := n.(BoundedN); ok {
		return b.N()
	}
	return 0
}

func joinKeysOf(n PlanNode) (func(operator.Row) string, func(operator.Row) string, func(probe, build operator.Row) operator.Row) {
	if j, ok := n.(JoinKeys); ok {
		return j.ProbeKey(), j.BuildKey(), j.JoinRows()
	}
	key := func(operator.Row) string { return "" }
	join := func(probe, build operator.Row) operator.Row { return append(append(operator.Row{}, probe...), build...) }
	return key, key, join
}

func crossCombineOf(n PlanNode) func(probe, build operator.Row) operator.Row {
	if c, ok := n.(CrossJoinCombine); ok {
		return c.CombineRows()
	}
	return func(probe, build operator.Row) operator.Row { return append(append(operator.Row{}, probe...), build...) }
}

func partitionOf(n PlanNode) func(operator.Row) int {
	if p, ok := n.(PartitionKey); ok {
		return p.PartitionOf()
	}
	return func(operator.Row) int { return 0 }
}

func writeSinkOf(n PlanNode) func(operator.Row) {
	if w, ok := n.(WriteSink); ok {
		return w.WriteRow()
	}
	return func(operator.Row) {}
}

func unnestColumnOf(n PlanNode) int {
	if u, ok := n.(UnnestColumn); ok {
		return u.ColumnIndex()
	}
	return 0
}
