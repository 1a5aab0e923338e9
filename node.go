package localplan

import "fmt"

// NodeKind discriminates the logical kind of a PlanNode. It is a closed
// tagged variant over the kinds the planner has hard-coded dispatch for,
// plus a single open Extension arm — the redesign called for in spec.md §9
// to replace the dynamic downcasts of the node this system was modeled on.
type NodeKind int

const (
	KindTableScan NodeKind = iota
	KindTableWrite
	KindValues
	KindFilter
	KindProject
	KindHashJoin
	KindCrossJoin
	KindMergeJoin
	KindLocalMerge
	KindLocalPartition
	KindMergeExchange
	KindExchange
	KindPartitionedOutput
	KindStreamingAggregation
	KindAggregation
	KindTopN
	KindLimit
	KindOrderBy
	KindUnnest
	KindEnforceSingleRow
	KindAssignUniqueID
	KindExtension
)

func (k NodeKind) String() string {
	switch k {
	case KindTableScan:
		return "TableScan"
	case KindTableWrite:
		return "TableWrite"
	case KindValues:
		return "Values"
	case KindFilter:
		return "Filter"
	case KindProject:
		return "Project"
	case KindHashJoin:
		return "HashJoin"
	case KindCrossJoin:
		return "CrossJoin"
	case KindMergeJoin:
		return "MergeJoin"
	case KindLocalMerge:
		return "LocalMerge"
	case KindLocalPartition:
		return "LocalPartition"
	case KindMergeExchange:
		return "MergeExchange"
	case KindExchange:
		return "Exchange"
	case KindPartitionedOutput:
		return "PartitionedOutput"
	case KindStreamingAggregation:
		return "StreamingAggregation"
	case KindAggregation:
		return "Aggregation"
	case KindTopN:
		return "TopN"
	case KindLimit:
		return "Limit"
	case KindOrderBy:
		return "OrderBy"
	case KindUnnest:
		return "Unnest"
	case KindEnforceSingleRow:
		return "EnforceSingleRow"
	case KindAssignUniqueID:
		return "AssignUniqueId"
	case KindExtension:
		return "Extension"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Step distinguishes the partial/final discipline of two-stage
// aggregations (AggregationStep); TopN, Limit and OrderBy express theirs
// through IsPartial instead. See spec.md's glossary entry "Partial vs
// final step".
type Step int

const (
	StepSingle Step = iota
	StepPartial
	StepIntermediate
	StepFinal
)

// PlanNode is the external, immutable tree node the planner consumes. It is
// intentionally minimal: sources() for structure, Kind() for dispatch, and a
// grab-bag of kind-specific accessors used only by the kinds that need them
// (AggregationStep, IsPartial, IsParallelizable, SupportsMultiThreading,
// TaskUniqueID/UniqueIDCounter). Nodes of kinds that don't use an accessor
// simply return a neutral default (see BaseNode: StepSingle, not partial,
// parallelizable, multi-threaded, no declared cap).
type PlanNode interface {
	ID() string
	Kind() NodeKind
	Sources() []PlanNode

	// AggregationStep applies to KindAggregation / KindStreamingAggregation.
	AggregationStep() Step
	// IsPartial applies to KindTopN, KindLimit, KindOrderBy.
	IsPartial() bool
	// IsParallelizable applies to KindValues.
	IsParallelizable() bool
	// SupportsMultiThreading applies to KindTableWrite (read from the
	// node's nested connector insert-table handle).
	SupportsMultiThreading() bool
	// TaskUniqueID and UniqueIDCounter apply to KindAssignUniqueID.
	TaskUniqueID() string
	UniqueIDCounter() *int64

	// MaxDrivers is the extension hook (Operator::maxDrivers in spec.md
	// §6): a node may declare a parallelism cap the hard-coded table in
	// §4.3 doesn't already cover. ok is false when the node declares no
	// opinion.
	MaxDrivers() (cap int, ok bool)
}

// BaseNode is embeddable by concrete PlanNode implementations (tests and
// extension authors) so they only need to override the accessors relevant
// to their kind, mirroring how the teacher's IntermediateOperator left
// unused fields at their zero value rather than forcing every constructor
// to populate every field.
type BaseNode struct {
	IDValue      string
	KindValue    NodeKind
	SourceValues []PlanNode
}

func (n BaseNode) ID() string          { return n.IDValue }
func (n BaseNode) Kind() NodeKind      { return n.KindValue }
func (n BaseNode) Sources() []PlanNode { return n.SourceValues }

func (n BaseNode) AggregationStep() Step          { return StepSingle }
func (n BaseNode) IsPartial() bool                { return false }
func (n BaseNode) IsParallelizable() bool         { return true }
func (n BaseNode) SupportsMultiThreading() bool   { return true }
func (n BaseNode) TaskUniqueID() string           { return "" }
func (n BaseNode) UniqueIDCounter() *int64        { return nil }
func (n BaseNode) MaxDrivers() (int, bool)        { return 0, false }
