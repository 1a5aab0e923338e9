package localplan

import "github.com/vectorq/localplan/operator"

// fixtureNode is a single concrete PlanNode used by every test in this
// package. Embedding BaseNode means a test only sets the fields its
// scenario actually exercises, mirroring how the teacher's operator_test.go
// builds narrow IntermediateOperator fixtures per test case rather than one
// god object.
type fixtureNode struct {
	BaseNode

	step            Step
	partial         bool
	parallelizable  bool
	multiThreaded   bool
	taskUniqueID    string
	counter         *int64
	maxDriversCap   int
	hasMaxDrivers   bool

	predicate   func(operator.Row) bool
	projection  func(operator.Row) operator.Row
	rows        []operator.Row
	keyOf       func(operator.Row) string
	accum       func(acc, next operator.Row) operator.Row
	less        func(a, b operator.Row) bool
	n           int
	probeKey    func(operator.Row) string
	buildKey    func(operator.Row) string
	joinRows    func(probe, build operator.Row) operator.Row
	combineRows func(probe, build operator.Row) operator.Row
	partitionOf func(operator.Row) int
	writeRow    func(operator.Row)
	columnIndex int
}

func (n *fixtureNode) AggregationStep() Step        { return n.step }
func (n *fixtureNode) IsPartial() bool              { return n.partial }
func (n *fixtureNode) IsParallelizable() bool       { return n.parallelizable }
func (n *fixtureNode) SupportsMultiThreading() bool { return n.multiThreaded }
func (n *fixtureNode) TaskUniqueID() string         { return n.taskUniqueID }
func (n *fixtureNode) UniqueIDCounter() *int64      { return n.counter }

func (n *fixtureNode) MaxDrivers() (int, bool) {
	if !n.hasMaxDrivers {
		return 0, false
	}
	return n.maxDriversCap, true
}

func (n *fixtureNode) Predicate() func(operator.Row) bool          { return n.predicate }
func (n *fixtureNode) Projection() func(operator.Row) operator.Row { return n.projection }
func (n *fixtureNode) Rows() []operator.Row                        { return n.rows }
func (n *fixtureNode) KeyOf() func(operator.Row) string             { return n.keyOf }
func (n *fixtureNode) Accumulate() func(acc, next operator.Row) operator.Row {
	return n.accum
}
func (n *fixtureNode) Less() func(a, b operator.Row) bool { return n.less }
func (n *fixtureNode) N() int                             { return n.n }
func (n *fixtureNode) ProbeKey() func(operator.Row) string { return n.probeKey }
func (n *fixtureNode) BuildKey() func(operator.Row) string { return n.buildKey }
func (n *fixtureNode) JoinRows() func(probe, build operator.Row) operator.Row {
	return n.joinRows
}
func (n *fixtureNode) CombineRows() func(probe, build operator.Row) operator.Row {
	return n.combineRows
}
func (n *fixtureNode) PartitionOf() func(operator.Row) int { return n.partitionOf }
func (n *fixtureNode) WriteRow() func(operator.Row)        { return n.writeRow }
func (n *fixtureNode) ColumnIndex() int                    { return n.columnIndex }

func node(id string, kind NodeKind, sources ...PlanNode) *fixtureNode {
	return &fixtureNode{
		BaseNode: BaseNode{IDValue: id, KindValue: kind, SourceValues: sources},
	}
}

func tableScan(id string, rows ...operator.Row) *fixtureNode {
	n := node(id, KindTableScan)
	n.rows = rows
	return n
}

func values(id string, parallelizable bool, rows ...operator.Row) *fixtureNode {
	n := node(id, KindValues)
	n.parallelizable = parallelizable
	n.rows = rows
	return n
}

func filter(id string, source PlanNode, predicate func(operator.Row) bool) *fixtureNode {
	n := node(id, KindFilter, source)
	n.predicate = predicate
	return n
}

func project(id string, source PlanNode, projection func(operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindProject, source)
	n.projection = projection
	return n
}

func aggregation(id string, source PlanNode, step Step, keyOf func(operator.Row) string, accum func(acc, next operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindAggregation, source)
	n.step = step
	n.keyOf = keyOf
	n.accum = accum
	return n
}

func streamingAggregation(id string, source PlanNode, step Step, keyOf func(operator.Row) string, accum func(acc, next operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindStreamingAggregation, source)
	n.step = step
	n.keyOf = keyOf
	n.accum = accum
	return n
}

func hashJoin(id string, probe, build PlanNode, probeKey, buildKey func(operator.Row) string, join func(probe, build operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindHashJoin, probe, build)
	n.probeKey = probeKey
	n.buildKey = buildKey
	n.joinRows = join
	return n
}

func crossJoin(id string, probe, build PlanNode, combine func(probe, build operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindCrossJoin, probe, build)
	n.combineRows = combine
	return n
}

func mergeJoin(id string, primary, secondary PlanNode, primaryKey func(operator.Row) string, join func(probe, build operator.Row) operator.Row) *fixtureNode {
	n := node(id, KindMergeJoin, primary, secondary)
	n.probeKey = primaryKey
	n.joinRows = join
	return n
}

func localMerge(id string, source PlanNode, less func(a, b operator.Row) bool) *fixtureNode {
	n := node(id, KindLocalMerge, source)
	n.less = less
	return n
}

func localPartition(id string, source PlanNode, partitionOf func(operator.Row) int) *fixtureNode {
	n := node(id, KindLocalPartition, source)
	n.partitionOf = partitionOf
	return n
}

func exchange(id string) *fixtureNode {
	return node(id, KindExchange)
}

func mergeExchange(id string) *fixtureNode {
	return node(id, KindMergeExchange)
}

func partitionedOutput(id string, source PlanNode, partitionOf func(operator.Row) int) *fixtureNode {
	n := node(id, KindPartitionedOutput, source)
	n.partitionOf = partitionOf
	return n
}

func topN(id string, source PlanNode, partial bool, n int, less func(a, b operator.Row) bool) *fixtureNode {
	fn := node(id, KindTopN, source)
	fn.partial = partial
	fn.n = n
	fn.less = less
	return fn
}

func limit(id string, source PlanNode, partial bool, n int) *fixtureNode {
	fn := node(id, KindLimit, source)
	fn.partial = partial
	fn.n = n
	return fn
}

func orderBy(id string, source PlanNode, partial bool, less func(a, b operator.Row) bool) *fixtureNode {
	fn := node(id, KindOrderBy, source)
	fn.partial = partial
	fn.less = less
	return fn
}

func unnest(id string, source PlanNode, columnIndex int) *fixtureNode {
	n := node(id, KindUnnest, source)
	n.columnIndex = columnIndex
	return n
}

func enforceSingleRow(id string, source PlanNode) *fixtureNode {
	return node(id, KindEnforceSingleRow, source)
}

func assignUniqueID(id string, source PlanNode, taskUniqueID string, counter *int64) *fixtureNode {
	n := node(id, KindAssignUniqueID, source)
	n.taskUniqueID = taskUniqueID
	n.counter = counter
	return n
}

func tableWrite(id string, source PlanNode, multiThreaded bool, writeRow func(operator.Row)) *fixtureNode {
	n := node(id, KindTableWrite, source)
	n.multiThreaded = multiThreaded
	n.writeRow = writeRow
	return n
}

func withMaxDrivers(n *fixtureNode, cap int) *fixtureNode {
	n.hasMaxDrivers = true
	n.maxDriversCap = cap
	return n
}
