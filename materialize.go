package localplan

import (
	"github.com/vectorq/localplan/operator"
	"github.com/vectorq/localplan/runtime"
)

// CreateDriver implements spec.md §4.4: walk this factory's plan nodes in
// order, dispatch each to its physical operator (recognizing exactly one
// fusion, filter immediately followed by project), attach the sink if one
// is registered, and return the assembled driver. Idempotent to call
// repeatedly — the runtime calls it once per parallel driver instance it
// wants, up to MaxDrivers.
//
// numDrivers reports the runtime's resolved parallelism for a pipeline id;
// it is only consulted by local-merge (to size its upstream channel array)
// and, in this implementation, local-partition (to size its sibling
// channel array — see DESIGN.md for why the spec's Task interface alone
// does not cover that seam).
func (f *DriverFactory) CreateDriver(ctx *operator.DriverContext, exchange operator.ExchangeClient, numDrivers func(pipelineID int) int) (*runtime.Driver, error) {
	ctx.PipelineID = f.pipelineID
	ctx.NumDrivers = numDrivers

	var ops []operator.Operator
	var nextID operator.OperatorID

	nodes := f.PlanNodes
	for i := 0; i < len(nodes); i++ {
		node := nodes[i]
		switch node.Kind() {

		case KindFilter:
			if i+1 < len(nodes) && nodes[i+1].Kind() == KindProject {
				ops = append(ops, operator.NewFilterProject(nextID, predicateOf(node), projectionOf(nodes[i+1])))
				nextID++
				i++ // fusion: the project is consumed here, not revisited.
				continue
			}
			ops = append(ops, operator.NewFilterProject(nextID, predicateOf(node), nil))
			nextID++

		case KindProject:
			ops = append(ops, operator.NewFilterProject(nextID, nil, projectionOf(node)))
			nextID++

		case KindValues:
			ops = append(ops, operator.NewValues(nextID, rowsOf(node)))
			nextID++

		case KindTableScan:
			ops = append(ops, operator.NewTableScan(nextID, rowsOf(node)))
			nextID++

		case KindTableWrite:
			ops = append(ops, operator.NewTableWrite(nextID, writeSinkOf(node)))
			nextID++

		case KindMergeExchange:
			// Documented quirk (spec.md §9): this branch passes the raw
			// plan-node index i, not the fused-operator counter nextID.
			// Preserved as specified; the two disagree whenever fusion has
			// occurred earlier in the same pipeline.
			ops = append(ops, operator.NewMergeExchange(operator.OperatorID(i), exchange))
			nextID++

		case KindExchange:
			ops = append(ops, operator.NewExchange(nextID, exchange))
			nextID++

		case KindPartitionedOutput:
			ops = append(ops, operator.NewPartitionedOutput(nextID, partitionOf(node), nil))
			nextID++

		case KindHashJoin:
			table := f.tables.hashTableFor(node.ID())
			probeKey, _, join := joinKeysOf(node)
			ops = append(ops, operator.NewHashProbe(nextID, table, probeKey, join))
			nextID++

		case KindCrossJoin:
			table := f.tables.crossTableFor(node.ID())
			ops = append(ops, operator.NewCrossJoinProbe(nextID, table, crossCombineOf(node)))
			nextID++

		case KindStreamingAggregation:
			keyOf, accum := groupKeyOf(node)
			ops = append(ops, operator.NewStreamingAggregation(nextID, keyOf, accum))
			nextID++

		case KindAggregation:
			keyOf, accum := groupKeyOf(node)
			ops = append(ops, operator.NewHashAggregation(nextID, keyOf, accum))
			nextID++

		case KindTopN:
			ops = append(ops, operator.NewTopN(nextID, lessOf(node), boundOf(node)))
			nextID++

		case KindLimit:
			ops = append(ops, operator.NewLimit(nextID, boundOf(node)))
			nextID++

		case KindOrderBy:
			ops = append(ops, operator.NewOrderBy(nextID, lessOf(node)))
			nextID++

		case KindLocalMerge:
			n := numDrivers(f.pipelineID + 1)
			channels, err := ctx.Task.CreateLocalMergeSources(n, "", nil)
			if err != nil {
				return nil, errMissingRuntimeSeam("local-merge sources", node.ID(), err)
			}
			readOnly := make([]<-chan operator.Row, len(channels))
			for j, ch := range channels {
				readOnly[j] = ch
			}
			ops = append(ops, operator.NewLocalMerge(nextID, readOnly, lessOf(node)))
			nextID++

		case KindMergeJoin:
			src, ok := ctx.Task.GetMergeJoinSource(node.ID())
			if !ok {
				created, err := ctx.Task.CreateMergeJoinSource(node.ID())
				if err != nil {
					return nil, errMissingRuntimeSeam("merge-join source", node.ID(), err)
				}
				src = created
			}
			primaryKey, _, join := joinKeysOf(node)
			ops = append(ops, operator.NewMergeJoin(nextID, src, primaryKey, join))
			nextID++

		case KindLocalPartition:
			n := numDrivers(f.pipelineID)
			channels, err := ctx.Task.GetOrCreatePartitionChannels(node.ID(), n)
			if err != nil {
				return nil, errMissingRuntimeSeam("local-partition channels", node.ID(), err)
			}
			if ctx.DriverID < 0 || ctx.DriverID >= len(channels) {
				return nil, errMissingRuntimeSeam("local-partition channels", node.ID(), errNoSuchDriverSlot(ctx.DriverID))
			}
			ops = append(ops, operator.NewLocalExchangeSource(nextID, channels[ctx.DriverID]))
			nextID++

		case KindUnnest:
			ops = append(ops, operator.NewUnnest(nextID, unnestColumnOf(node)))
			nextID++

		case KindEnforceSingleRow:
			ops = append(ops, operator.NewEnforceSingleRow(nextID))
			nextID++

		case KindAssignUniqueID:
			ops = append(ops, operator.NewAssignUniqueID(nextID, node.TaskUniqueID(), node.UniqueIDCounter()))
			nextID++

		case KindExtension:
			op, ok := f.extensions.dispatch(ctx, nextID, node)
			if !ok {
				return nil, errUnsupportedPlanNode(node.ID(), node.Kind())
			}
			ops = append(ops, op)
			nextID++

		default:
			return nil, errUnsupportedPlanNode(node.ID(), node.Kind())
		}
	}

	if f.ConsumerSupplier != nil {
		sink, err := f.ConsumerSupplier(nextID, ctx)
		if err != nil {
			return nil, err
		}
		ops = append(ops, sink)
	}

	return runtime.NewDriver(ops), nil
}
