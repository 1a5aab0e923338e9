package localplan

import (
	"github.com/vectorq/localplan/operator"
)

// resolveSink implements spec.md §4.2's dispatch table: given a parent plan
// node, return the supplier that terminates any child pipeline feeding it.
// nil means the parent kind needs no sink (the common case). The pipeline
// slicer asks for every source, including sources that fuse into the
// parent's pipeline; for those the returned supplier is simply not used.
func (s *pipelineSlicer) resolveSink(parent PlanNode, parentFactory *DriverFactory) operator.Supplier {
	switch parent.Kind() {
	case KindLocalMerge:
		return localMergeSink(parent)
	case KindLocalPartition:
		return localPartitionSink(parent, parentFactory)
	case KindHashJoin:
		return hashBuildSink(parent, s.tables)
	case KindCrossJoin:
		return crossBuildSink(parent, s.tables)
	case KindMergeJoin:
		return mergeJoinSink(parent)
	default:
		return nil
	}
}

// localMergeSink returns the callback sink that enqueues rows produced by
// one upstream driver into the local-merge source keyed by that driver's
// id — the write half of the pairing the LocalMerge dispatch case in the
// materializer (§4.4) reads from on the other side of the barrier.
func localMergeSink(node PlanNode) operator.Supplier {
	return func(id operator.OperatorID, ctx *operator.DriverContext) (operator.Operator, error) {
		ch, ok := ctx.Task.GetLocalMergeSource(ctx.DriverID)
		if !ok {
			return nil, errMissingRuntimeSeam("local-merge source", node.ID(), errNoSuchDriverSlot(ctx.DriverID))
		}
		return operator.NewCallbackSink(id, func(r operator.Row) { ch <- r }), nil
	}
}

// localPartitionSink returns the PartitionedOutput sink that shuffles each
// row produced on this (the write) pipeline to one of the N sibling drivers
// reading the matching LocalExchangeSource on the read pipeline, where N is
// the read pipeline's resolved maxDrivers. readPipeline is the factory the
// LocalPartition node itself belongs to (not the write pipeline invoking
// this sink) — its pipelineID is only final once Plan has finished slicing,
// which has always happened by the time any driver is materialized. See
// operator.Task's GetOrCreatePartitionChannels doc comment for why either
// side may create the channel array first.
func localPartitionSink(node PlanNode, readPipeline *DriverFactory) operator.Supplier {
	return func(id operator.OperatorID, ctx *operator.DriverContext) (operator.Operator, error) {
		n := ctx.NumDrivers(readPipeline.pipelineID)
		channels, err := ctx.Task.GetOrCreatePartitionChannels(node.ID(), n)
		if err != nil {
			return nil, errMissingRuntimeSeam("local-partition channels", node.ID(), err)
		}
		sinks := make([]func(operator.Row), len(channels))
		for i, ch := range channels {
			ch := ch
			sinks[i] = func(r operator.Row) { ch <- r }
		}
		return operator.NewPartitionedOutput(id, partitionOf(node), sinks), nil
	}
}

// hashBuildSink returns the sink that terminates a hash join's build-side
// pipeline (spec.md §4.2's Hash-join row). The shared HashTable is created
// once per join node and handed to both this sink and the probe-side
// operator the materializer builds when it reaches the HashJoin node in the
// probe pipeline.
func hashBuildSink(node PlanNode, tables *planTables) operator.Supplier {
	table := tables.hashTableFor(node.ID())
	_, buildKey, _ := joinKeysOf(node)
	return func(id operator.OperatorID, _ *operator.DriverContext) (operator.Operator, error) {
		return operator.NewHashBuildSink(id, table, buildKey), nil
	}
}

// crossBuildSink returns the sink that terminates a cross join's build-side
// pipeline (spec.md §4.2's Cross-join row).
func crossBuildSink(node PlanNode, tables *planTables) operator.Supplier {
	table := tables.crossTableFor(node.ID())
	return func(id operator.OperatorID, _ *operator.DriverContext) (operator.Operator, error) {
		return operator.NewCrossJoinBuildSink(id, table), nil
	}
}

// mergeJoinSink returns the callback sink that enqueues the secondary
// (non-primary) side of a merge join into the merge-join source registered
// under the merge-join node's id (spec.md §4.2's Merge-join row).
func mergeJoinSink(node PlanNode) operator.Supplier {
	return func(id operator.OperatorID, ctx *operator.DriverContext) (operator.Operator, error) {
		src, ok := ctx.Task.GetMergeJoinSource(node.ID())
		if !ok {
			created, err := ctx.Task.CreateMergeJoinSource(node.ID())
			if err != nil {
				return nil, errMissingRuntimeSeam("merge-join source", node.ID(), err)
			}
			src = created
		}
		return operator.NewCallbackSink(id, func(r operator.Row) { src.Enqueue(r) }), nil
	}
}

// wrapFinalConsumer returns the caller-supplied final consumer, if any,
// unchanged as the root factory's sink supplier (spec.md §4.2's "initial
// (root) sink"). The final consumer is already an operator.Supplier, so no
// CallbackSink is placed around it; nil stays nil.
func wrapFinalConsumer(finalConsumer operator.Supplier) operator.Supplier {
	return finalConsumer
}
