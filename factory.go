package localplan

import (
	"github.com/rs/zerolog/log"
	"github.com/vectorq/localplan/operator"
)

// DriverFactory is the mutable, build-time record the pipeline slicer
// populates: the blueprint for one pipeline's worth of drivers (spec.md §3).
type DriverFactory struct {
	// PlanNodes is the pipeline's plan nodes, bottom (source-most) first.
	PlanNodes []PlanNode
	// ConsumerSupplier builds the operator that terminates this pipeline,
	// if any. Every non-root factory has one; the root factory's is the
	// caller-supplied final consumer, which may be nil.
	ConsumerSupplier operator.Supplier
	// InputDriver is true iff PlanNodes[0] has no sources.
	InputDriver bool
	// OutputDriver is true only for the root factory (index 0).
	OutputDriver bool
	// MaxDrivers is the pipeline's parallelism cap, filled in by the
	// parallelism analyzer. Zero until Plan has run it.
	MaxDrivers int

	// pipelineID is this factory's index in the list Plan returns; set once
	// the slicer finishes walking the tree, used by local-merge nodes to
	// look up the producing pipeline that sits one slot ahead of them.
	pipelineID int

	// tables is the per-Plan()-call join-table registry (see joins.go),
	// shared by every factory the same Plan() call produced so a join's
	// build sink and probe operator rendezvous on the same table.
	tables *planTables

	// extensions is the caller-supplied registry consulted for
	// KindExtension nodes (spec.md §6's Operator::fromPlanNode hook). May
	// be nil, in which case every extension node is unsupported.
	extensions *ExtensionRegistry
}

// PipelineID returns this factory's index in the list Plan returned.
func (f *DriverFactory) PipelineID() int { return f.pipelineID }

// appendNode records node as the next plan node in this pipeline's
// bottom-up order.
func (f *DriverFactory) appendNode(node PlanNode) {
	f.PlanNodes = append(f.PlanNodes, node)
}

// pipelineSlicer holds the state threaded through the recursive descent of
// §4.1: the growing list of factories and the resolver it dispatches sink
// suppliers through. Grounded on the teacher's pipeline-of-closures
// composition in stream.go, generalized from "compose value transforms"
// to "assign plan nodes to pipelines".
type pipelineSlicer struct {
	factories []*DriverFactory
	tables    *planTables
}

// slice runs the pipeline slicer over root, producing the factory list per
// spec.md §4.1. rootSink is the (possibly nil) sink supplier for the root's
// own output, already wrapped by the entry point.
func slice(root PlanNode, rootSink operator.Supplier, tables *planTables) []*DriverFactory {
	s := &pipelineSlicer{tables: tables}
	s.walk(root, nil, rootSink)
	return s.factories
}

// walk implements the recursive descent of spec.md §4.1. currentFactory is
// nil when a new pipeline must be allocated before node can be appended.
func (s *pipelineSlicer) walk(node PlanNode, currentFactory *DriverFactory, sink operator.Supplier) *DriverFactory {
	if currentFactory == nil {
		currentFactory = &DriverFactory{ConsumerSupplier: sink, tables: s.tables}
		s.factories = append(s.factories, currentFactory)
	}

	sources := node.Sources()
	if len(sources) == 0 {
		currentFactory.InputDriver = true
	}

	for i, child := range sources {
		startsNewPipeline := startsNewPipeline(node, i)
		childSink := s.resolveSink(node, currentFactory)
		if startsNewPipeline {
			s.walk(child, nil, childSink)
		} else {
			s.walk(child, currentFactory, childSink)
		}
	}

	currentFactory.appendNode(node)
	log.Debug().Str("node", node.ID()).Str("kind", node.Kind().String()).Msg("localplan: assigned node to pipeline")
	return currentFactory
}

// startsNewPipeline implements spec.md §4.1's disjunction: a local-merge or
// local-partition parent always forces a new pipeline for every source; any
// other parent forces a new pipeline only for non-first sources (index > 0),
// which is how multi-source operators like hash-join get their build side
// split off while their first (probe) source fuses into the parent pipeline.
func startsNewPipeline(parent PlanNode, sourceIndex int) bool {
	switch parent.Kind() {
	case KindLocalMerge, KindLocalPartition:
		return true
	default:
		return sourceIndex > 0
	}
}
