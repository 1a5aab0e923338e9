package localplan

import (
	"github.com/rs/zerolog/log"
	"github.com/vectorq/localplan/operator"
)

// Plan is the local planner's entry point (spec.md §4.5): it slices root
// into pipelines, marks the output driver, and fills in each factory's
// maxDrivers. finalConsumer is the operator supplier for the query's
// ultimate output sink; it may be nil, in which case the output driver's
// ConsumerSupplier is nil too and the runtime is expected to collect the
// output driver's rows directly. extensions, also optional, is consulted
// by CreateDriver for any KindExtension node it materializes; slicing does
// not consult it.
//
// Plan is a pure function: every call gets its own join-table registry
// (joins.go) and its own factory list; nothing persists across calls.
func Plan(root PlanNode, finalConsumer operator.Supplier, extensions *ExtensionRegistry) ([]*DriverFactory, error) {
	tables := newPlanTables()
	factories := slice(root, wrapFinalConsumer(finalConsumer), tables)

	for i, f := range factories {
		f.pipelineID = i
		f.extensions = extensions
	}
	factories[0].OutputDriver = true

	for _, f := range factories {
		maxDrivers, err := computeMaxDrivers(f.PlanNodes)
		if err != nil {
			return nil, err
		}
		f.MaxDrivers = maxDrivers
		log.Debug().
			Int("pipeline", f.pipelineID).
			Int("maxDrivers", f.MaxDrivers).
			Bool("inputDriver", f.InputDriver).
			Bool("outputDriver", f.OutputDriver).
			Msg("localplan: planned pipeline")
	}

	return factories, nil
}
