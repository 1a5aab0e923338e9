package localplan

import "math"

// unbounded is the "no constraint" sentinel spec.md §4.3 returns when no
// node in a pipeline declares a cap; the caller (typically the runtime)
// interprets it, usually by clamping to a configured upper bound.
const unbounded = math.MaxInt32

// computeMaxDrivers implements spec.md §4.3: walk the pipeline's plan
// nodes and intersect every constraint a node declares, short-circuiting
// to 1 the moment any node forces single-threaded execution. Returns an
// error only when a node declares an invalid (zero) cap.
func computeMaxDrivers(nodes []PlanNode) (int, error) {
	result := unbounded
	for _, node := range nodes {
		switch node.Kind() {
		case KindAggregation, KindStreamingAggregation:
			if step := node.AggregationStep(); step == StepFinal || step == StepSingle {
				return 1, nil
			}
		case KindTopN:
			if !node.IsPartial() {
				return 1, nil
			}
		case KindValues:
			if !node.IsParallelizable() {
				return 1, nil
			}
		case KindLimit:
			if !node.IsPartial() {
				return 1, nil
			}
		case KindOrderBy:
			if !node.IsPartial() {
				return 1, nil
			}
		case KindLocalMerge:
			return 1, nil
		case KindMergeExchange:
			return 1, nil
		case KindTableWrite:
			if !node.SupportsMultiThreading() {
				return 1, nil
			}
		}

		if declared, ok := node.MaxDrivers(); ok {
			if declared == 0 {
				return 0, errInvalidDriverCap(node.ID(), declared)
			}
			if declared == 1 {
				return 1, nil
			}
			if declared < result {
				result = declared
			}
		}
	}
	return result, nil
}
