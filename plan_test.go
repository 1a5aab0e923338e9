package localplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vectorq/localplan/operator"
)

func kinds(f *DriverFactory) []NodeKind {
	out := make([]NodeKind, len(f.PlanNodes))
	for i, n := range f.PlanNodes {
		out[i] = n.Kind()
	}
	return out
}

// Scenario 1: Scan -> Filter -> Project -> Final aggregation.
func TestPlan_ScanFilterProjectFinalAggregation(t *testing.T) {
	scan := tableScan("scan")
	f := filter("filter", scan, func(operator.Row) bool { return true })
	p := project("project", f, func(r operator.Row) operator.Row { return r })
	agg := aggregation("agg", p, StepSingle, func(operator.Row) string { return "k" }, func(acc, _ operator.Row) operator.Row { return acc })

	factories, err := Plan(agg, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 1)

	root := factories[0]
	assert.True(t, root.InputDriver)
	assert.True(t, root.OutputDriver)
	assert.Equal(t, 1, root.MaxDrivers)
	assert.Equal(t, []NodeKind{KindTableScan, KindFilter, KindProject, KindAggregation}, kinds(root))
}

// Scenario 2: Scan -> partial aggregation -> PartitionedOutput, paired with
// Exchange -> final aggregation root.
func TestPlan_ExchangePairedAggregation(t *testing.T) {
	scan := tableScan("scan")
	partialAgg := aggregation("partial-agg", scan, StepPartial, func(operator.Row) string { return "k" }, func(acc, _ operator.Row) operator.Row { return acc })
	partOut := partitionedOutput("part-out", partialAgg, func(operator.Row) int { return 0 })

	ex := exchange("exchange")
	finalAgg := aggregation("final-agg", ex, StepFinal, func(operator.Row) string { return "k" }, func(acc, _ operator.Row) operator.Row { return acc })

	// The root fragment: Exchange feeds the final aggregation. Exchange is a
	// leaf here — it reads data shipped over the network from the other
	// fragment's PartitionedOutput, which is not an edge in this tree.
	rootFactories, err := Plan(finalAgg, nil, nil)
	require.NoError(t, err)
	require.Len(t, rootFactories, 1)

	root := rootFactories[0]
	assert.Equal(t, []NodeKind{KindExchange, KindAggregation}, kinds(root))
	assert.Equal(t, 1, root.MaxDrivers)
	assert.True(t, root.OutputDriver)

	// The feeding fragment, planned independently: scan -> partial
	// aggregation -> partitioned output.
	feedFactories, err := Plan(partOut, nil, nil)
	require.NoError(t, err)
	require.Len(t, feedFactories, 1)

	feed := feedFactories[0]
	assert.Equal(t, []NodeKind{KindTableScan, KindAggregation, KindPartitionedOutput}, kinds(feed))
	assert.True(t, feed.InputDriver)
	assert.Equal(t, unbounded, feed.MaxDrivers)
}

// Scenario 3: hash join of two scans.
func TestPlan_HashJoinOfTwoScans(t *testing.T) {
	probeScan := tableScan("probe-scan", operator.Row{"a", 1})
	buildScan := tableScan("build-scan", operator.Row{"a", 2})
	join := hashJoin("join", probeScan, buildScan,
		func(r operator.Row) string { return r[0].(string) },
		func(r operator.Row) string { return r[0].(string) },
		func(probe, build operator.Row) operator.Row { return append(append(operator.Row{}, probe...), build...) },
	)

	factories, err := Plan(join, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 2)

	probePipeline := factories[0]
	buildPipeline := factories[1]

	assert.Equal(t, []NodeKind{KindTableScan, KindHashJoin}, kinds(probePipeline))
	assert.True(t, probePipeline.OutputDriver)
	assert.True(t, probePipeline.InputDriver)
	assert.Nil(t, probePipeline.ConsumerSupplier)

	assert.Equal(t, []NodeKind{KindTableScan}, kinds(buildPipeline))
	assert.True(t, buildPipeline.InputDriver)
	require.NotNil(t, buildPipeline.ConsumerSupplier)
}

// Scenario 4: local-merge over partial OrderBy over Scan.
func TestPlan_LocalMergeOverPartialOrderBy(t *testing.T) {
	scan := tableScan("scan")
	ob := orderBy("order-by", scan, true, func(a, b operator.Row) bool { return false })
	merge := localMerge("local-merge", ob, func(a, b operator.Row) bool { return false })

	factories, err := Plan(merge, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 2)

	upper := factories[0]
	lower := factories[1]

	assert.Equal(t, []NodeKind{KindLocalMerge}, kinds(upper))
	assert.Equal(t, 1, upper.MaxDrivers)
	assert.True(t, upper.OutputDriver)

	assert.Equal(t, []NodeKind{KindTableScan, KindOrderBy}, kinds(lower))
	assert.True(t, lower.InputDriver)
	require.NotNil(t, lower.ConsumerSupplier)
}

// Scenario 5: non-parallelizable Values -> Unnest -> EnforceSingleRow.
func TestPlan_ValuesUnnestEnforceSingleRow(t *testing.T) {
	vals := values("values", false, operator.Row{[]interface{}{1, 2}})
	un := unnest("unnest", vals, 0)
	esr := enforceSingleRow("enforce", un)

	factories, err := Plan(esr, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 1)

	root := factories[0]
	assert.Equal(t, []NodeKind{KindValues, KindUnnest, KindEnforceSingleRow}, kinds(root))
	assert.True(t, root.InputDriver)
	assert.Equal(t, 1, root.MaxDrivers)
}

// Scenario 6: merge join of two sorted scans.
func TestPlan_MergeJoinOfTwoSortedScans(t *testing.T) {
	primaryScan := tableScan("primary-scan")
	secondaryScan := tableScan("secondary-scan")
	mj := mergeJoin("merge-join", primaryScan, secondaryScan,
		func(r operator.Row) string { return r[0].(string) },
		func(probe, build operator.Row) operator.Row { return append(append(operator.Row{}, probe...), build...) },
	)

	factories, err := Plan(mj, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 2)

	primary := factories[0]
	secondary := factories[1]

	assert.Equal(t, []NodeKind{KindTableScan, KindMergeJoin}, kinds(primary))
	assert.True(t, primary.OutputDriver)

	assert.Equal(t, []NodeKind{KindTableScan}, kinds(secondary))
	require.NotNil(t, secondary.ConsumerSupplier)
}

// Invariants from spec.md §8.
func TestPlan_Invariants(t *testing.T) {
	probeScan := tableScan("probe-scan")
	buildScan := tableScan("build-scan")
	join := hashJoin("join", probeScan, buildScan,
		func(operator.Row) string { return "" },
		func(operator.Row) string { return "" },
		func(probe, build operator.Row) operator.Row { return probe },
	)
	finalAgg := aggregation("agg", join, StepFinal, func(operator.Row) string { return "" }, func(acc, _ operator.Row) operator.Row { return acc })

	factories, err := Plan(finalAgg, nil, nil)
	require.NoError(t, err)

	for i, f := range factories {
		if i == 0 {
			continue
		}
		assert.NotNil(t, f.ConsumerSupplier, "factory %d should have a sink", i)
	}
	for _, f := range factories {
		assert.GreaterOrEqual(t, f.MaxDrivers, 1)
		assert.Equal(t, len(f.PlanNodes) == 0 || f.PlanNodes[0].Sources() == nil || len(f.PlanNodes[0].Sources()) == 0, f.InputDriver)
	}
	assert.True(t, factories[0].OutputDriver)
	for _, f := range factories[1:] {
		assert.False(t, f.OutputDriver)
	}
}

func TestPlan_InvalidDriverCapFailsFast(t *testing.T) {
	scan := withMaxDrivers(tableScan("scan"), 0)
	factories, err := Plan(scan, nil, nil)
	require.Error(t, err)
	require.Nil(t, factories)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, InvalidDriverCap, perr.Kind())
}

func TestPlan_UnsupportedExtensionNodeFailsAtMaterialization(t *testing.T) {
	ext := node("ext", KindExtension)
	factories, err := Plan(ext, nil, nil)
	require.NoError(t, err)
	require.Len(t, factories, 1)

	_, err = factories[0].CreateDriver(&operator.DriverContext{}, nil, func(int) int { return 1 })
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, UnsupportedPlanNode, perr.Kind())
}
