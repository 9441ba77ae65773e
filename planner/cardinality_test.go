package planner

import (
	"testing"

	"github.com/nectardb/nectar/logical"
	"github.com/stretchr/testify/assert"
)

func TestEstimateCardinalityScanAndDummyScan(t *testing.T) {
	scan := logical.NewScanNode(nil, 1)
	assert.Equal(t, 1000.0, EstimateCardinality(scan, nil))
	dummy := logical.NewDummyScan()
	assert.Equal(t, 1.0, EstimateCardinality(dummy, nil))
}

func TestEstimateCardinalityFilterAppliesSelectivity(t *testing.T) {
	child := logical.NewDummyScan()
	f := logical.NewFilter(child, nil)
	childCard := map[logical.Operator]float64{child: 100}
	assert.Equal(t, 10.0, EstimateCardinality(f, childCard), "100 * 0.1")
}

func TestEstimateCardinalityLimitCapsAtN(t *testing.T) {
	child := logical.NewDummyScan()
	lim := logical.NewLimit(child, 5)
	childCard := map[logical.Operator]float64{child: 100}
	assert.Equal(t, 5.0, EstimateCardinality(lim, childCard))

	lim2 := logical.NewLimit(child, 1000)
	assert.Equal(t, 100.0, EstimateCardinality(lim2, childCard), "Limit(1000) over 100 rows")
}

func TestEstimateCardinalitySkipSubtractsN(t *testing.T) {
	child := logical.NewDummyScan()
	skip := logical.NewSkip(child, 30)
	childCard := map[logical.Operator]float64{child: 100}
	assert.Equal(t, 70.0, EstimateCardinality(skip, childCard))

	skipPastEnd := logical.NewSkip(child, 1000)
	assert.Equal(t, 0.0, EstimateCardinality(skipPastEnd, childCard), "Skip(1000) over 100 rows should floor at 0")
}

func TestEstimateCardinalityCrossProductMultiplies(t *testing.T) {
	left := logical.NewDummyScan()
	right := logical.NewDummyScan()
	cp := logical.NewCrossProduct(left, right)
	childCard := map[logical.Operator]float64{left: 10, right: 20}
	assert.Equal(t, 200.0, EstimateCardinality(cp, childCard))
}

func TestEstimateCardinalityHashJoinFollowsProbeSide(t *testing.T) {
	probe := logical.NewDummyScan()
	build := logical.NewDummyScan()
	hj := logical.NewHashJoin(probe, build, logical.InnerJoin, nil, nil)
	childCard := map[logical.Operator]float64{probe: 50, build: 5}
	assert.Equal(t, 50.0, EstimateCardinality(hj, childCard), "HashJoin cardinality follows probe side")

	childCardEmptyBuild := map[logical.Operator]float64{probe: 50, build: 0}
	assert.Equal(t, 0.0, EstimateCardinality(hj, childCardEmptyBuild), "HashJoin cardinality with empty build side")
}
