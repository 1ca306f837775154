package graph

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"
	"gonum.org/v1/gonum/graph/topo"

	"go.viam.com/segmentgraph/logging"
)

func TestBuildFromRelations(t *testing.T) {
	logger := logging.NewTestLogger(t)

	relations := []Relation{{ID0: 0, ID1: 1, Probability: []float64{0.9, 0.1}, Type: 1}}
	edges, err := BuildFromRelations(3, relations, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, edges, test.ShouldResemble, []Edge{
		{A: 0, B: 1, Type: EdgeTypeSurface, W: 0.9},
		{A: 0, B: 2, Type: EdgeTypeSurface, W: 1.0},
	})

	// the input is left alone
	test.That(t, relations, test.ShouldHaveLength, 1)
}

func TestBuildFromRelationsEmpty(t *testing.T) {
	logger := logging.NewTestLogger(t)

	for _, nodeCount := range []uint{0, 1} {
		edges, err := BuildFromRelations(nodeCount, nil, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, edges, test.ShouldBeEmpty)
	}

	edges, err := BuildFromRelations(4, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, edges, test.ShouldResemble, []Edge{
		{A: 0, B: 1, Type: EdgeTypeSurface, W: 1.0},
		{A: 0, B: 2, Type: EdgeTypeSurface, W: 1.0},
		{A: 0, B: 3, Type: EdgeTypeSurface, W: 1.0},
	})
}

func TestBuildFromRelationsOrientation(t *testing.T) {
	logger := logging.NewTestLogger(t)

	// only relations starting at node 0 count as links to it
	relations := []Relation{
		{ID0: 1, ID1: 0, Probability: []float64{0.4, 0.6}},
		{ID0: 2, ID1: 1, Probability: []float64{0.2, 0.8}},
		{ID0: 0, ID1: 2, Probability: []float64{0.7, 0.3}},
		{ID0: 0, ID1: 2, Probability: []float64{0.6, 0.4}},
	}
	edges, err := BuildFromRelations(3, relations, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, edges, test.ShouldResemble, []Edge{
		{A: 1, B: 0, Type: EdgeTypeSurface, W: 0.4},
		{A: 2, B: 1, Type: EdgeTypeSurface, W: 0.2},
		{A: 0, B: 2, Type: EdgeTypeSurface, W: 0.7},
		{A: 0, B: 2, Type: EdgeTypeSurface, W: 0.6},
		{A: 0, B: 1, Type: EdgeTypeSurface, W: 1.0},
	})
}

func TestBuildFromRelationsInvalid(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := BuildFromRelations(3, []Relation{{ID0: 0, ID1: 1}}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrEmptyProbability), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "relation 0 (0-1)")

	_, err = BuildFromRelations(3, []Relation{{ID0: 0, ID1: 3, Probability: []float64{1, 0}}}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNodeOutOfRange), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "id_1 3 not in [0, 3)")

	edges, err := BuildFromRelations(2, []Relation{
		{ID0: 0, ID1: 1, Probability: []float64{0.5, 0.5}},
		{ID0: 5, ID1: 1},
		{ID0: 1, ID1: 0, Probability: []float64{0.5}},
		{ID0: 1, ID1: 9, Probability: []float64{0.5}},
	}, logger)
	test.That(t, edges, test.ShouldBeNil)
	test.That(t, errors.Is(err, ErrEmptyProbability), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrNodeOutOfRange), test.ShouldBeTrue)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 2)
	test.That(t, err.Error(), test.ShouldContainSubstring, "relation 1 (5-1)")
	test.That(t, err.Error(), test.ShouldContainSubstring, "relation 3 (1-9)")
	test.That(t, err.Error(), test.ShouldNotContainSubstring, "relation 2")
}

func TestRelationValidate(t *testing.T) {
	r := Relation{ID0: 4, ID1: 5}
	err := r.Validate(3)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)

	r = Relation{ID0: 1, ID1: 2, Probability: []float64{0.3, 0.7}}
	test.That(t, r.Validate(3), test.ShouldBeNil)
	test.That(t, r.MergeProbability(), test.ShouldEqual, 0.3)
}

func TestRepairConnectivity(t *testing.T) {
	relations := []Relation{
		{ID0: 0, ID1: 2, Probability: []float64{0.5, 0.5}, GroundTruth: 1, Type: 2},
	}
	repaired := RepairConnectivity(4, relations)
	test.That(t, repaired, test.ShouldHaveLength, 3)
	test.That(t, repaired[0], test.ShouldResemble, relations[0])
	test.That(t, repaired[1], test.ShouldResemble, Relation{
		ID0: 0, ID1: 1, Probability: []float64{1.0, 0.0}, GroundTruth: GroundTruthUnknown, Type: EdgeTypeSurface,
	})
	test.That(t, repaired[2].ID1, test.ShouldEqual, uint(3))

	// a repaired set needs no further repair
	test.That(t, RepairConnectivity(4, repaired), test.ShouldResemble, repaired)
}

func TestBuildFromRelationsLogsRepairs(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)

	_, err := BuildFromRelations(4, []Relation{{ID0: 0, ID1: 3, Probability: []float64{0.1, 0.9}}}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterMessage("node without relation: adding relation 0-1").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("node without relation: adding relation 0-2").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessage("node without relation: adding relation 0-3").Len(), test.ShouldEqual, 0)
	test.That(t, logs.FilterMessage("created 3 edges from 1 relations").Len(), test.ShouldEqual, 1)
}

func TestBuildFromRelationsConnected(t *testing.T) {
	logger := logging.NewTestLogger(t)
	r := rand.New(rand.NewSource(42))

	for trial := 0; trial < 50; trial++ {
		nodeCount := uint(1 + r.Intn(30))
		relations := make([]Relation, r.Intn(60))
		for i := range relations {
			p := r.Float64()
			relations[i] = Relation{
				ID0:         uint(r.Intn(int(nodeCount))),
				ID1:         uint(r.Intn(int(nodeCount))),
				Probability: []float64{p, 1 - p},
			}
		}

		linked := map[uint]bool{}
		for _, rel := range relations {
			if rel.ID0 == 0 {
				linked[rel.ID1] = true
			}
		}
		missing := 0
		for i := uint(1); i < nodeCount; i++ {
			if !linked[i] {
				missing++
			}
		}

		edges, err := BuildFromRelations(nodeCount, relations, logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(edges), test.ShouldEqual, len(relations)+missing)
		for i, rel := range relations {
			test.That(t, edges[i].A, test.ShouldEqual, rel.ID0)
			test.That(t, edges[i].B, test.ShouldEqual, rel.ID1)
			test.That(t, edges[i].W, test.ShouldEqual, rel.Probability[0])
		}

		toZero := map[uint]bool{}
		for _, e := range edges {
			test.That(t, e.A, test.ShouldBeLessThan, nodeCount)
			test.That(t, e.B, test.ShouldBeLessThan, nodeCount)
			if e.A == 0 {
				toZero[e.B] = true
			}
		}
		for i := uint(1); i < nodeCount; i++ {
			test.That(t, toZero[i], test.ShouldBeTrue)
		}
		test.That(t, topo.ConnectedComponents(ToWeightedGraph(int(nodeCount), edges)), test.ShouldHaveLength, 1)
	}
}
