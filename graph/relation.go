package graph

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/segmentgraph/logging"
)

var (
	// ErrEmptyProbability is returned for a relation without a probability vector.
	ErrEmptyProbability = errors.New("relation has an empty probability vector")
	// ErrNodeOutOfRange is returned for a relation that references a node outside of [0, nodeCount).
	ErrNodeOutOfRange = errors.New("relation node index out of range")
)

// GroundTruthUnknown marks a relation without a ground truth label, such as
// one added to repair connectivity.
const GroundTruthUnknown = -1

// Relation is a pairwise link between nodes ID0 and ID1. Probability holds a
// distribution over relation outcomes where index 0 is the probability that
// the two nodes belong to the same segment. Relations are undirected.
type Relation struct {
	ID0, ID1    uint
	Probability []float64
	GroundTruth int
	Type        int
}

// MergeProbability returns the probability that both nodes should be merged.
func (r Relation) MergeProbability() float64 {
	return r.Probability[0]
}

// Validate checks that the relation can be turned into an edge of a graph with nodeCount nodes.
func (r Relation) Validate(nodeCount uint) error {
	var err error
	if len(r.Probability) == 0 {
		err = multierr.Append(err, ErrEmptyProbability)
	}
	if r.ID0 >= nodeCount {
		err = multierr.Append(err, errors.Wrapf(ErrNodeOutOfRange, "id_0 %d not in [0, %d)", r.ID0, nodeCount))
	}
	if r.ID1 >= nodeCount {
		err = multierr.Append(err, errors.Wrapf(ErrNodeOutOfRange, "id_1 %d not in [0, %d)", r.ID1, nodeCount))
	}
	return err
}

// RepairConnectivity returns relations extended so that every node in
// [1, nodeCount) is linked to node 0. A node counts as linked only by a
// relation with ID0 == 0 and ID1 == node. For every other node a certain merge
// relation {0, node} is appended, in ascending node order. The input slice is
// not modified.
func RepairConnectivity(nodeCount uint, relations []Relation) []Relation {
	repaired, _ := repairConnectivity(nodeCount, relations)
	return repaired
}

func repairConnectivity(nodeCount uint, relations []Relation) ([]Relation, []uint) {
	linked := make([]bool, nodeCount)
	for _, r := range relations {
		if r.ID0 == 0 && r.ID1 < nodeCount {
			linked[r.ID1] = true
		}
	}

	repaired := make([]Relation, len(relations), len(relations)+int(nodeCount))
	copy(repaired, relations)
	var added []uint
	for i := uint(1); i < nodeCount; i++ {
		if linked[i] {
			continue
		}
		repaired = append(repaired, Relation{
			ID0:         0,
			ID1:         i,
			Probability: []float64{1.0, 0.0},
			GroundTruth: GroundTruthUnknown,
			Type:        EdgeTypeSurface,
		})
		added = append(added, i)
	}
	return repaired, added
}

// BuildFromRelations builds a graph over nodeCount nodes from the given
// relations. Relations are validated first and every violation is reported.
// The graph is then made connected through node 0 with RepairConnectivity and
// one edge weighted by the merge probability is emitted per relation. Parallel
// edges are not merged.
func BuildFromRelations(nodeCount uint, relations []Relation, logger logging.Logger) ([]Edge, error) {
	edges, _, err := buildFromRelations(nodeCount, relations, logger)
	return edges, err
}

func buildFromRelations(nodeCount uint, relations []Relation, logger logging.Logger) ([]Edge, []Relation, error) {
	logger.Debugw("building graph from relations", "nodes", nodeCount, "relations", len(relations))

	var err error
	for i, r := range relations {
		if relErr := r.Validate(nodeCount); relErr != nil {
			err = multierr.Append(err, errors.Wrapf(relErr, "relation %d (%d-%d)", i, r.ID0, r.ID1))
		}
	}
	if err != nil {
		return nil, nil, err
	}

	repaired, added := repairConnectivity(nodeCount, relations)
	for _, node := range added {
		logger.Debugf("node without relation: adding relation 0-%d", node)
	}

	edges := lo.Map(repaired, func(r Relation, _ int) Edge {
		return Edge{A: r.ID0, B: r.ID1, Type: EdgeTypeSurface, W: r.MergeProbability()}
	})
	logger.Debugf("created %d edges from %d relations", len(edges), len(relations))
	return edges, repaired, nil
}
