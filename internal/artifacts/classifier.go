package artifacts

import (
	"fmt"
	"math"

	"github.com/heart-failure-risk-portal/internal/domain"
)

// Classifier kinds
const (
	ClassifierLogistic     = "logistic_regression"
	ClassifierDecisionTree = "decision_tree"
	ClassifierRandomForest = "random_forest"
)

// LogisticRegression is a fitted linear model with a probability cut-off.
// Only a probability strictly above the cut-off is high risk, so a zero
// margin at the default cut-off is low risk.
type LogisticRegression struct {
	coef      domain.FeatureVector
	intercept float64
	threshold float64
}

// NewLogisticRegression builds the model; threshold defaults to 0.5.
func NewLogisticRegression(coef []float64, intercept float64, threshold *float64) (*LogisticRegression, error) {
	m := &LogisticRegression{intercept: intercept, threshold: 0.5}
	if err := fill(&m.coef, coef, "coefficients"); err != nil {
		return nil, err
	}
	if math.IsNaN(intercept) || math.IsInf(intercept, 0) {
		return nil, fmt.Errorf("intercept is not finite")
	}
	if threshold != nil {
		if *threshold <= 0 || *threshold >= 1 {
			return nil, fmt.Errorf("threshold %v outside (0, 1)", *threshold)
		}
		m.threshold = *threshold
	}
	return m, nil
}

// Probability returns the model's estimate that the vector is high risk
func (m *LogisticRegression) Probability(v domain.FeatureVector) float64 {
	z := m.intercept
	for i := range v {
		z += m.coef[i] * v[i]
	}
	return 1 / (1 + math.Exp(-z))
}

// Predict implements domain.Classifier
func (m *LogisticRegression) Predict(v domain.FeatureVector) (domain.Label, error) {
	if err := checkFinite(v, "input"); err != nil {
		return 0, err
	}
	if m.Probability(v) > m.threshold {
		return domain.LabelHighRisk, nil
	}
	return domain.LabelLowRisk, nil
}

// TreeNode is one entry of a flattened decision tree. Internal nodes send
// a vector left when its feature value is at most the threshold.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx" yaml:"feature_idx"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
	LeftChild  int     `json:"left_child" yaml:"left_child"`
	RightChild int     `json:"right_child" yaml:"right_child"`
	ClassLabel int     `json:"class_label" yaml:"class_label"`
	IsLeaf     bool    `json:"is_leaf" yaml:"is_leaf"`
}

// DecisionTree is a fitted tree stored as a flat node table rooted at 0.
type DecisionTree struct {
	nodes []TreeNode
}

// NewDecisionTree validates the node table. Children must come after their
// parent, which rules out cycles and guarantees every walk reaches a leaf.
func NewDecisionTree(nodes []TreeNode) (*DecisionTree, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}
	for i, n := range nodes {
		if n.IsLeaf {
			if n.ClassLabel != int(domain.LabelLowRisk) && n.ClassLabel != int(domain.LabelHighRisk) {
				return nil, fmt.Errorf("node %d: class_label %d is not binary", i, n.ClassLabel)
			}
			continue
		}
		if n.FeatureIdx < 0 || n.FeatureIdx >= domain.FeatureCount {
			return nil, fmt.Errorf("%w: node %d splits on feature %d", domain.ErrIncompatibleArtifact, i, n.FeatureIdx)
		}
		if n.LeftChild <= i || n.LeftChild >= len(nodes) || n.RightChild <= i || n.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: children (%d, %d) out of order", i, n.LeftChild, n.RightChild)
		}
	}
	copied := make([]TreeNode, len(nodes))
	copy(copied, nodes)
	return &DecisionTree{nodes: copied}, nil
}

// Predict implements domain.Classifier
func (t *DecisionTree) Predict(v domain.FeatureVector) (domain.Label, error) {
	if err := checkFinite(v, "input"); err != nil {
		return 0, err
	}
	i := 0
	for !t.nodes[i].IsLeaf {
		n := t.nodes[i]
		if v[n.FeatureIdx] <= n.Threshold {
			i = n.LeftChild
		} else {
			i = n.RightChild
		}
	}
	return domain.Label(t.nodes[i].ClassLabel), nil
}

// RandomForest takes a majority vote over its trees. A tied vote is high
// risk so that disagreement never reads as reassurance.
type RandomForest struct {
	trees []*DecisionTree
}

// NewRandomForest wraps already validated trees
func NewRandomForest(trees []*DecisionTree) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}
	return &RandomForest{trees: trees}, nil
}

// Predict implements domain.Classifier
func (f *RandomForest) Predict(v domain.FeatureVector) (domain.Label, error) {
	high := 0
	for i, t := range f.trees {
		label, err := t.Predict(v)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		if label == domain.LabelHighRisk {
			high++
		}
	}
	if 2*high >= len(f.trees) {
		return domain.LabelHighRisk, nil
	}
	return domain.LabelLowRisk, nil
}
