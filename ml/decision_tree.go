package ml

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

const (
	TypeRegressionTree = "regression_tree"
	TypeRandomForest   = "random_forest"
)

// RegressionTree is a fitted CART regressor stored as a flat node array with the root at index 0.
type RegressionTree struct {
	nodes []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// NewRegressionTree checks the node layout against the feature vector length.
// Children must come after their parent, which rules out cycles.
func NewRegressionTree(nodes []TreeNode, featureCount int) (*RegressionTree, error) {
	if len(nodes) == 0 {
		return nil, errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return nil, fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		if node.LeftChild <= i || node.LeftChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: invalid left child %d", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(nodes) {
			return nil, fmt.Errorf("node %d: invalid right child %d", i, node.RightChild)
		}
	}
	return &RegressionTree{nodes: nodes}, nil
}

func (dt *RegressionTree) Type() string {
	return TypeRegressionTree
}

func (dt *RegressionTree) Predict(features []float64) (float64, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not loaded")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// Depth returns the length of the longest root-to-leaf path.
func (dt *RegressionTree) Depth() int {
	if len(dt.nodes) == 0 {
		return 0
	}
	var walk func(idx int) int
	walk = func(idx int) int {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return 0
		}
		return 1 + max(walk(node.LeftChild), walk(node.RightChild))
	}
	return walk(0)
}

// RandomForest averages the predictions of its trees.
type RandomForest struct {
	trees []*RegressionTree
}

func (f *RandomForest) Type() string {
	return TypeRandomForest
}

func (f *RandomForest) Predict(features []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, errors.New("forest has no trees")
	}
	sum := 0.0
	for i, tree := range f.trees {
		value, err := tree.Predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return sum / float64(len(f.trees)), nil
}

func decodeRegressionTree(raw json.RawMessage, featureCount int) (Regressor, error) {
	var payload struct {
		Nodes []TreeNode `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: regression tree: %v", ErrInvalidBundle, err)
	}
	tree, err := NewRegressionTree(payload.Nodes, featureCount)
	if err != nil {
		return nil, fmt.Errorf("%w: regression tree: %v", ErrInvalidBundle, err)
	}
	return tree, nil
}

func decodeRandomForest(raw json.RawMessage, featureCount int) (Regressor, error) {
	var payload struct {
		Trees [][]TreeNode `json:"trees"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: random forest: %v", ErrInvalidBundle, err)
	}
	if len(payload.Trees) == 0 {
		return nil, fmt.Errorf("%w: random forest has no trees", ErrInvalidBundle)
	}
	forest := &RandomForest{trees: make([]*RegressionTree, 0, len(payload.Trees))}
	for i, nodes := range payload.Trees {
		tree, err := NewRegressionTree(nodes, featureCount)
		if err != nil {
			return nil, fmt.Errorf("%w: random forest tree %d: %v", ErrInvalidBundle, i, err)
		}
		forest.trees = append(forest.trees, tree)
	}
	return forest, nil
}
