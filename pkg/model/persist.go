package model

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
)

// gob only sees exported fields, so the tree is flattened into these
// snapshot types before encoding.
type treeSnapshot struct {
	MaxDepth            int
	MinSamplesSplit     int
	MinSamplesLeaf      int
	Criterion           string
	MaxFeatures         int
	MinImpurityDecrease float64
	RandomState         int64
	Classes             []int
	NFeatures           int
	Nodes               []nodeSnapshot // pre-order, Left/Right index into Nodes, -1 for none
}

type nodeSnapshot struct {
	Leaf      bool
	Feature   int
	Threshold float64
	NaNLeft   bool
	N         int
	Probas    []float64
	Left      int
	Right     int
}

// MarshalBinary implements encoding.BinaryMarshaler using gob.
func (t *DecisionTreeClassifier) MarshalBinary() ([]byte, error) {
	s := treeSnapshot{
		MaxDepth:            t.MaxDepth,
		MinSamplesSplit:     t.MinSamplesSplit,
		MinSamplesLeaf:      t.MinSamplesLeaf,
		Criterion:           t.Criterion,
		MaxFeatures:         t.MaxFeatures,
		MinImpurityDecrease: t.MinImpurityDecrease,
		RandomState:         t.RandomState,
		Classes:             t.classes,
		NFeatures:           t.nFeatures,
	}
	flatten(t.root, &s.Nodes)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, errors.Wrap(err, "dtree: encode")
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler using gob.
func (t *DecisionTreeClassifier) UnmarshalBinary(data []byte) error {
	var s treeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return errors.Wrap(err, "dtree: decode")
	}
	root, err := unflatten(s.Nodes, len(s.Classes), s.NFeatures)
	if err != nil {
		return err
	}
	t.MaxDepth = s.MaxDepth
	t.MinSamplesSplit = s.MinSamplesSplit
	t.MinSamplesLeaf = s.MinSamplesLeaf
	t.Criterion = s.Criterion
	t.MaxFeatures = s.MaxFeatures
	t.MinImpurityDecrease = s.MinImpurityDecrease
	t.RandomState = s.RandomState
	t.classes = s.Classes
	t.nFeatures = s.NFeatures
	t.root = root
	return nil
}

func flatten(n *dtNode, out *[]nodeSnapshot) int {
	if n == nil {
		return -1
	}
	at := len(*out)
	*out = append(*out, nodeSnapshot{
		Leaf:      n.isLeaf,
		Feature:   n.feature,
		Threshold: n.threshold,
		NaNLeft:   n.nanLeft,
		N:         n.n,
		Probas:    n.probas,
		Left:      -1,
		Right:     -1,
	})
	if !n.isLeaf {
		l := flatten(n.left, out)
		r := flatten(n.right, out)
		(*out)[at].Left = l
		(*out)[at].Right = r
	}
	return at
}

func unflatten(nodes []nodeSnapshot, nClasses, nFeatures int) (*dtNode, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	built := make([]*dtNode, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		s := nodes[i]
		if len(s.Probas) != nClasses {
			return nil, errors.Errorf("dtree: node %d has %d probabilities, want %d", i, len(s.Probas), nClasses)
		}
		n := &dtNode{isLeaf: s.Leaf, feature: s.Feature, threshold: s.Threshold, nanLeft: s.NaNLeft, n: s.N, probas: s.Probas}
		if !s.Leaf {
			if s.Feature < 0 || s.Feature >= nFeatures {
				return nil, errors.Errorf("dtree: node %d splits on feature %d, tree has %d", i, s.Feature, nFeatures)
			}
			if s.Left <= i || s.Right <= i || s.Left >= len(nodes) || s.Right >= len(nodes) {
				return nil, errors.Errorf("dtree: node %d has invalid children", i)
			}
			n.left, n.right = built[s.Left], built[s.Right]
		}
		built[i] = n
	}
	return built[0], nil
}

// SaveTree writes a fitted tree to path.
func SaveTree(path string, t *DecisionTreeClassifier) error {
	if !t.Fitted() {
		return ErrNotFitted
	}
	b, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, b, 0o644), "write model %s", path)
}

// LoadTree reads a tree written by SaveTree.
func LoadTree(path string) (*DecisionTreeClassifier, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read model %s", path)
	}
	t := NewDecisionTreeClassifier()
	if err := t.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrapf(err, "load model %s", path)
	}
	return t, nil
}
