package model

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeClassifier is a CART-style classifier.
type DecisionTreeClassifier struct {
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	Criterion           string  // "gini" (default) or "entropy"
	MaxFeatures         int     // 0 => all features, >0 => features sampled per split
	MinImpurityDecrease float64 // minimal impurity decrease to accept a split
	RandomState         int64   // seed for feature subsampling

	root      *dtNode
	classes   []int // sorted unique labels, order used by probas
	nFeatures int
}

// dtNode holds a node in the tree.
type dtNode struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold => left
	nanLeft   bool    // missing values go left
	left      *dtNode
	right     *dtNode

	n      int
	probas []float64 // aligned with tree.classes
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeClassifier) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.MinSamplesLeaf = n }
}
func WithCriterion(c string) Option { return func(t *DecisionTreeClassifier) { t.Criterion = c } }
func WithMaxFeatures(k int) Option  { return func(t *DecisionTreeClassifier) { t.MaxFeatures = k } }
func WithMinImpurityDecrease(v float64) Option {
	return func(t *DecisionTreeClassifier) { t.MinImpurityDecrease = v }
}
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeClassifier) { t.RandomState = seed }
}

// NewDecisionTreeClassifier returns a classifier with sklearn-like defaults.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	d := &DecisionTreeClassifier{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API
// ---------------------------

// Fit trains the tree on X (n x p) and labels y.
// Missing values must be math.NaN(); they follow whichever side of a split
// gives the larger impurity decrease, and that side is remembered for
// prediction.
func (t *DecisionTreeClassifier) Fit(X [][]float64, y []int) error {
	p, err := checkXY("dtree", X, y)
	if err != nil {
		return err
	}
	switch t.Criterion {
	case "", "gini", "entropy":
	default:
		return errors.Errorf("dtree: unknown criterion %q", t.Criterion)
	}

	t.classes = uniqueSorted(y)
	t.nFeatures = p

	// y re-indexed into class positions once, so split scans can use slices
	yi := make([]int, len(y))
	for i, lab := range y {
		yi[i] = sort.SearchInts(t.classes, lab)
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}

	b := &treeBuilder{
		t:        t,
		X:        X,
		y:        yi,
		p:        p,
		k:        len(t.classes),
		rnd:      rand.New(rand.NewSource(t.RandomState)),
		impurity: giniFromCounts,
	}
	if t.Criterion == "entropy" {
		b.impurity = entropyFromCounts
	}
	t.root = b.build(idx, 0)
	return nil
}

// Fitted reports whether Fit has completed.
func (t *DecisionTreeClassifier) Fitted() bool { return t.root != nil }

// Classes returns the sorted class labels seen during Fit.
func (t *DecisionTreeClassifier) Classes() []int {
	return append([]int(nil), t.classes...)
}

// NFeatures returns the number of features seen during Fit.
func (t *DecisionTreeClassifier) NFeatures() int { return t.nFeatures }

// Predict returns the most probable class label for each row. An unfitted
// tree predicts 0.
func (t *DecisionTreeClassifier) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	if t.root == nil {
		return out
	}
	for i := range X {
		out[i] = t.classes[argmaxFloat(t.predictProbaSingle(X[i]))]
	}
	return out
}

// PredictProba returns the per-class probability vectors for rows in X.
func (t *DecisionTreeClassifier) PredictProba(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = append([]float64(nil), t.predictProbaSingle(X[i])...)
	}
	return out
}

// Depth returns the depth of the deepest leaf (a single leaf has depth 0).
func (t *DecisionTreeClassifier) Depth() int { return nodeDepth(t.root) }

// NLeaves returns the number of leaves.
func (t *DecisionTreeClassifier) NLeaves() int { return nodeLeaves(t.root) }

// PruneReducedError performs reduced-error post-pruning using validation data.
// A sibling pair of leaves is merged when doing so does not lower validation
// accuracy. Returns the number of merged nodes.
func (t *DecisionTreeClassifier) PruneReducedError(Xval [][]float64, yval []int) (int, error) {
	if t.root == nil {
		return 0, ErrNotFitted
	}
	if len(Xval) == 0 || len(yval) != len(Xval) {
		return 0, errors.New("dtree: invalid validation set")
	}
	return t.pruneNode(t.root, Xval, yval), nil
}

// ---------------------------
// Builder
// ---------------------------

type treeBuilder struct {
	t        *DecisionTreeClassifier
	X        [][]float64
	y        []int // class positions
	p, k     int
	rnd      *rand.Rand
	impurity func([]int) float64
}

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	nanLeft   bool
	nanSeen   bool
	leftIdx   []int
	rightIdx  []int
}

type pair struct {
	v float64
	i int
}

func (b *treeBuilder) leaf(counts []int, n int) *dtNode {
	return &dtNode{isLeaf: true, n: n, probas: countsToProbas(counts)}
}

func (b *treeBuilder) build(idx []int, depth int) *dtNode {
	t := b.t
	counts := b.counts(idx)

	if isPure(counts) || len(idx) < t.MinSamplesSplit || len(idx) < 2*max(t.MinSamplesLeaf, 1) {
		return b.leaf(counts, len(idx))
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return b.leaf(counts, len(idx))
	}

	features := make([]int, b.p)
	for j := range features {
		features[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < b.p {
		b.rnd.Shuffle(len(features), func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = features[:t.MaxFeatures]
		sort.Ints(features)
	}

	parent := b.impurity(counts)

	// one goroutine per candidate feature; results slot by position so ties
	// resolve to the lowest feature index regardless of scheduling
	results := make([]splitResult, len(features))
	var wg sync.WaitGroup
	for i, f := range features {
		wg.Add(1)
		go func(i, f int) {
			defer wg.Done()
			results[i] = b.bestSplit(idx, f, parent)
		}(i, f)
	}
	wg.Wait()

	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	if best.feature == -1 || best.gain <= t.MinImpurityDecrease {
		return b.leaf(counts, len(idx))
	}

	node := &dtNode{
		feature:   best.feature,
		threshold: best.threshold,
		n:         len(idx),
		probas:    countsToProbas(counts),
		left:      b.build(best.leftIdx, depth+1),
		right:     b.build(best.rightIdx, depth+1),
	}
	// without training NaNs, missing values follow the larger child
	node.nanLeft = best.nanLeft
	if !best.nanSeen {
		node.nanLeft = node.left.n >= node.right.n
	}
	return node
}

func (b *treeBuilder) counts(idx []int) []int {
	c := make([]int, b.k)
	for _, i := range idx {
		c[b.y[i]]++
	}
	return c
}

// bestSplit scans sorted values of feature f keeping running class counts,
// evaluating every midpoint between distinct consecutive values with the
// missing rows sent first left then right.
func (b *treeBuilder) bestSplit(idx []int, f int, parent float64) splitResult {
	res := splitResult{feature: -1}
	minLeaf := max(b.t.MinSamplesLeaf, 1)

	valid := make([]pair, 0, len(idx))
	var nans []int
	for _, i := range idx {
		v := b.X[i][f]
		if math.IsNaN(v) {
			nans = append(nans, i)
			continue
		}
		valid = append(valid, pair{v, i})
	}
	if len(valid) < 2 {
		return res
	}
	sort.Slice(valid, func(a, c int) bool { return valid[a].v < valid[c].v })

	nanCounts := b.counts(nans)
	total := b.counts(indicesFromPairs(valid))
	left := make([]int, b.k)
	right := make([]int, b.k)
	lWith := make([]int, b.k)
	rWith := make([]int, b.k)
	n := float64(len(idx))

	bestS, bestNaNLeft := -1, false
	for s := 1; s < len(valid); s++ {
		left[b.y[valid[s-1].i]]++
		if valid[s].v == valid[s-1].v {
			continue
		}
		for c := range right {
			right[c] = total[c] - left[c]
		}
		nl, nr := s, len(valid)-s

		for _, nanLeft := range []bool{true, false} {
			if !nanLeft && len(nans) == 0 {
				break
			}
			copy(lWith, left)
			copy(rWith, right)
			ln, rn := nl, nr
			if nanLeft {
				addCounts(lWith, nanCounts)
				ln += len(nans)
			} else {
				addCounts(rWith, nanCounts)
				rn += len(nans)
			}
			if ln < minLeaf || rn < minLeaf {
				continue
			}
			weighted := float64(ln)/n*b.impurity(lWith) + float64(rn)/n*b.impurity(rWith)
			if gain := parent - weighted; gain > res.gain {
				res.gain = gain
				res.feature = f
				res.threshold = (valid[s-1].v + valid[s].v) / 2
				bestS, bestNaNLeft = s, nanLeft
			}
		}
	}
	if bestS < 0 {
		return res
	}

	res.leftIdx = indicesFromPairs(valid[:bestS])
	res.rightIdx = indicesFromPairs(valid[bestS:])
	res.nanLeft, res.nanSeen = bestNaNLeft, len(nans) > 0
	if bestNaNLeft {
		res.leftIdx = append(res.leftIdx, nans...)
	} else {
		res.rightIdx = append(res.rightIdx, nans...)
	}
	return res
}

// ---------------------------
// Prediction
// ---------------------------

func (t *DecisionTreeClassifier) predictProbaSingle(x []float64) []float64 {
	if t.root == nil {
		p := make([]float64, max(len(t.classes), 1))
		for i := range p {
			p[i] = 1.0 / float64(len(p))
		}
		return p
	}
	node := t.root
	for !node.isLeaf {
		val := x[node.feature]
		switch {
		case math.IsNaN(val):
			if node.nanLeft {
				node = node.left
			} else {
				node = node.right
			}
		case val <= node.threshold:
			node = node.left
		default:
			node = node.right
		}
	}
	return node.probas
}

// ---------------------------
// Impurity & helpers
// ---------------------------

func giniFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 1.0
	for _, c := range counts {
		p := float64(c) / n
		res -= p * p
	}
	return res
}

func entropyFromCounts(counts []int) float64 {
	n := 0.0
	for _, c := range counts {
		n += float64(c)
	}
	if n == 0 {
		return 0
	}
	res := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		res -= p * math.Log2(p)
	}
	return res
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func countsToProbas(counts []int) []float64 {
	n := 0
	for _, c := range counts {
		n += c
	}
	p := make([]float64, len(counts))
	if n == 0 {
		return p
	}
	for i := range counts {
		p[i] = float64(counts[i]) / float64(n)
	}
	return p
}

func addCounts(dst, src []int) {
	for i := range src {
		dst[i] += src[i]
	}
}

func argmaxFloat(arr []float64) int {
	best := 0
	for i := 1; i < len(arr); i++ {
		if arr[i] > arr[best] {
			best = i
		}
	}
	return best
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, len(pairs))
	for k, p := range pairs {
		out[k] = p.i
	}
	return out
}

func uniqueSorted(y []int) []int {
	seen := make(map[int]struct{}, 8)
	out := make([]int, 0, 8)
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func nodeDepth(n *dtNode) int {
	if n == nil || n.isLeaf {
		return 0
	}
	return 1 + max(nodeDepth(n.left), nodeDepth(n.right))
}

func nodeLeaves(n *dtNode) int {
	if n == nil {
		return 0
	}
	if n.isLeaf {
		return 1
	}
	return nodeLeaves(n.left) + nodeLeaves(n.right)
}

// ---------------------------
// Reduced-error pruning
// ---------------------------

func (t *DecisionTreeClassifier) pruneNode(node *dtNode, Xval [][]float64, yval []int) int {
	if node == nil || node.isLeaf {
		return 0
	}
	pruned := t.pruneNode(node.left, Xval, yval) + t.pruneNode(node.right, Xval, yval)

	if !node.left.isLeaf || !node.right.isLeaf {
		return pruned
	}
	baseline := Accuracy(yval, t.Predict(Xval))
	left, right := node.left, node.right
	node.isLeaf = true
	if Accuracy(yval, t.Predict(Xval)) >= baseline {
		node.left, node.right = nil, nil
		return pruned + 1
	}
	node.isLeaf = false
	node.left, node.right = left, right
	return pruned
}
