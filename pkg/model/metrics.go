package model

// Accuracy returns the fraction of positions where yPred equals yTrue.
// Mismatched or empty inputs score 0.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// ConfusionMatrix counts (true, predicted) pairs over the given class order.
// Labels not present in classes are ignored.
func ConfusionMatrix(yTrue, yPred, classes []int) [][]int {
	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	m := make([][]int, len(classes))
	for i := range m {
		m[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		if i >= len(yPred) {
			break
		}
		a, okA := pos[yTrue[i]]
		b, okB := pos[yPred[i]]
		if okA && okB {
			m[a][b]++
		}
	}
	return m
}
