package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.5, Accuracy([]int{1, 0, 1, 0}, []int{1, 1, 1, 1}))
	assert.Equal(t, 0.0, Accuracy(nil, nil))
	assert.Equal(t, 0.0, Accuracy([]int{1}, []int{1, 1}))
}

func TestConfusionMatrix(t *testing.T) {
	m := ConfusionMatrix([]int{0, 0, 1, 1, 2}, []int{0, 1, 1, 1, 9}, []int{0, 1, 2})
	assert.Equal(t, [][]int{{1, 1, 0}, {0, 2, 0}, {0, 0, 0}}, m)
}
