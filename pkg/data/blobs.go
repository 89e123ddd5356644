package data

import (
	"math/rand"

	"github.com/pkg/errors"
)

// DefaultCenters are the cluster centres used when none are configured.
var DefaultCenters = [][2]float64{{-1, -1}, {1, 1}}

// MakeBlobs draws n points from isotropic Gaussian clusters, one class per
// centre, and returns them shuffled in a frame with the canonical
// FeatureX, FeatureY and ClassColumn columns. Points are shared out evenly;
// the first n%len(centers) clusters get one extra.
func MakeBlobs(n int, centers [][2]float64, std float64, seed int64) (*Frame, error) {
	if n <= 0 {
		return nil, errors.Errorf("data: blobs need a positive sample count, got %d", n)
	}
	if len(centers) == 0 {
		centers = DefaultCenters
	}
	if std <= 0 {
		return nil, errors.Errorf("data: blobs need a positive std, got %v", std)
	}

	rnd := rand.New(rand.NewSource(seed))
	x0 := make([]float64, 0, n)
	x1 := make([]float64, 0, n)
	cls := make([]float64, 0, n)
	per, extra := n/len(centers), n%len(centers)
	for c, ctr := range centers {
		m := per
		if c < extra {
			m++
		}
		for i := 0; i < m; i++ {
			x0 = append(x0, ctr[0]+rnd.NormFloat64()*std)
			x1 = append(x1, ctr[1]+rnd.NormFloat64()*std)
			cls = append(cls, float64(c))
		}
	}

	f, err := NewFrame([]string{FeatureX, FeatureY, ClassColumn}, [][]float64{x0, x1, cls})
	if err != nil {
		return nil, err
	}
	return f.Subset(rnd.Perm(n)), nil
}
