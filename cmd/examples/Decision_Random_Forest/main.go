package main

import (
	"fmt"
	"log"

	"gonum.org/v1/plot/vg"

	"github.com/jparrax/datascience-middle-course/pkg/data"
	"github.com/jparrax/datascience-middle-course/pkg/display"
	"github.com/jparrax/datascience-middle-course/pkg/model"
)

// Compares a depth-limited tree with a forest on three Gaussian blobs and
// writes one boundary figure per classifier.
func main() {
	frame, err := data.MakeBlobs(600, [][2]float64{{-3, -1}, {2, -2}, {0, 3}}, 1.2, 42)
	if err != nil {
		log.Fatal(err)
	}
	train, test, err := data.TrainTestSplit(frame, 0.3, 42)
	if err != nil {
		log.Fatal(err)
	}

	Xtrain, ytrain, err := split(train)
	if err != nil {
		log.Fatal(err)
	}
	Xtest, ytest, err := split(test)
	if err != nil {
		log.Fatal(err)
	}
	mesh, err := train.Matrix(data.FeatureX, data.FeatureY)
	if err != nil {
		log.Fatal(err)
	}

	classifiers := []struct {
		name string
		clf  interface {
			model.Classifier
			Fit([][]float64, []int) error
		}
	}{
		{"tree", model.NewDecisionTreeClassifier(model.WithMaxDepth(3))},
		{"forest", model.NewRandomForest(model.WithNEstimators(50), model.WithForestRandomState(42))},
	}

	for _, c := range classifiers {
		if err := c.clf.Fit(Xtrain, ytrain); err != nil {
			log.Fatal(err)
		}
		acc := model.Accuracy(ytest, c.clf.Predict(Xtest))
		fmt.Printf("%-6s test accuracy: %.3f\n", c.name, acc)

		disp, err := display.FromEstimator(c.clf, mesh, display.WithColormap("coolwarm"), display.WithAlpha(0.5))
		if err != nil {
			log.Fatal(err)
		}
		ax, err := display.Scatter(train, display.ScatterSpec{
			X:        data.FeatureX,
			Y:        data.FeatureY,
			C:        data.ClassColumn,
			Size:     30,
			Colormap: "coolwarm",
			Ax:       disp.Ax,
		})
		if err != nil {
			log.Fatal(err)
		}
		ax.SetTitle(fmt.Sprintf("%s (accuracy %.2f)", c.name, acc))
		out := c.name + "_boundary.png"
		if err := ax.Save(out, 5*vg.Inch, 5*vg.Inch); err != nil {
			log.Fatal(err)
		}
		fmt.Println("wrote", out)
	}
}

func split(f *data.Frame) ([][]float64, []int, error) {
	X, err := f.Rows(data.FeatureX, data.FeatureY)
	if err != nil {
		return nil, nil, err
	}
	y, err := f.Labels(data.ClassColumn)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}
