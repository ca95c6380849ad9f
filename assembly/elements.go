package assembly

import (
	"fmt"
	"math"
)

// Local P1 element matrices, row-major over the cell's nodes.

func lineLength(X [][2]float64) (h float64, err error) {
	if h = X[1][0] - X[0][0]; !(h > 0) {
		err = fmt.Errorf("degenerate line cell [%v, %v]", X[0][0], X[1][0])
	}
	return
}

func lineStiffness(X [][2]float64) (K []float64, err error) {
	var h float64
	if h, err = lineLength(X); err != nil {
		return
	}
	K = []float64{1 / h, -1 / h, -1 / h, 1 / h}
	return
}

func lineMass(X [][2]float64) (M []float64, err error) {
	var h float64
	if h, err = lineLength(X); err != nil {
		return
	}
	M = []float64{h / 3, h / 6, h / 6, h / 3}
	return
}

// triangleGeometry returns the area and the gradients (b[i], c[i]) of the
// three barycentric coordinates.
func triangleGeometry(X [][2]float64) (area float64, b, c [3]float64, err error) {
	var (
		x1, y1 = X[0][0], X[0][1]
		x2, y2 = X[1][0], X[1][1]
		x3, y3 = X[2][0], X[2][1]
		det    = (x2-x1)*(y3-y1) - (x3-x1)*(y2-y1)
	)
	if !(math.Abs(det) > 0) {
		err = fmt.Errorf("degenerate triangle %v", X)
		return
	}
	area = 0.5 * math.Abs(det)
	b = [3]float64{(y2 - y3) / det, (y3 - y1) / det, (y1 - y2) / det}
	c = [3]float64{(x3 - x2) / det, (x1 - x3) / det, (x2 - x1) / det}
	return
}

func triangleStiffness(X [][2]float64) (K []float64, err error) {
	var (
		area float64
		b, c [3]float64
	)
	if area, b, c, err = triangleGeometry(X); err != nil {
		return
	}
	K = make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			K[3*i+j] = area * (b[i]*b[j] + c[i]*c[j])
		}
	}
	return
}

func triangleMass(X [][2]float64) (M []float64, err error) {
	var area float64
	if area, _, _, err = triangleGeometry(X); err != nil {
		return
	}
	M = make([]float64, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			M[3*i+j] = area / 12
			if i == j {
				M[3*i+j] = area / 6
			}
		}
	}
	return
}

// measure is the length or area of a cell.
func measure(X [][2]float64) (float64, error) {
	switch len(X) {
	case 2:
		return lineLength(X)
	case 3:
		area, _, _, err := triangleGeometry(X)
		return area, err
	}
	return 0, fmt.Errorf("unsupported cell with %d nodes", len(X))
}

func centroid(X [][2]float64) (x, y float64) {
	for _, p := range X {
		x += p[0]
		y += p[1]
	}
	n := float64(len(X))
	return x / n, y / n
}
