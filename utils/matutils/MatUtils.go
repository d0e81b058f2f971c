// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/golearn/duelingdqn/utils/floatutils"
)

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	return floatutils.Argmax(mat.Col(nil, 0, values))
}

// RowMean compute and returns the mean of the rows of a matrix
func RowMean(matrix *mat.Dense) *mat.VecDense {
	r, _ := matrix.Dims()
	rowMeans := make([]float64, r)

	for i := 0; i < r; i++ {
		rowMeans[i] = stat.Mean(matrix.RawRowView(i), nil)
	}
	return mat.NewVecDense(r, rowMeans)
}

// Flatten returns the elements of a matrix in row-major order. The
// returned slice never aliases the matrix.
func Flatten(m mat.Matrix) []float64 {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return data
}

// Stack stacks vectors of equal length as the rows of a new matrix
func Stack(rows []mat.Vector) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	cols := rows[0].Len()
	out := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		if row.Len() != cols {
			panic(fmt.Sprintf("stack: rows have different lengths"+
				"\n\twant(%v)\n\thave(%v)", cols, row.Len()))
		}
		out.SetRow(i, mat.Col(nil, 0, row))
	}
	return out
}
