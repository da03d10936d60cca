package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Reshape returns a tensor with the same elements and a new shape.
// The data is copied so the result is independent of the input.
func (b *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("cpu.Reshape: cannot reshape %v to %v", x.Shape(), newShape))
	}
	out, err := tensor.NewRaw(newShape, x.DType(), tensor.CPU)
	if err != nil {
		panic(err)
	}
	copy(out.Data(), x.Data())
	return out
}

// Transpose swaps the two dimensions of a 2D tensor.
func (b *CPUBackend) Transpose(x *tensor.RawTensor) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cpu.Transpose: requires 2D operand, got %v", shape))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.Transpose: requires float32 operand, got %s", x.DType()))
	}

	rows, cols := shape[0], shape[1]
	out, err := tensor.NewRaw(tensor.Shape{cols, rows}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	xd, od := x.AsFloat32(), out.AsFloat32()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			od[c*rows+r] = xd[r*cols+c]
		}
	}
	return out
}
