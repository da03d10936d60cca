package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Sum reduces the whole tensor to a single-element total.
func (b *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.Sum: requires float32 operand, got %s", x.DType()))
	}
	out, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}
	total := float32(0)
	for _, v := range x.AsFloat32() {
		total += v
	}
	out.AsFloat32()[0] = total
	return out
}

// SumDim sums along a dimension, optionally keeping it with size 1.
func (b *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cpu.SumDim: dim %d out of range for shape %v", dim, shape))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.SumDim: requires float32 operand, got %s", x.DType()))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	out, err := tensor.NewRaw(outShape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	// outer × reduced × inner walk over the row-major buffer.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	reduced := shape[dim]

	xd, od := x.AsFloat32(), out.AsFloat32()
	for o := 0; o < outer; o++ {
		for r := 0; r < reduced; r++ {
			base := (o*reduced + r) * inner
			outBase := o * inner
			for i := 0; i < inner; i++ {
				od[outBase+i] += xd[base+i]
			}
		}
	}
	return out
}

// Argmax returns int32 indices of the maximum value along dim.
// Only the last dimension of a 2D tensor is supported, which is the
// per-example class prediction case.
func (b *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 || dim != 1 {
		panic(fmt.Sprintf("cpu.Argmax: only dim=1 over 2D tensors is supported, got shape %v dim %d", shape, dim))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.Argmax: requires float32 operand, got %s", x.DType()))
	}

	rows, cols := shape[0], shape[1]
	out, err := tensor.NewRaw(tensor.Shape{rows}, tensor.Int32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	xd, od := x.AsFloat32(), out.AsInt32()
	for r := 0; r < rows; r++ {
		row := xd[r*cols : (r+1)*cols]
		best := 0
		for i, v := range row[1:] {
			if v > row[best] {
				best = i + 1
			}
		}
		od[r] = int32(best)
	}
	return out
}
