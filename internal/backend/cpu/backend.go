// Package cpu implements the tensor.Backend interface in pure Go.
//
// All operations allocate fresh result tensors; operands are never mutated.
// Arithmetic is implemented for float32, the parameter dtype used across
// the framework. Integer tensors (labels, argmax results) only flow through
// shape and indexing paths.
package cpu

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// CPUBackend is the pure-Go compute backend.
type CPUBackend struct {
	matmulBlock int
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{matmulBlock: matmulBlockSize()}
}

// Name returns the backend name.
func (b *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (b *CPUBackend) Device() tensor.Device {
	return tensor.CPU
}

// Add performs element-wise addition with broadcasting.
func (b *CPUBackend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Add", x, y, func(a, c float32) float32 { return a + c })
}

// Sub performs element-wise subtraction with broadcasting.
func (b *CPUBackend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Sub", x, y, func(a, c float32) float32 { return a - c })
}

// Mul performs element-wise multiplication with broadcasting.
func (b *CPUBackend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Mul", x, y, func(a, c float32) float32 { return a * c })
}

// Div performs element-wise division with broadcasting.
func (b *CPUBackend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp("Div", x, y, func(a, c float32) float32 { return a / c })
}

// binaryOp applies fn element-wise over the broadcast of x and y.
func (b *CPUBackend) binaryOp(name string, x, y *tensor.RawTensor, fn func(a, c float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 || y.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.%s: requires float32 operands, got %s and %s", name, x.DType(), y.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(x.Shape(), y.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu.%s: %v", name, err))
	}

	out, err := tensor.NewRaw(outShape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	xd, yd, od := x.AsFloat32(), y.AsFloat32(), out.AsFloat32()

	if !needsBroadcast {
		for i := range od {
			od[i] = fn(xd[i], yd[i])
		}
		return out
	}

	xIdx := newBroadcastIndexer(x.Shape(), outShape)
	yIdx := newBroadcastIndexer(y.Shape(), outShape)
	for i := range od {
		od[i] = fn(xd[xIdx.at(i)], yd[yIdx.at(i)])
	}
	return out
}

// broadcastIndexer maps a flat index in the broadcast result to the flat
// index of an operand, treating size-1 (or missing) dimensions as stride 0.
type broadcastIndexer struct {
	outStride []int
	srcStride []int
}

func newBroadcastIndexer(src, out tensor.Shape) *broadcastIndexer {
	outStride := out.ComputeStrides()
	srcActual := src.ComputeStrides()

	srcStride := make([]int, len(out))
	offset := len(out) - len(src)
	for i := range out {
		si := i - offset
		if si < 0 || src[si] == 1 {
			srcStride[i] = 0
		} else {
			srcStride[i] = srcActual[si]
		}
	}
	return &broadcastIndexer{outStride: outStride, srcStride: srcStride}
}

func (bi *broadcastIndexer) at(flat int) int {
	src := 0
	for d := range bi.outStride {
		idx := flat / bi.outStride[d]
		flat -= idx * bi.outStride[d]
		src += idx * bi.srcStride[d]
	}
	return src
}
