package cpu

import (
	"fmt"
	"math"

	"github.com/ember-ml/ember/internal/tensor"
)

// unaryOp applies fn element-wise to a float32 tensor.
func unaryOp(name string, x *tensor.RawTensor, fn func(v float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.%s: requires float32 operand, got %s", name, x.DType()))
	}
	out, err := tensor.NewRaw(x.Shape(), tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}
	xd, od := x.AsFloat32(), out.AsFloat32()
	for i := range od {
		od[i] = fn(xd[i])
	}
	return out
}

// Exp computes the element-wise exponential.
func (b *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Exp", x, func(v float32) float32 {
		return float32(math.Exp(float64(v)))
	})
}

// Log computes the element-wise natural logarithm.
func (b *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("Log", x, func(v float32) float32 {
		return float32(math.Log(float64(v)))
	})
}

// ReLU applies max(0, x) element-wise.
func (b *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp("ReLU", x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// MulScalar multiplies every element by a scalar.
func (b *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s := float32(scalar)
	return unaryOp("MulScalar", x, func(v float32) float32 { return v * s })
}

// AddScalar adds a scalar to every element.
func (b *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	s := float32(scalar)
	return unaryOp("AddScalar", x, func(v float32) float32 { return v + s })
}

// Softmax normalizes each row of the last dimension into probabilities.
func (b *CPUBackend) Softmax(x *tensor.RawTensor) *tensor.RawTensor {
	out := b.LogSoftmax(x)
	od := out.AsFloat32()
	for i, v := range od {
		od[i] = float32(math.Exp(float64(v)))
	}
	return out
}

// LogSoftmax computes log(softmax(x)) along the last dimension using the
// log-sum-exp trick: subtracting the row max before exponentiating prevents
// overflow for large scores and underflow when all scores are very negative.
func (b *CPUBackend) LogSoftmax(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.LogSoftmax: requires float32 operand, got %s", x.DType()))
	}
	shape := x.Shape()
	if len(shape) == 0 {
		panic("cpu.LogSoftmax: requires at least one dimension")
	}

	out, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	classes := shape[len(shape)-1]
	xd, od := x.AsFloat32(), out.AsFloat32()

	for row := 0; row < len(xd); row += classes {
		logSumExpRow(xd[row:row+classes], od[row:row+classes])
	}
	return out
}

// logSumExpRow writes z - logsumexp(z) into dst.
func logSumExpRow(z, dst []float32) {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(float64(v - maxZ))
	}
	logSumExp := maxZ + float32(math.Log(sumExp))

	for i, v := range z {
		dst[i] = v - logSumExp
	}
}
