package cpu

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"

	"github.com/ember-ml/ember/internal/tensor"
)

// matmulBlockSize picks the cache-blocking factor for MatMul based on the
// host's vector width. Wider SIMD units keep larger panels hot, so the
// compiler-vectorized inner loop benefits from bigger blocks.
func matmulBlockSize() int {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F):
		return 128
	case cpuid.CPU.Supports(cpuid.AVX2):
		return 64
	default:
		return 32
	}
}

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (b *CPUBackend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xs, ys := x.Shape(), y.Shape()
	if len(xs) != 2 || len(ys) != 2 {
		panic(fmt.Sprintf("cpu.MatMul: requires 2D operands, got %v and %v", xs, ys))
	}
	if xs[1] != ys[0] {
		panic(fmt.Sprintf("cpu.MatMul: inner dimensions mismatch: %v @ %v", xs, ys))
	}
	if x.DType() != tensor.Float32 || y.DType() != tensor.Float32 {
		panic(fmt.Sprintf("cpu.MatMul: requires float32 operands, got %s and %s", x.DType(), y.DType()))
	}

	m, k, n := xs[0], xs[1], ys[1]

	out, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, tensor.CPU)
	if err != nil {
		panic(err)
	}

	a, c, o := x.AsFloat32(), y.AsFloat32(), out.AsFloat32()
	bs := b.matmulBlock

	// Blocked i-k-j loop: the inner j loop walks both c and o contiguously.
	for i0 := 0; i0 < m; i0 += bs {
		iMax := min(i0+bs, m)
		for k0 := 0; k0 < k; k0 += bs {
			kMax := min(k0+bs, k)
			for j0 := 0; j0 < n; j0 += bs {
				jMax := min(j0+bs, n)
				for i := i0; i < iMax; i++ {
					for kk := k0; kk < kMax; kk++ {
						aik := a[i*k+kk]
						if aik == 0 {
							continue
						}
						cRow := c[kk*n+j0 : kk*n+jMax]
						oRow := o[i*n+j0 : i*n+jMax]
						for j := range oRow {
							oRow[j] += aik * cRow[j]
						}
					}
				}
			}
		}
	}

	return out
}
