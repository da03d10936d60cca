package tensor_test

import (
	"testing"

	"github.com/ember-ml/ember/internal/backend/cpu"
	"github.com/ember-ml/ember/internal/tensor"
)

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		shape tensor.Shape
		want  int
	}{
		{tensor.Shape{2, 3}, 6},
		{tensor.Shape{1}, 1},
		{tensor.Shape{4, 1, 5}, 20},
		{tensor.Shape{}, 0},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("Shape%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b    tensor.Shape
		want    tensor.Shape
		wantErr bool
	}{
		{tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false},
		{tensor.Shape{2, 3}, tensor.Shape{1, 3}, tensor.Shape{2, 3}, false},
		{tensor.Shape{4, 1}, tensor.Shape{1, 5}, tensor.Shape{4, 5}, false},
		{tensor.Shape{2, 3}, tensor.Shape{3}, tensor.Shape{2, 3}, false},
		{tensor.Shape{2, 3}, tensor.Shape{2, 4}, nil, true},
	}
	for _, tt := range tests {
		got, _, err := tensor.BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			if err == nil {
				t.Errorf("BroadcastShapes(%v, %v): expected error", tt.a, tt.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v): %v", tt.a, tt.b, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("BroadcastShapes(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if !x.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("shape = %v, want [2 3]", x.Shape())
	}
	if x.At(1, 2) != 6 {
		t.Errorf("At(1,2) = %f, want 6", x.At(1, 2))
	}

	// Length mismatch must fail.
	if _, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2, 3}, backend); err == nil {
		t.Error("FromSlice with mismatched length: expected error")
	}
}

func TestZerosOnesFull(t *testing.T) {
	backend := cpu.New()

	zeros := tensor.Zeros[float32](tensor.Shape{3}, backend)
	for i, v := range zeros.Data() {
		if v != 0 {
			t.Errorf("Zeros[%d] = %f", i, v)
		}
	}

	ones := tensor.Ones[float32](tensor.Shape{3}, backend)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Errorf("Ones[%d] = %f", i, v)
		}
	}

	full := tensor.Full[float32](tensor.Shape{2}, 3.5, backend)
	for i, v := range full.Data() {
		if v != 3.5 {
			t.Errorf("Full[%d] = %f", i, v)
		}
	}
}

func TestItem(t *testing.T) {
	backend := cpu.New()

	scalar, err := tensor.FromSlice([]float32{2.5}, tensor.Shape{1}, backend)
	if err != nil {
		t.Fatal(err)
	}
	if got := scalar.Item(); got != 2.5 {
		t.Errorf("Item() = %f, want 2.5", got)
	}

	multi := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	defer func() {
		if recover() == nil {
			t.Error("Item on multi-element tensor: expected panic")
		}
	}()
	multi.Item()
}

func TestRawTensor_Clone(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	raw.AsFloat32()[0] = 7

	clone := raw.Clone()
	clone.AsFloat32()[0] = 9

	if raw.AsFloat32()[0] != 7 {
		t.Errorf("Clone shares storage with original")
	}
}

func TestRandn_FloatOnly(t *testing.T) {
	backend := cpu.New()

	x := tensor.Randn[float32](tensor.Shape{100}, backend)
	if x.NumElements() != 100 {
		t.Fatalf("NumElements = %d", x.NumElements())
	}

	defer func() {
		if recover() == nil {
			t.Error("Randn[int32]: expected panic")
		}
	}()
	tensor.Randn[int32](tensor.Shape{3}, backend)
}
