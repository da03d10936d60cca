package nn

import (
	"fmt"

	"github.com/ember-ml/ember/internal/tensor"
)

// Accuracy returns the fraction of rows whose argmax matches the target
// class index.
//
// scores: [batch_size, num_classes] logits or log-probabilities (argmax is
// the same either way, since log_softmax is monotonic per row).
// targets: [batch_size] int32 class indices.
func Accuracy[B tensor.Backend](
	scores *tensor.Tensor[float32, B],
	targets *tensor.Tensor[int32, B],
) float64 {
	shape := scores.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Accuracy: scores must be 2D [batch, classes], got %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if targets.NumElements() != batch {
		panic(fmt.Sprintf("Accuracy: targets must have %d elements, got %d", batch, targets.NumElements()))
	}
	if batch == 0 {
		return 0
	}

	scoresData := scores.Raw().AsFloat32()
	targetsData := targets.Raw().AsInt32()

	correct := 0
	for b := 0; b < batch; b++ {
		row := scoresData[b*classes : (b+1)*classes]
		best := 0
		for i := 1; i < classes; i++ {
			if row[i] > row[best] {
				best = i
			}
		}
		if int32(best) == targetsData[b] {
			correct++
		}
	}
	return float64(correct) / float64(batch)
}
