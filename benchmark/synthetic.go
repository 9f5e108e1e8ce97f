package benchmark

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/models/yolov8"
)

// logit is the inverse of the sigmoid.
func logit(p float32) float32 {
	return math32.Log(p / (1 - p))
}

// SyntheticOutput builds a raw output buffer for m, laid out the way m
// declares, in which exactly sc.Candidates records pass sc.ScoreThreshold.
//
// Direct records are centered on one of sc.Clusters random points so their
// boxes overlap. DFL records are anchored to their grid cell.
//
// Arguments:
//   - m: The decoder the buffer is generated for.
//   - sc: The scenario holding density, threshold and seed.
//
// Returns:
//   - []float32: The buffer, ready for Detector.Tensor.
//   - error: If the candidate count does not fit or the threshold leaves no
//     room above or below it.
func SyntheticOutput(m model.Model, sc Scenario) ([]float32, error) {
	rows, cols := m.OutputShape()
	if sc.Candidates < 0 || sc.Candidates > rows {
		return nil, errors.Errorf("candidates %d out of range [0, %d]", sc.Candidates, rows)
	}
	if !(sc.ScoreThreshold > 0 && sc.ScoreThreshold < 100) {
		return nil, errors.Errorf("synthetic output needs a score threshold in (0, 100), got %v", sc.ScoreThreshold)
	}

	rng := rand.New(rand.NewSource(sc.Seed))
	opts := m.Options()

	hit := make([]bool, rows)
	for _, i := range rng.Perm(rows)[:sc.Candidates] {
		hit[i] = true
	}

	size := float32(opts.InputSize)
	centers := make([][2]float32, max(1, sc.Clusters))
	for i := range centers {
		centers[i] = [2]float32{rng.Float32() * size, rng.Float32() * size}
	}

	t, err := postprocess.NewTensor(make([]float32, rows*cols), rows, cols)
	if err != nil {
		return nil, err
	}

	for i := 0; i < rows; i++ {
		row := t.Row(i)
		switch opts.Name {
		case model.ModelNameYOLOv5:
			fillDirect(row, hit[i], centers[rng.Intn(len(centers))], sc.ScoreThreshold, rng)
		case model.ModelNameYOLOv8:
			fillDFL(row, hit[i], sc.ScoreThreshold, rng)
		default:
			return nil, errors.Errorf("no synthetic generator for %q", opts.Name)
		}
	}

	if opts.Layout == model.LayoutChannelMajor {
		if t, err = t.Transpose(); err != nil {
			return nil, err
		}
	}

	return t.Data, nil
}

// fillDirect writes one (cx, cy, w, h, obj, classes...) record.
func fillDirect(row []float32, hit bool, center [2]float32, threshold float32, rng *rand.Rand) {
	row[0] = center[0] + (rng.Float32()-0.5)*32
	row[1] = center[1] + (rng.Float32()-0.5)*32
	row[2] = 24 + rng.Float32()*96
	row[3] = 24 + rng.Float32()*96

	if hit {
		row[4] = threshold + (100-threshold)*(0.05+0.95*rng.Float32())
	} else {
		row[4] = threshold * rng.Float32()
	}

	for j := 5; j < len(row); j++ {
		row[j] = rng.Float32() * 100
	}
}

// fillDFL writes one record of 4 distance distributions followed by class
// logits.
func fillDFL(row []float32, hit bool, threshold float32, rng *rand.Rand) {
	for side := 0; side < 4; side++ {
		bins := row[side*yolov8.RegMax : (side+1)*yolov8.RegMax]
		for k := range bins {
			bins[k] = float32(rng.NormFloat64())
		}
		bins[1+rng.Intn(6)] += 6
	}

	cut := logit(threshold / 100)
	classes := row[4*yolov8.RegMax:]
	for j := range classes {
		classes[j] = cut - 1 - rng.Float32()*4
	}
	if hit {
		classes[rng.Intn(len(classes))] = cut + 0.5 + rng.Float32()*3
	}
}
