package detectors

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Params are the thresholds applied to one frame.
type Params struct {
	ScoreThreshold float32
	IoUThreshold   float32
	ClassAware     bool
}

// Detector turns raw model outputs into final detections in original-frame
// coordinates. A Detector holds no per-frame state and may be shared by
// goroutines processing different frames.
type Detector struct {
	model    model.Model
	config   Config
	relevant map[int]struct{}
	log      logrus.FieldLogger
}

// NewDetector creates a detector for the given decoder.
//
// Arguments:
//   - m: The decoder matching the model output layout.
//   - cfg: Thresholds and class filter.
//   - log: Destination of per-frame debug logging.
//
// Returns:
//   - *Detector: The detector.
//   - error: If a threshold is out of range or a relevant class is unknown.
func NewDetector(m model.Model, cfg Config, log logrus.FieldLogger) (*Detector, error) {
	if err := postprocess.ValidateThresholds(cfg.ScoreThreshold, cfg.IoUThreshold); err != nil {
		return nil, err
	}

	d := &Detector{model: m, config: cfg, log: log}

	if len(cfg.RelevantClasses) > 0 {
		if cfg.Labels == nil {
			return nil, errors.New("relevant classes require a label set")
		}
		d.relevant = make(map[int]struct{}, len(cfg.RelevantClasses))
		for _, name := range cfg.RelevantClasses {
			idx, ok := cfg.Labels.Index(name)
			if !ok {
				return nil, errors.Errorf("unknown class %q in label set %q", name, cfg.Labels.Name)
			}
			d.relevant[idx] = struct{}{}
		}
	}

	return d, nil
}

// Model returns the decoder used by the detector.
func (d *Detector) Model() model.Model {
	return d.model
}

// Params returns the default per-frame parameters.
func (d *Detector) Params() Params {
	return d.config.Params()
}

// Tensor wraps a raw output buffer in the decoder's declared layout and
// returns it row-major.
func (d *Detector) Tensor(data []float32) (postprocess.Tensor, error) {
	rows, cols := d.model.OutputShape()

	if d.model.Options().Layout == model.LayoutChannelMajor {
		t, err := postprocess.NewTensor(data, cols, rows)
		if err != nil {
			return postprocess.Tensor{}, err
		}
		return t.Transpose()
	}

	return postprocess.NewTensor(data, rows, cols)
}

// Process runs the post-processing pipeline on one frame.
//
// The stages run in order: decode, stable sort by confidence, greedy NMS,
// unmapping into the original frame, then a stable sort by area.
//
// Arguments:
//   - output: The row-major raw output of the model.
//   - lb: The letterbox used to build the model input.
//   - params: Thresholds for this frame.
//
// Returns:
//   - []postprocess.Result: Detections in original-frame pixels, largest first.
//   - error: ErrInvalidThreshold or ErrShapeMismatch. A failed frame leaves no
//     state behind.
func (d *Detector) Process(output postprocess.Tensor, lb images.Letterbox, params Params) ([]postprocess.Result, error) {
	if err := postprocess.ValidateThresholds(params.ScoreThreshold, params.IoUThreshold); err != nil {
		return nil, err
	}

	candidates, err := d.model.Decode(output, params.ScoreThreshold)
	if err != nil {
		return nil, err
	}
	decoded := len(candidates)

	postprocess.SortByConfidence(candidates)

	kept := postprocess.ApplyGreedyNMS(candidates, postprocess.NMSConfig{
		IoUThreshold: params.IoUThreshold,
		ClassAware:   params.ClassAware,
	})

	postprocess.Unmap(kept, lb)
	postprocess.SortByArea(kept)

	if d.relevant != nil {
		filtered := kept[:0]
		for _, r := range kept {
			if _, ok := d.relevant[r.Class]; ok {
				filtered = append(filtered, r)
			}
		}
		kept = filtered
	}

	d.log.WithFields(logrus.Fields{
		"model":      d.model.Options().Name,
		"candidates": decoded,
		"detections": len(kept),
	}).Debug("frame post-processed")

	return kept, nil
}
