// Package inference - Detection engine tying preprocessing, the runtime
// session and post-processing together.
package inference

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/profiler"
)

// Profiler stage names.
const (
	StagePreprocess  = "preprocess"
	StageInference   = "inference"
	StagePostprocess = "postprocess"
)

// Engine defines the interface for detection engines.
type Engine interface {
	// Detect runs the model on img with the configured thresholds.
	Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error)
	// DetectWithParams runs the model on img with explicit thresholds.
	DetectWithParams(ctx context.Context, img image.Image, params detectors.Params) ([]postprocess.Result, error)
	Close() error
}

// Runner executes a model on a preallocated input buffer.
// *providers.Session implements it.
type Runner interface {
	Input() []float32
	Output() []float32
	Run() error
	Close() error
}

// EngineBuilder assembles an Engine with a fluent API.
type EngineBuilder struct {
	runtime    providers.Config
	modelPath  string
	inputName  string
	outputName string
	model      model.Model
	detector   *detectors.Detector
	norm       Normalization
	runner     Runner
	profiler   *profiler.Profiler
	err        error
}

// NewEngineBuilder creates a new engine builder.
//
// Returns:
//   - *EngineBuilder: The engine builder with a CPU runtime, "images" and
//     "output0" node names and 1/255 normalization.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		runtime:    providers.DefaultConfig(),
		inputName:  "images",
		outputName: "output0",
		norm:       DefaultNormalization(),
	}
}

// WithRuntime sets the execution provider configuration.
func (b *EngineBuilder) WithRuntime(cfg providers.Config) *EngineBuilder {
	b.runtime = cfg
	return b
}

// WithModel sets the model file and its decoder.
//
// Arguments:
//   - path: The ONNX model file.
//   - args: The decoder arguments.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithModel(path string, args model.NewModelArgs) *EngineBuilder {
	if b.HasError() {
		return b
	}
	m, err := models.NewModel(args)
	if err != nil {
		b.err = err
		return b
	}
	b.model = m
	b.modelPath = path
	return b
}

// WithNodeNames overrides the model's input and output node names.
func (b *EngineBuilder) WithNodeNames(input, output string) *EngineBuilder {
	b.inputName = input
	b.outputName = output
	return b
}

// WithNormalization sets the input normalization.
func (b *EngineBuilder) WithNormalization(n Normalization) *EngineBuilder {
	b.norm = n
	return b
}

// WithDetector sets the post-processing configuration. It must follow
// WithModel.
//
// Arguments:
//   - cfg: The detector configuration.
//   - log: The logger used for per-frame debug output.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithDetector(cfg detectors.Config, log logrus.FieldLogger) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if b.model == nil {
		b.err = errors.New("detector requires a model")
		return b
	}

	detector, err := detectors.NewDetector(b.model, cfg, log)
	if err != nil {
		b.err = err
		return b
	}
	b.detector = detector
	return b
}

// WithRunner uses r instead of opening an ONNX Runtime session.
func (b *EngineBuilder) WithRunner(r Runner) *EngineBuilder {
	b.runner = r
	return b
}

// WithProfiler records per-stage timings into p.
func (b *EngineBuilder) WithProfiler(p *profiler.Profiler) *EngineBuilder {
	b.profiler = p
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// MustBuild builds the engine and panics if there is an error.
//
// Returns:
//   - Engine: The engine.
func (b *EngineBuilder) MustBuild() Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// Build builds the engine, opening the runtime session unless a Runner was
// supplied.
//
// Returns:
//   - Engine: The engine.
//   - error: The error if any.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}
	if b.model == nil {
		return nil, errors.New("model not configured")
	}
	if b.detector == nil {
		return nil, errors.New("detector not configured")
	}

	opts := b.model.Options()
	rows, cols := b.model.OutputShape()

	runner := b.runner
	if runner == nil {
		outputShape := []int64{1, int64(rows), int64(cols)}
		if opts.Layout == model.LayoutChannelMajor {
			outputShape = []int64{1, int64(cols), int64(rows)}
		}

		session, err := providers.NewSession(b.runtime, providers.NewSessionArgs{
			ModelPath:   b.modelPath,
			InputName:   b.inputName,
			OutputName:  b.outputName,
			InputShape:  []int64{1, 3, int64(opts.InputSize), int64(opts.InputSize)},
			OutputShape: outputShape,
		})
		if err != nil {
			return nil, err
		}
		runner = session
	}

	if n := len(runner.Output()); n != rows*cols {
		err := errors.Wrapf(postprocess.ErrShapeMismatch, "runner output holds %d floats, decoder expects %dx%d", n, rows, cols)
		if cerr := runner.Close(); cerr != nil {
			return nil, errors.Wrapf(err, "closing runner: %v", cerr)
		}
		return nil, err
	}

	p := b.profiler
	if p == nil {
		p = profiler.New()
	}

	return &engine{
		runner:   runner,
		model:    b.model,
		detector: b.detector,
		norm:     b.norm,
		profiler: p,
	}, nil
}

// engine implements the Engine interface.
//
// The runner is shared, so preprocessing and inference are serialized under
// mu. The output is copied out before unlocking and post-processed without the
// lock, letting one frame's post-processing overlap the next frame's inference.
type engine struct {
	mu       sync.Mutex
	runner   Runner
	model    model.Model
	detector *detectors.Detector
	norm     Normalization
	profiler *profiler.Profiler
}

// Detect runs the model with the detector's default thresholds.
func (e *engine) Detect(ctx context.Context, img image.Image) ([]postprocess.Result, error) {
	return e.DetectWithParams(ctx, img, e.detector.Params())
}

// DetectWithParams runs one frame through the pipeline.
//
// Arguments:
//   - ctx: Checked before the frame is submitted to the runtime.
//   - img: The frame.
//   - params: Thresholds for this frame.
//
// Returns:
//   - []postprocess.Result: Detections in img's pixel coordinates.
//   - error: The error if any.
func (e *engine) DetectWithParams(ctx context.Context, img image.Image, params detectors.Params) ([]postprocess.Result, error) {
	if err := postprocess.ValidateThresholds(params.ScoreThreshold, params.IoUThreshold); err != nil {
		return nil, err
	}

	raw, lb, err := e.infer(ctx, img)
	if err != nil {
		return nil, err
	}

	defer e.profiler.Tracker(StagePostprocess).Since(time.Now())

	output, err := e.detector.Tensor(raw)
	if err != nil {
		return nil, err
	}

	return e.detector.Process(output, lb, params)
}

func (e *engine) infer(ctx context.Context, img image.Image) ([]float32, images.Letterbox, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runner == nil {
		return nil, images.Letterbox{}, errors.New("engine is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, images.Letterbox{}, err
	}

	start := time.Now()
	lb, err := PrepareInput(img, e.model.Options().InputSize, e.norm, e.runner.Input())
	if err != nil {
		return nil, images.Letterbox{}, err
	}
	e.profiler.Tracker(StagePreprocess).Since(start)

	start = time.Now()
	if err := e.runner.Run(); err != nil {
		return nil, images.Letterbox{}, err
	}
	e.profiler.Tracker(StageInference).Since(start)

	raw := make([]float32, len(e.runner.Output()))
	copy(raw, e.runner.Output())

	return raw, lb, nil
}

// Close releases the runtime session.
func (e *engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runner == nil {
		return nil
	}
	err := e.runner.Close()
	e.runner = nil
	return err
}
