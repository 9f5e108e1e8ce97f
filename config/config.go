// Package config - Layered configuration: defaults, optional YAML file, then
// DETECT_ environment overrides.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of environment overrides. DETECT_DETECTOR_SCORETHRESHOLD
// maps to detector.scorethreshold.
const EnvPrefix = "DETECT_"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the application configuration.
type Config struct {
	Model    ModelConfig    `koanf:"model"`
	Detector DetectorConfig `koanf:"detector"`
	Runtime  RuntimeConfig  `koanf:"runtime"`
	Input    InputConfig    `koanf:"input"`
	Log      LogConfig      `koanf:"log"`
}

// ModelConfig selects the model file and its output decoder.
type ModelConfig struct {
	Path       string    `koanf:"path"`
	Kind       string    `koanf:"kind"`
	InputSize  int       `koanf:"inputsize"`
	NumClasses int       `koanf:"numclasses"`
	Strides    []int     `koanf:"strides"`
	Layout     string    `koanf:"layout"`
	// Rows overrides the expected record count. Zero derives it from
	// the input size and strides.
	Rows       int       `koanf:"rows"`
	InputName  string    `koanf:"inputname"`
	OutputName string    `koanf:"outputname"`
	Labels     string    `koanf:"labels"`
	Mean       []float32 `koanf:"mean"`
	Norm       []float32 `koanf:"norm"`
	SwapRB     bool      `koanf:"swaprb"`
}

// DetectorConfig holds the post-processing thresholds.
type DetectorConfig struct {
	// ScoreThreshold on the 0-100 scale.
	ScoreThreshold float32 `koanf:"scorethreshold"`
	// IoUThreshold on the 0-1 scale.
	IoUThreshold float32  `koanf:"iouthreshold"`
	ClassAware   bool     `koanf:"classaware"`
	Classes      []string `koanf:"classes"`
}

// RuntimeConfig configures the onnxruntime session.
type RuntimeConfig struct {
	Backend      string `koanf:"backend"`
	LibraryPath  string `koanf:"librarypath"`
	Threads      int    `koanf:"threads"`
	InterThreads int    `koanf:"interthreads"`
}

// InputConfig describes where frames come from and where results go.
type InputConfig struct {
	Path   string `koanf:"path"`
	Output string `koanf:"output"`
	Save   bool   `koanf:"save"`
	Show   bool   `koanf:"show"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	File   string `koanf:"file"`
}

// Defaults returns the default values as koanf keys.
func Defaults() map[string]any {
	return map[string]any{
		"model.kind":              "yolov8",
		"model.inputsize":         640,
		"model.numclasses":        80,
		"model.inputname":         "images",
		"model.outputname":        "output0",
		"model.mean":              []float32{0, 0, 0},
		"model.norm":              []float32{1.0 / 255, 1.0 / 255, 1.0 / 255},
		"detector.scorethreshold": 25,
		"detector.iouthreshold":   0.45,
		"runtime.backend":         "cpu",
		"runtime.threads":         1,
		"input.show":              true,
		"log.level":               "info",
		"log.format":              "text",
	}
}

// Load reads the configuration. filePath may be empty, in which case only
// defaults and environment overrides apply.
//
// Arguments:
//   - filePath: Optional YAML file.
//
// Returns:
//   - *Config: The validated configuration.
//   - error: A load or validation error.
func Load(filePath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, "loading defaults")
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "loading %q", filePath)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(s string, v string) (string, any) {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		if strings.Contains(v, ",") {
			return key, strings.Split(strings.TrimSpace(v), ",")
		}
		return key, v
	}), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding configuration")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func Validate(cfg *Config) error {
	switch cfg.Model.Kind {
	case "yolov5", "yolov8":
	default:
		return errors.Wrapf(ErrInvalidConfig, "model.kind %q: want yolov5 or yolov8", cfg.Model.Kind)
	}

	switch cfg.Model.Layout {
	case "", "row", "channel":
	default:
		return errors.Wrapf(ErrInvalidConfig, "model.layout %q: want row or channel", cfg.Model.Layout)
	}

	if cfg.Model.InputSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "model.inputsize %d must be positive", cfg.Model.InputSize)
	}
	if cfg.Model.NumClasses <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "model.numclasses %d must be positive", cfg.Model.NumClasses)
	}
	if cfg.Model.Rows < 0 {
		return errors.Wrapf(ErrInvalidConfig, "model.rows %d must not be negative", cfg.Model.Rows)
	}
	if len(cfg.Model.Mean) != 3 || len(cfg.Model.Norm) != 3 {
		return errors.Wrap(ErrInvalidConfig, "model.mean and model.norm need three values")
	}

	if s := cfg.Detector.ScoreThreshold; !(s >= 0 && s <= 100) {
		return errors.Wrapf(ErrInvalidConfig, "detector.scorethreshold %v outside [0, 100]", s)
	}
	if s := cfg.Detector.IoUThreshold; !(s >= 0 && s <= 1) {
		return errors.Wrapf(ErrInvalidConfig, "detector.iouthreshold %v outside [0, 1]", s)
	}

	switch cfg.Runtime.Backend {
	case "cpu", "coreml", "openvino", "cuda":
	default:
		return errors.Wrapf(ErrInvalidConfig, "runtime.backend %q", cfg.Runtime.Backend)
	}
	if cfg.Runtime.Threads < 0 || cfg.Runtime.InterThreads < 0 {
		return errors.Wrap(ErrInvalidConfig, "runtime thread counts must not be negative")
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "log.format %q: want text or json", cfg.Log.Format)
	}

	return nil
}
