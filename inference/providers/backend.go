// Package providers - ONNX Runtime sessions and execution provider selection.
package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend names an ONNX Runtime execution provider.
type Backend string

const (
	// CPUBackend runs on the default CPU execution provider.
	CPUBackend Backend = "cpu"
	// CoreMLBackend uses Apple CoreML for macOS acceleration.
	CoreMLBackend Backend = "coreml"
	// OpenVINOBackend uses Intel OpenVINO.
	OpenVINOBackend Backend = "openvino"
	// CUDABackend uses NVIDIA CUDA.
	CUDABackend Backend = "cuda"
)

// ErrUnknownBackend is returned for backends that are not compiled in.
var ErrUnknownBackend = errors.New("unknown execution provider backend")

// Config represents the runtime configuration of an inference session.
type Config struct {
	// Backend specifies the execution provider to use.
	Backend Backend `json:"backend" yaml:"backend"`

	// LibraryPath overrides the onnxruntime shared library location.
	LibraryPath string `json:"library_path" yaml:"library_path"`

	// IntraOpThreads is the thread count used inside a node (0 = runtime default).
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`

	// InterOpThreads is the thread count used across independent nodes.
	InterOpThreads int `json:"inter_op_threads" yaml:"inter_op_threads"`

	// CoreMLFlags are passed verbatim to the CoreML provider.
	CoreMLFlags uint32 `json:"coreml_flags" yaml:"coreml_flags"`

	// OpenVINO holds OpenVINO provider options.
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino"`

	// CUDA holds CUDA provider options.
	CUDA CUDAOptions `json:"cuda" yaml:"cuda"`
}

// DefaultConfig returns a CPU configuration using the runtime's default
// thread pools.
func DefaultConfig() Config {
	return Config{
		Backend: CPUBackend,
	}
}

// appendExecutionProvider registers the configured provider on options.
// The CPU backend needs no registration.
func appendExecutionProvider(options *ort.SessionOptions, cfg Config) error {
	switch cfg.Backend {
	case CPUBackend, "":
		return nil
	case CoreMLBackend:
		if err := options.AppendExecutionProviderCoreML(cfg.CoreMLFlags); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case OpenVINOBackend:
		if err := options.AppendExecutionProviderOpenVINO(cfg.OpenVINO.ToMap()); err != nil {
			return errors.Wrap(err, "error enabling OpenVINO")
		}
	case CUDABackend:
		cuda, err := cfg.CUDA.ToNativeProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	default:
		return errors.Wrapf(ErrUnknownBackend, "%q", cfg.Backend)
	}
	return nil
}
