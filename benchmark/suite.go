package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/profiler"
)

const (
	stageTensor  = "tensor"
	stageProcess = "process"
)

// Suite manages and executes benchmark scenarios.
type Suite struct {
	scenarios []Scenario
	outputDir string
	log       logrus.FieldLogger
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	OutputPath string             `json:"outputPath" yaml:"outputPath"`
	Log        logrus.FieldLogger `json:"-"          yaml:"-"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(args NewSuiteArgs) *Suite {
	log := args.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Suite{
		outputDir: args.OutputPath,
		log:       log,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a scenario to the benchmark suite.
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// Scenarios returns a copy of the queued scenarios.
func (bs *Suite) Scenarios() []Scenario {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	out := make([]Scenario, len(bs.scenarios))
	copy(out, bs.scenarios)
	return out
}

// RunScenario executes a single benchmark scenario.
//
// The synthetic buffer is generated once. Every iteration wraps it into a
// tensor and runs the full detector pipeline on it. A cancelled context stops
// the run between iterations.
//
// Arguments:
//   - ctx: Cancels the run.
//   - scenario: The workload to run.
//
// Returns:
//   - *PerformanceMetrics: Timings and memory usage of the measured iterations.
//   - error: If the decoder, the detector or the buffer cannot be built, or
//     ctx is done.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	m, err := models.NewModel(model.NewModelArgs{
		Name:       scenario.Model,
		InputSize:  scenario.InputSize,
		NumClasses: scenario.NumClasses,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	cfg := detectors.DefaultConfig()
	cfg.ScoreThreshold = scenario.ScoreThreshold
	cfg.IoUThreshold = scenario.IoUThreshold
	cfg.ClassAware = scenario.ClassAware

	detector, err := detectors.NewDetector(m, cfg, bs.log)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	data, err := SyntheticOutput(m, scenario)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	lb := scenario.Resolution.Letterbox(scenario.InputSize)
	params := detector.Params()
	p := profiler.New()

	frame := func() (int, error) {
		start := time.Now()
		t, err := detector.Tensor(data)
		p.Tracker(stageTensor).Since(start)
		if err != nil {
			return 0, err
		}

		start = time.Now()
		results, err := detector.Process(t, lb, params)
		p.Tracker(stageProcess).Since(start)
		return len(results), err
	}

	for i := 0; i < scenario.WarmupRuns; i++ {
		_, _ = frame()
	}
	p = profiler.New()

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	startTime := time.Now()
	totalDetections := 0
	failures := 0

	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "scenario %s interrupted", scenario.Name)
		}

		n, err := frame()
		if err != nil {
			failures++
			continue
		}
		totalDetections += n
	}

	totalDuration := time.Since(startTime)

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	metrics := &PerformanceMetrics{
		Scenario:       scenario,
		Timestamp:      startTime,
		TotalDuration:  totalDuration,
		Stages:         p.Snapshot(),
		DetectionCount: totalDetections,
		MemoryStats: MemoryMetrics{
			AllocBytes:      endMem.Alloc,
			TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
			SysBytes:        endMem.Sys,
			NumGC:           endMem.NumGC - startMem.NumGC,
			HeapAllocBytes:  endMem.HeapAlloc,
			HeapSysBytes:    endMem.HeapSys,
		},
		CPUStats: CPUMetrics{
			NumCPU:     runtime.NumCPU(),
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	if scenario.Iterations > 0 {
		metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
		if totalDuration > 0 {
			metrics.FramesPerSecond = float64(scenario.Iterations) / totalDuration.Seconds()
		}
	}

	return metrics, nil
}

// RunAllScenarios runs every queued scenario in order and saves the results.
// A failing scenario is logged and skipped.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	for _, scenario := range bs.Scenarios() {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			bs.log.WithError(err).WithField("scenario", scenario.Name).Error("scenario failed")
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.log.WithFields(logrus.Fields{
			"scenario":   scenario.Name,
			"fps":        metrics.FramesPerSecond,
			"detections": metrics.DetectionCount,
		}).Info("scenario completed")
	}

	return bs.SaveResults()
}

// SaveResults writes the results as JSON and a summary CSV into the output
// directory.
func (bs *Suite) SaveResults() error {
	results := bs.GetResults()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}

	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return errors.Wrap(err, "failed to save summary CSV")
	}

	bs.log.WithFields(logrus.Fields{
		"results": resultsFile,
		"summary": summaryFile,
	}).Info("results saved")

	return nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	header := "Scenario,Model,Resolution,Candidates,FPS,Total_Duration_ms,Alloc_MB,Detections,Error_Rate\n"
	if _, err := file.WriteString(header); err != nil {
		return err
	}

	for _, result := range results {
		line := fmt.Sprintf("%s,%s,%dx%d,%d,%.2f,%.2f,%.2f,%d,%.4f\n",
			result.Scenario.Name,
			result.Scenario.Model,
			result.Scenario.Resolution.Width,
			result.Scenario.Resolution.Height,
			result.Scenario.Candidates,
			result.FramesPerSecond,
			float64(result.TotalDuration.Nanoseconds())/1e6,
			float64(result.MemoryStats.TotalAllocBytes)/(1024*1024),
			result.DetectionCount,
			result.ErrorRate,
		)
		if _, err := file.WriteString(line); err != nil {
			return err
		}
	}

	return nil
}

// GetResults returns all benchmark results.
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
