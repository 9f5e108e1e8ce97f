package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/benchmark"
	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/logger"
	"github.com/nvr-ai/go-detect/models/model"
)

func main() {
	var (
		scenarioFile  = flag.String("scenarios", "", "Path to a JSON scenario set")
		saveScenarios = flag.String("save-scenarios", "", "Write the selected scenarios to this JSON file and exit")
		outputDir     = flag.String("output", "./benchmark_results", "Output directory for results")
		modelName     = flag.String("model", string(model.ModelNameYOLOv8), "Decoder for resolution and density scenarios (yolov5, yolov8)")
		quick         = flag.Bool("quick", false, "Run quick benchmark scenarios")
		resolutions   = flag.Bool("resolutions", false, "Compare camera resolutions")
		density       = flag.Bool("density", false, "Compare candidate densities")
		logLevel      = flag.String("log-level", "info", "Log level")
		timeout       = flag.Duration("timeout", 30*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	log, closer, err := logger.New(config.LogConfig{Level: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	set, err := selectScenarios(*scenarioFile, model.Name(*modelName), *quick, *resolutions, *density)
	if err != nil {
		log.WithError(err).Fatal("failed to load scenarios")
	}

	if *saveScenarios != "" {
		if err := benchmark.SaveScenarioSet(set, *saveScenarios); err != nil {
			log.WithError(err).Fatal("failed to save scenarios")
		}
		log.WithField("file", *saveScenarios).Infof("saved %d scenarios", len(set.Scenarios))
		return
	}

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		OutputPath: *outputDir,
		Log:        log,
	})
	for _, scenario := range set.Scenarios {
		suite.AddScenario(scenario)
	}
	log.WithField("set", set.Name).Infof("queued %d scenarios", len(set.Scenarios))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := suite.RunAllScenarios(ctx); err != nil {
		log.WithError(err).Fatal("benchmark execution failed")
	}

	summarize(log, suite.GetResults(), time.Since(start))
}

// selectScenarios loads the scenario file when given, otherwise combines the
// predefined sets picked by the flags. Quick scenarios are the default.
func selectScenarios(file string, name model.Name, quick, resolutions, density bool) (*benchmark.ScenarioSet, error) {
	if file != "" {
		return benchmark.LoadScenarioSet(file)
	}

	predefined := &benchmark.PredefinedScenarios{}
	set := &benchmark.ScenarioSet{Name: "Selected Scenarios"}

	if quick || (!resolutions && !density) {
		set.Scenarios = append(set.Scenarios, predefined.GetQuickScenarios().Scenarios...)
	}
	if resolutions {
		set.Scenarios = append(set.Scenarios, predefined.GetResolutionComparisonScenarios(name).Scenarios...)
	}
	if density {
		set.Scenarios = append(set.Scenarios, predefined.GetDensityComparisonScenarios(name).Scenarios...)
	}

	return set, nil
}

func summarize(log logrus.FieldLogger, results []benchmark.PerformanceMetrics, elapsed time.Duration) {
	var best benchmark.PerformanceMetrics
	for _, result := range results {
		if result.FramesPerSecond > best.FramesPerSecond {
			best = result
		}
		log.WithFields(logrus.Fields{
			"scenario":   result.Scenario.Name,
			"fps":        fmt.Sprintf("%.2f", result.FramesPerSecond),
			"alloc_mb":   fmt.Sprintf("%.2f", float64(result.MemoryStats.TotalAllocBytes)/(1024*1024)),
			"detections": result.DetectionCount,
		}).Info("result")
	}

	log.WithFields(logrus.Fields{
		"scenarios": len(results),
		"elapsed":   elapsed,
		"best":      best.Scenario.Name,
		"best_fps":  fmt.Sprintf("%.2f", best.FramesPerSecond),
	}).Info("benchmark completed")
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Times the detection post-processing pipeline on synthetic model outputs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -quick\n", name)
		fmt.Fprintf(os.Stderr, "  %s -model yolov5 -resolutions -density\n", name)
		fmt.Fprintf(os.Stderr, "  %s -scenarios ./scenarios.json -output ./results\n", name)
	}
}
