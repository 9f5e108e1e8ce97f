// Command detect runs a YOLO ONNX model over an image, a directory of
// images, a video file or a camera and prints, draws and optionally saves the
// detections.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/logger"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/model"
	"github.com/nvr-ai/go-detect/profiler"
	"github.com/nvr-ai/go-detect/util"
)

const (
	windowName = "detect"
	escKey     = 27
)

type flags struct {
	config  string
	model   string
	kind    string
	input   string
	output  string
	labels  string
	score   float64
	iou     float64
	threads int
	size    int
	save    bool
	show    bool
}

func parseFlags() (*flags, map[string]bool) {
	f := &flags{}
	flag.StringVar(&f.config, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&f.model, "model", "", "Path to the ONNX model file")
	flag.StringVar(&f.kind, "kind", "", "Output decoder: yolov5 or yolov8")
	flag.StringVar(&f.input, "input", "", "Image, directory, video file or camera index")
	flag.StringVar(&f.output, "output", "", "Output path (default: <input>_result)")
	flag.StringVar(&f.labels, "labels", "", "Class labels file, one per line (default: COCO)")
	flag.Float64Var(&f.score, "score", 25, "Score threshold on the 0-100 scale")
	flag.Float64Var(&f.iou, "iou", 0.45, "IoU threshold for NMS")
	flag.IntVar(&f.threads, "threads", 1, "Inference threads")
	flag.IntVar(&f.size, "size", 640, "Model input size")
	flag.BoolVar(&f.save, "save", false, "Save annotated results")
	flag.BoolVar(&f.show, "show", true, "Display results in a window")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return f, set
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cfg *config.Config, f *flags, set map[string]bool) {
	if set["model"] {
		cfg.Model.Path = f.model
	}
	if set["kind"] {
		cfg.Model.Kind = f.kind
	}
	if set["input"] {
		cfg.Input.Path = f.input
	}
	if set["output"] {
		cfg.Input.Output = f.output
	}
	if set["labels"] {
		cfg.Model.Labels = f.labels
	}
	if set["score"] {
		cfg.Detector.ScoreThreshold = float32(f.score)
	}
	if set["iou"] {
		cfg.Detector.IoUThreshold = float32(f.iou)
	}
	if set["threads"] {
		cfg.Runtime.Threads = f.threads
	}
	if set["size"] {
		cfg.Model.InputSize = f.size
	}
	if set["save"] {
		cfg.Input.Save = f.save
	}
	if set["show"] {
		cfg.Input.Show = f.show
	}
}

func main() {
	f, set := parseFlags()

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyFlags(cfg, f, set)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("detect failed")
		closer.Close()
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	log      logrus.FieldLogger
	engine   inference.Engine
	labels   *models.OutputClassSet
	profiler *profiler.Profiler
	window   *gocv.Window
}

func run(cfg *config.Config, log *logrus.Logger) error {
	src, err := parseInput(cfg.Input.Path)
	if err != nil {
		return err
	}
	if cfg.Input.Output == "" {
		cfg.Input.Output = defaultOutputPath(src)
	}

	labels := models.YOLOClasses
	if cfg.Model.Labels != "" {
		names, err := util.LoadLabels(cfg.Model.Labels)
		if err != nil {
			return err
		}
		labels = models.NewOutputClassSet(filepath.Base(cfg.Model.Labels), names)
	}
	if labels.Len() != cfg.Model.NumClasses {
		log.WithFields(logrus.Fields{
			"labels":  labels.Len(),
			"classes": cfg.Model.NumClasses,
		}).Warn("label count differs from model class count")
	}

	p := profiler.New()
	engine, err := newEngine(cfg, labels, log, p)
	if err != nil {
		return err
	}
	defer engine.Close()

	a := &app{cfg: cfg, log: log, engine: engine, labels: labels, profiler: p}
	if cfg.Input.Show {
		a.window = gocv.NewWindow(windowName)
		defer a.window.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.WithFields(logrus.Fields{
		"input":  src.Path,
		"type":   src.Type,
		"model":  cfg.Model.Path,
		"kind":   cfg.Model.Kind,
		"output": cfg.Input.Output,
	}).Info("starting")

	switch src.Type {
	case InputImage:
		err = a.runImage(ctx, src.Path, cfg.Input.Output)
		if err == nil && a.window != nil {
			a.window.WaitKey(0)
		}
	case InputDirectory:
		err = a.runDirectory(ctx, src.Path, cfg.Input.Output)
	case InputVideo, InputCamera:
		err = a.runStream(ctx, src)
	}

	p.Report(log)

	return err
}

func newEngine(cfg *config.Config, labels *models.OutputClassSet, log logrus.FieldLogger, p *profiler.Profiler) (inference.Engine, error) {
	norm := inference.DefaultNormalization()
	copy(norm.Mean[:], cfg.Model.Mean)
	copy(norm.Norm[:], cfg.Model.Norm)
	norm.SwapRB = cfg.Model.SwapRB

	return inference.NewEngineBuilder().
		WithRuntime(providers.Config{
			Backend:        providers.Backend(cfg.Runtime.Backend),
			LibraryPath:    cfg.Runtime.LibraryPath,
			IntraOpThreads: cfg.Runtime.Threads,
			InterOpThreads: cfg.Runtime.InterThreads,
		}).
		WithModel(cfg.Model.Path, model.NewModelArgs{
			Name:       model.Name(cfg.Model.Kind),
			InputSize:  cfg.Model.InputSize,
			NumClasses: cfg.Model.NumClasses,
			Strides:    cfg.Model.Strides,
			Layout:     model.Layout(cfg.Model.Layout),
			Rows:       cfg.Model.Rows,
		}).
		WithNodeNames(cfg.Model.InputName, cfg.Model.OutputName).
		WithNormalization(norm).
		WithDetector(detectors.Config{
			ScoreThreshold:  cfg.Detector.ScoreThreshold,
			IoUThreshold:    cfg.Detector.IoUThreshold,
			ClassAware:      cfg.Detector.ClassAware,
			RelevantClasses: cfg.Detector.Classes,
			Labels:          labels,
		}, log).
		WithProfiler(p).
		Build()
}

// process detects, prints and draws one frame.
func (a *app) process(ctx context.Context, img *gocv.Mat) error {
	frame, err := img.ToImage()
	if err != nil {
		return errors.Wrap(err, "converting frame")
	}

	start := time.Now()
	results, err := a.engine.Detect(ctx, frame)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("detected %d objects in %s (%.1f FPS)\n", len(results), elapsed.Round(time.Microsecond), float64(time.Second)/float64(elapsed))
	printResults(a.labels, results)
	draw(img, a.labels, results)

	return nil
}

func (a *app) runImage(ctx context.Context, path, output string) error {
	img := gocv.IMRead(path, gocv.IMReadColor)
	defer img.Close()
	if img.Empty() {
		return errors.Errorf("cannot read image %q", path)
	}

	if err := a.process(ctx, &img); err != nil {
		return err
	}

	if a.cfg.Input.Save {
		if ok := gocv.IMWrite(output, img); !ok {
			return errors.Errorf("cannot write %q", output)
		}
		a.log.WithField("path", output).Info("saved result")
	}
	if a.window != nil {
		a.window.IMShow(img)
	}
	return nil
}

func (a *app) runDirectory(ctx context.Context, dir, output string) error {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return err
	}
	if a.cfg.Input.Save {
		if err := os.MkdirAll(output, 0o755); err != nil {
			return errors.Wrapf(err, "creating %q", output)
		}
	}

	for i, file := range files {
		if ctx.Err() != nil {
			return nil
		}
		// A bad frame is logged and skipped.
		if err := a.runImage(ctx, file.Path, filepath.Join(output, filepath.Base(file.Path))); err != nil {
			a.log.WithError(err).WithField("frame", i).Warn("skipping frame")
			continue
		}
		if a.window != nil && a.window.WaitKey(1) == escKey {
			return nil
		}
	}
	return nil
}

func (a *app) runStream(ctx context.Context, src Source) error {
	var (
		capture *gocv.VideoCapture
		err     error
	)
	if src.Type == InputCamera {
		capture, err = gocv.OpenVideoCapture(src.DeviceID)
	} else {
		capture, err = gocv.OpenVideoCapture(src.Path)
	}
	if err != nil {
		return errors.Wrapf(err, "opening %s %q", src.Type, src.Path)
	}
	defer capture.Close()

	img := gocv.NewMat()
	defer img.Close()

	var writer *gocv.VideoWriter
	defer func() {
		if writer != nil {
			writer.Close()
		}
	}()

	for frame := 0; ctx.Err() == nil; frame++ {
		if ok := capture.Read(&img); !ok {
			if src.Type == InputCamera {
				return errors.Errorf("cannot read camera %d", src.DeviceID)
			}
			return nil
		}
		if img.Empty() {
			continue
		}

		if err := a.process(ctx, &img); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.log.WithError(err).WithField("frame", frame).Warn("skipping frame")
			continue
		}

		if a.cfg.Input.Save {
			if writer == nil {
				fps := capture.Get(gocv.VideoCaptureFPS)
				if fps <= 0 {
					fps = 30
				}
				writer, err = gocv.VideoWriterFile(a.cfg.Input.Output, "mp4v", fps, img.Cols(), img.Rows(), true)
				if err != nil {
					return errors.Wrapf(err, "opening writer %q", a.cfg.Input.Output)
				}
			}
			if err := writer.Write(img); err != nil {
				return errors.Wrap(err, "writing frame")
			}
		}

		if a.window != nil {
			a.window.IMShow(img)
			if a.window.WaitKey(1) == escKey {
				return nil
			}
		}
	}

	return nil
}
