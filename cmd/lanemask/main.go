package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"lanemask/internal/config"
	"lanemask/internal/logger"
	"lanemask/internal/pipeline"
	"lanemask/internal/processing/threshold"
)

const (
	AppName    = "lanemask"
	AppVersion = "1.0.0"
)

var (
	imagePath  = flag.String("image", "", "Path to an undistorted road image (required)")
	configPath = flag.String("config", "", "Optional JSON threshold config")
	outDir     = flag.String("out", "", "Directory to write mask PNGs; masks are not written when empty")
	formula    = flag.String("formula", "", "Override combine formula: full or abs_or_saturation")
	sequential = flag.Bool("sequential", false, "Run classifiers one at a time")
	reference  = flag.String("reference", "", "Optional ground-truth mask to score the combined mask against")
)

func main() {
	flag.Parse()

	appLogger := logger.NewConsoleLogger(logger.LevelFromEnv()).With("app", AppName)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, appLogger); err != nil {
		appLogger.Error("Main", err, nil)
		os.Exit(1)
	}
}

func run(ctx context.Context, appLogger *logger.ZerologAdapter) error {
	if *imagePath == "" {
		flag.Usage()
		return fmt.Errorf("-image is required")
	}

	appLogger.Info("Main", "starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	})

	params, err := loadParams(*configPath)
	if err != nil {
		return err
	}
	if *formula != "" {
		f, err := threshold.ParseFormula(*formula)
		if err != nil {
			return err
		}
		params.Formula = f
	}
	if *sequential {
		params.Parallel = false
	}

	loader := pipeline.NewImageLoader(appLogger)
	img, err := loader.LoadFromPath(*imagePath)
	if err != nil {
		return err
	}
	defer img.Close()

	processor, err := pipeline.NewProcessor(params, appLogger)
	if err != nil {
		return err
	}

	result, err := processor.Run(ctx, img)
	if err != nil {
		return err
	}

	printSummary(result)

	if *reference != "" {
		if err := score(loader, result); err != nil {
			return err
		}
	}

	if *outDir != "" {
		prefix := strings.TrimSuffix(filepath.Base(*imagePath), filepath.Ext(*imagePath))
		if _, err := pipeline.NewMaskSaver(appLogger).SaveMasks(*outDir, prefix, result); err != nil {
			return err
		}
	}

	return nil
}

func loadParams(path string) (config.Params, error) {
	if path == "" {
		return config.DefaultParams(), nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Params{}, err
	}
	return cfg.Params()
}

func score(loader *pipeline.ImageLoader, result *pipeline.Result) error {
	truth, err := loader.LoadMask(*reference)
	if err != nil {
		return err
	}

	metrics, err := pipeline.CalculateSegmentationMetrics(result.Combined, truth)
	if err != nil {
		return err
	}

	fmt.Printf("  iou        %.4f\n", metrics.IoU)
	fmt.Printf("  dice       %.4f\n", metrics.DiceCoefficient)
	fmt.Printf("  error rate %.4f\n", metrics.MisclassificationError)
	return nil
}

func printSummary(result *pipeline.Result) {
	counts := result.Counts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	total := result.Combined.Rows * result.Combined.Cols
	fmt.Printf("%s run %s (formula %s)\n", AppName, result.RunID, result.Formula)
	for _, name := range names {
		fmt.Printf("  %-10s %8d / %d px\n", name, counts[name], total)
	}
	for _, stage := range result.Stages {
		fmt.Printf("  %-10s %v\n", stage, result.Timings[stage])
	}
	fmt.Printf("  elapsed    %v\n", result.Elapsed)
}
