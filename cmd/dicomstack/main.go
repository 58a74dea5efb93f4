package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mleroi/dicomstack/cmd/dicomstack/viewer"
	"github.com/mleroi/dicomstack/internal/config"
	"github.com/mleroi/dicomstack/internal/export"
	"github.com/mleroi/dicomstack/internal/obs"
	"github.com/mleroi/dicomstack/internal/render"
	"github.com/mleroi/dicomstack/internal/resource"
	"github.com/mleroi/dicomstack/internal/series"
	"github.com/mleroi/dicomstack/internal/upload"
	"github.com/mleroi/dicomstack/internal/viewport"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Check for view subcommand (before flag.Parse)
	if len(os.Args) > 1 && os.Args[1] == "view" {
		input := ""
		if len(os.Args) > 2 {
			input = os.Args[2]
		}
		if err := viewer.Run(input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	input := flag.String("input", "", "DICOM file or folder to load (required)")
	seriesKey := flag.String("series", "", "Series key to operate on (default: first series)")
	slice := flag.Int("slice", 1, "1-based slice number for --export")
	info := flag.Bool("info", false, "Print batch metadata and exit")
	doExport := flag.Bool("export", false, "Export the selected slice as annotated PNG")
	outDir := flag.String("out", ".", "Output directory for --export")
	preset := flag.String("preset", "", "Window preset name for --export (e.g. 'CT Abdomen')")
	verbose := flag.Bool("verbose", false, "Log pipeline details to stderr")
	help := flag.Bool("help", false, "Show help message")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Parse()

	if *showVersion {
		fmt.Printf("dicomstack %s\n", version)
		os.Exit(0)
	}

	if *help {
		printHelp()
		os.Exit(0)
	}

	if *input == "" {
		fmt.Fprintf(os.Stderr, "Error: --input is required\n")
		printUsage()
		os.Exit(1)
	}

	settings := config.Load()
	logger := obs.NewLogger(nil)
	if *verbose {
		logger = obs.NewLogger(os.Stderr)
	}
	metrics := obs.NewMetrics(prometheus.NewRegistry())
	ledger := resource.NewLedger()
	ledger.SetObserver(func(open int) { metrics.OpenHandles.Set(float64(open)) })

	files, shape, err := upload.ReadPath(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	batch := series.ProcessUpload(ctx, files, shape, ledger, logger, metrics)
	if !batch.Valid() {
		fmt.Fprintf(os.Stderr, "Error: no readable DICOM file in %s\n", *input)
		for _, f := range batch.Failures {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", f.Name, f.Err)
		}
		os.Exit(1)
	}

	if *info {
		printInfo(batch)
		os.Exit(0)
	}

	if *doExport {
		if err := runExport(ctx, batch, ledger, settings, logger, metrics, *seriesKey, *slice, *preset, *outDir); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Default action: show the batch summary.
	printInfo(batch)
}

func printInfo(batch *series.Batch) {
	fmt.Println("dicomstack")
	fmt.Println("==========")
	fmt.Printf("Upload shape: %s\n", batch.Shape)
	fmt.Printf("Series: %d\n\n", len(batch.Series))
	for _, s := range batch.Series {
		first := s.Images[0]
		fmt.Printf("  [%d] %s\n", s.Number, s.Key)
		fmt.Printf("      Modality: %s  Slices: %d  Size: %dx%d\n", s.Modality, s.Len(), first.Columns, first.Rows)
		fmt.Printf("      Patient: %s (%s)\n", first.PatientName, first.PatientID)
		fmt.Printf("      Description: %s\n", s.Description)
	}
	if len(batch.Failures) > 0 {
		fmt.Printf("\nSkipped files: %d\n", len(batch.Failures))
		for _, f := range batch.Failures {
			fmt.Printf("  %s: %v\n", f.Name, f.Err)
		}
	}
}

func runExport(ctx context.Context, batch *series.Batch, ledger *resource.Ledger, settings config.Settings, logger zerolog.Logger, metrics *obs.Metrics, seriesKey string, slice int, preset, outDir string) error {
	target := batch.Series[0]
	if seriesKey != "" {
		target = batch.FindSeries(seriesKey)
		if target == nil {
			return fmt.Errorf("no series %q in batch", seriesKey)
		}
	}
	if slice < 1 || slice > target.Len() {
		return fmt.Errorf("slice %d out of range 1-%d", slice, target.Len())
	}

	sess := viewport.NewSession(
		func() (viewport.Engine, error) { return render.NewEngine(ledger, logger), nil },
		settings, ledger, logger, metrics,
	)
	if err := sess.Attach(0, 0); err != nil {
		return err
	}
	sess.SetBatch(batch)
	if err := sess.SelectSeries(target.Key); err != nil {
		return err
	}
	sess.SetIndex(slice - 1)
	sess.WaitIdle()
	if sess.State() != viewport.StateDisplayed {
		return fmt.Errorf("slice could not be displayed: %v", sess.Err())
	}
	if preset != "" {
		if err := sess.ApplyPreset(preset); err != nil {
			return err
		}
	}

	eng := render.NewEngine(ledger, logger)
	defer eng.Destroy()
	data, name, err := export.Snapshot(ctx, eng, target, sess.Index(), sess.View())
	if err != nil {
		return err
	}
	out := filepath.Join(outDir, name)
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported %s\n", out)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage:")
	fmt.Fprintln(os.Stderr, "  dicomstack --input <FILE|DIR> [options]")
	fmt.Fprintln(os.Stderr, "  dicomstack view [FILE|DIR]")
	fmt.Fprintln(os.Stderr, "\nOptions:")
	flag.PrintDefaults()
}

func printHelp() {
	fmt.Println("dicomstack")
	fmt.Println("==========")
	fmt.Println()
	fmt.Println("Load DICOM files, inspect their series and export annotated slices.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dicomstack --input <FILE|DIR> [options]")
	fmt.Println("  dicomstack view [FILE|DIR]    Interactive stack viewer")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --input <PATH>     DICOM file or folder to load")
	fmt.Println("  --info             Print series, patient and geometry metadata")
	fmt.Println("  --export           Export one slice as annotated PNG")
	fmt.Println("  --series <KEY>     Series to export from (default: first)")
	fmt.Println("  --slice <N>        1-based slice number to export (default: 1)")
	fmt.Println("  --preset <NAME>    Window preset: CT Abdomen, CT Bone, CT Brain,")
	fmt.Println("                     CT Lung, MR T1, MR T2, Full Range")
	fmt.Println("  --out <DIR>        Output directory for exports (default: .)")
	fmt.Println("  --verbose          Log pipeline details to stderr")
	fmt.Println("  --version          Show version")
	fmt.Println("  --help             Show this help message")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Inspect a series folder")
	fmt.Println("  dicomstack --input ./ct_abdomen --info")
	fmt.Println()
	fmt.Println("  # Export slice 12 with the bone window")
	fmt.Println("  dicomstack --input ./ct_abdomen --export --slice 12 --preset \"CT Bone\"")
	fmt.Println()
	fmt.Println("  # Browse interactively")
	fmt.Println("  dicomstack view ./study_folder")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DICOMSTACK_WHEEL_THROTTLE   Wheel navigation throttle (default 150ms)")
	fmt.Println("  DICOMSTACK_LOAD_TIMEOUT     Per-slice load timeout (default 30s)")
	fmt.Println("  DICOMSTACK_THUMBNAIL_EDGE   Thumbnail edge in pixels (default 100)")
	fmt.Println("  DICOMSTACK_OCCUPANCY        Fitted image occupancy (default 0.9)")
	fmt.Println("  DICOMSTACK_DEFAULT_ZOOM     Initial zoom percent (default 100)")
}
