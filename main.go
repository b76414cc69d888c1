package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"visualgate/capture"
	"visualgate/compare"
	"visualgate/database"
	"visualgate/imageprocessor"
	"visualgate/logging"
	"visualgate/report"
	"visualgate/signalhandler"
	"visualgate/types"
	"visualgate/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use (OpenCV runs through cgo)
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	// Get the command (capture, compare or history)
	command, hasCommand := args["command"]

	// Setup debug logging if enabled
	debugMode := false
	if _, ok := args["debug"]; ok {
		debugMode = true
		logPath := "visualgate.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
	}

	// Check if required arguments are missing
	showUsage := !hasCommand

	if hasCommand && command == "capture" && args["out"] == "" {
		showUsage = true
	}

	if hasCommand && command == "compare" && args["ref"] == "" {
		showUsage = true
	}

	// Show usage if required arguments are missing
	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "capture":
		handleCaptureCommand(args)
	case "compare":
		handleCompareCommand(args, debugMode)
	case "history":
		handleHistoryCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

func handleCaptureCommand(args map[string]string) {
	outPath := args["out"]

	if err := utils.EnsureDir(filepath.Dir(outPath)); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}

	if err := capture.CaptureScreen(outPath); err != nil {
		log.Fatalf("Capture failed: %v", err)
	}

	fmt.Printf("Saved screenshot to: %s\n", outPath)
}

func handleCompareCommand(args map[string]string, debugMode bool) {
	refPath := args["ref"]

	// Verify the reference exists before doing any work
	if _, err := os.Stat(refPath); os.IsNotExist(err) {
		log.Fatalf("Reference image does not exist: %s", refPath)
	}

	reportDir := "./artifacts"
	if dir, ok := args["report-dir"]; ok && dir != "" {
		reportDir = dir
	}

	// Capture a fresh screenshot when none was supplied
	screenshotPath, hasScreenshot := args["screenshot"]
	if !hasScreenshot || screenshotPath == "" {
		screenshotPath = filepath.Join(reportDir, "screenshot.png")
		if err := utils.EnsureDir(reportDir); err != nil {
			log.Fatalf("Cannot create report directory: %v", err)
		}
		if err := capture.CaptureScreen(screenshotPath); err != nil {
			log.Fatalf("Capture failed: %v", err)
		}
		fmt.Printf("Captured fresh screenshot: %s\n", screenshotPath)
	}

	thresholds := parseThresholds(args)

	if debugMode {
		logging.DebugLog("Comparing ref=%s screenshot=%s", refPath, screenshotPath)
		logging.DebugLog("Thresholds: ssim=%.3f phash=%.3f template=%.3f feature=%.3f/%d",
			thresholds.SSIM, thresholds.PHash, thresholds.Template,
			thresholds.FeatureRatio, thresholds.FeatureMinInliers)
	}

	startTime := time.Now()

	// Load both images up front; loading failures are fatal to the run
	ref, err := imageprocessor.LoadImage(refPath)
	if err != nil {
		log.Fatalf("Error loading reference image: %v", err)
	}
	defer ref.Close()

	screenshot, err := imageprocessor.LoadImage(screenshotPath)
	if err != nil {
		log.Fatalf("Error loading screenshot: %v", err)
	}
	defer screenshot.Close()

	summary, err := compare.Run(ref, screenshot, thresholds)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	// Print per-method results
	fmt.Println("\nResults:")
	for _, r := range summary.PerMethod {
		marker := "FAIL"
		if r.Passed {
			marker = "PASS"
		}
		fmt.Printf("  %-22s score=%.4f  %s\n", r.Method, r.Score, marker)
	}
	fmt.Printf("\nBest: %s (score=%.4f, passed=%v)\n",
		summary.Best.Method, summary.Best.Score, summary.Best.Passed)

	// Write report artifacts unless suppressed
	if _, ok := args["no-report"]; !ok {
		artifacts, err := report.Write(reportDir, refPath, screenshot, summary)
		if err != nil {
			logging.LogWarning("Report writing failed: %v", err)
			fmt.Printf("Warning: report writing failed: %v\n", err)
		} else {
			fmt.Printf("Report: %s\n", artifacts.SummaryPath)
		}
	}

	// Record the run in the history database; never alters the verdict
	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	}
	if db, err := database.InitDatabase(dbPath); err != nil {
		logging.LogWarning("Cannot open run database: %v", err)
	} else {
		defer db.Close()
		if err := database.RecordRun(db, refPath, screenshotPath, summary); err != nil {
			logging.LogWarning("Cannot record run: %v", err)
		}
	}

	fmt.Printf("\nTotal comparison time: %v\n", time.Since(startTime))

	// The exit status is the gate
	if !summary.Best.Passed {
		os.Exit(1)
	}
}

func handleHistoryCommand(args map[string]string) {
	dbPath := utils.GetDefaultDatabasePath()
	if customDB, ok := args["database"]; ok && customDB != "" {
		dbPath = customDB
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		log.Fatalf("Database does not exist: %s. Run a compare first.", dbPath)
	}

	limit := 10
	if limitStr, ok := args["limit"]; ok {
		parsed, err := utils.ParseCount(limitStr, 10)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		limit = parsed
	}

	db, err := database.OpenDatabase(dbPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	runs, err := database.RecentRuns(db, limit)
	if err != nil {
		log.Fatalf("Error reading history: %v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return
	}

	fmt.Println("Recent runs:")
	for _, r := range runs {
		verdict := "FAIL"
		if r.Passed {
			verdict = "PASS"
		}
		fmt.Printf("%4d  %s  %-22s score=%.4f  %s  %s\n",
			r.ID, r.CreatedAt, r.BestMethod, r.BestScore, verdict, r.RefPath)
	}
}

// parseThresholds builds the threshold configuration from CLI flags, keeping
// the defaults for anything unset or invalid.
func parseThresholds(args map[string]string) types.Thresholds {
	thresholds := types.DefaultThresholds()

	if v, ok := args["ssim"]; ok {
		parsed, err := utils.ParseThreshold(v, thresholds.SSIM)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		thresholds.SSIM = parsed
	}
	if v, ok := args["phash"]; ok {
		parsed, err := utils.ParseThreshold(v, thresholds.PHash)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		thresholds.PHash = parsed
	}
	if v, ok := args["template"]; ok {
		parsed, err := utils.ParseThreshold(v, thresholds.Template)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		thresholds.Template = parsed
	}
	if v, ok := args["feature-ratio"]; ok {
		parsed, err := utils.ParseThreshold(v, thresholds.FeatureRatio)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		thresholds.FeatureRatio = parsed
	}
	if v, ok := args["feature-min-inliers"]; ok {
		parsed, err := utils.ParseCount(v, thresholds.FeatureMinInliers)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		thresholds.FeatureMinInliers = parsed
	}

	return thresholds
}
