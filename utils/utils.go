package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// commands recognized on the command line
var commands = []string{"capture", "compare", "history"}

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command (capture/compare/history)
	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		for _, c := range commands {
			if os.Args[i] == c {
				command = c
				commandIndex = i
				break
			}
		}
		if command != "" {
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				// The next argument is the value
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultDatabasePath returns the default path for the run-history database
func GetDefaultDatabasePath() string {
	// Get the executable path
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "visualgate.db"
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exePath)

	// Return the default database path in the same directory
	return filepath.Join(exeDir, "visualgate.db")
}

// EnsureDir creates a directory (and parents) if it does not exist yet
func EnsureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return os.MkdirAll(path, 0755)
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s capture --out=PATH\n", os.Args[0])
	fmt.Printf("  %s compare --ref=PATH --screenshot=PATH [--report-dir=PATH] [--database=PATH]\n", os.Args[0])
	fmt.Printf("            [--ssim=VALUE] [--phash=VALUE] [--template=VALUE]\n")
	fmt.Printf("            [--feature-ratio=VALUE] [--feature-min-inliers=N]\n")
	fmt.Printf("            [--no-report] [--debug] [--logfile=PATH]\n")
	fmt.Printf("  %s history [--database=PATH] [--limit=N]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --out         : Output path for the captured screenshot\n")
	fmt.Printf("  --ref         : Path to the reference image\n")
	fmt.Printf("  --screenshot  : Path to the captured screenshot (omit to capture fresh)\n")
	fmt.Printf("  --report-dir  : Directory for diff/overlay images and the summary JSON (default: ./artifacts)\n")
	fmt.Printf("  --database    : Path to run-history database (default: %s)\n", GetDefaultDatabasePath())
	fmt.Printf("  --ssim        : Structural similarity pass threshold (default: 0.985)\n")
	fmt.Printf("  --phash       : Perceptual hash pass threshold (default: 0.90)\n")
	fmt.Printf("  --template    : Template localization pass threshold (default: 0.95)\n")
	fmt.Printf("  --feature-ratio       : Feature inlier-ratio pass threshold (default: 0.35)\n")
	fmt.Printf("  --feature-min-inliers : Minimum absolute inlier count (default: 12)\n")
	fmt.Printf("  --no-report   : Skip writing report artifacts\n")
	fmt.Printf("  --limit       : Number of history rows to show (default: 10)\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Specify custom log file path (default: visualgate.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s capture --out=./artifacts/screenshot.png\n", os.Args[0])
	fmt.Printf("  %s compare --ref=./refs/login.png --screenshot=./artifacts/screenshot.png --debug\n", os.Args[0])
	fmt.Printf("  %s history --limit=20\n", os.Args[0])
}

// ParseThreshold parses and validates a threshold value from string
func ParseThreshold(thresholdStr string, fallback float64) (float64, error) {
	parsed, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		return fallback, fmt.Errorf("invalid threshold value '%s', using default (%.3f)", thresholdStr, fallback)
	}
	return parsed, nil
}

// ParseCount parses a non-negative integer flag value
func ParseCount(countStr string, fallback int) (int, error) {
	parsed, err := strconv.Atoi(countStr)
	if err != nil || parsed < 0 {
		return fallback, fmt.Errorf("invalid count value '%s', using default (%d)", countStr, fallback)
	}
	return parsed, nil
}
