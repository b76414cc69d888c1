// Package capture produces a screenshot file using the platform's native
// capture tool. It is a collaborator of the comparison engine, not part of it:
// the engine only ever sees decoded images.
package capture

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"

	"visualgate/logging"
)

// CaptureScreen captures the primary display into outPath. The format is
// decided by the tool from the file extension (PNG recommended).
func CaptureScreen(outPath string) error {
	cmd, err := captureCommand(outPath)
	if err != nil {
		return err
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.LogError("screen capture failed: %v, stderr: %s", err, stderr.String())
		return fmt.Errorf("screen capture failed: %v", err)
	}

	logging.LogInfo("Captured screenshot to %s", outPath)
	return nil
}

// captureCommand picks the native tool for the current platform.
func captureCommand(outPath string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		// -x: no sound, -m: main display only
		return exec.Command("screencapture", "-x", "-m", outPath), nil
	case "linux":
		// Try gnome-screenshot first, fall back to scrot
		if _, err := exec.LookPath("gnome-screenshot"); err == nil {
			return exec.Command("gnome-screenshot", "-f", outPath), nil
		}
		if _, err := exec.LookPath("scrot"); err == nil {
			return exec.Command("scrot", "-o", outPath), nil
		}
		return nil, fmt.Errorf("no screenshot tool found (install gnome-screenshot or scrot)")
	default:
		return nil, fmt.Errorf("screen capture not supported on %s", runtime.GOOS)
	}
}
