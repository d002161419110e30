package logging

import (
	"fmt"
	"path/filepath"
	"time"
)

// LogFilePath builds the per-run log file path using OS-appropriate path
// separators. Each run gets its own file stamped with the run start time.
func LogFilePath(logsDir, toolName string, runStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", toolName, runStart.Format("20060102_150405")),
	)
}
