package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunLogger writes the log of a single generation or audit run to both
// stdout and a timestamped file under <dir>/<run>/.
type RunLogger struct {
	file       *os.File
	logger     *log.Logger
	multiWrite io.Writer
	path       string
}

func NewRunLogger(logsDir, runName string) (*RunLogger, error) {
	// Sanitize run name for file system
	sanitized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(runName)), " ", "_")
	if sanitized == "" {
		sanitized = "run"
	}

	if logsDir == "" {
		logsDir = "logs"
	}

	runDir := filepath.Join(logsDir, sanitized)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	logPath := filepath.Join(runDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	multiWrite := io.MultiWriter(os.Stdout, file)
	logger := log.New(multiWrite, "", log.Ldate|log.Ltime|log.Lmicroseconds)

	return &RunLogger{
		file:       file,
		logger:     logger,
		multiWrite: multiWrite,
		path:       logPath,
	}, nil
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.log("INFO", format, v...)
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.log("ERROR", format, v...)
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.log("DEBUG", format, v...)
}

func (rl *RunLogger) log(level string, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	rl.logger.Printf("[%s] %s", level, message)
}

// Path returns the log file location.
func (rl *RunLogger) Path() string {
	return rl.path
}

func (rl *RunLogger) Close() error {
	return rl.file.Close()
}
