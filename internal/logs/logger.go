// Package logs keeps Speck's printf-style logging facade over zerolog.
// Logs always go to a file under the XDG config dir; verbose mode mirrors
// them to the console.
package logs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var (
	// Discard until InitLogger runs so library packages can log freely
	// from tests without setup.
	logger  = zerolog.New(io.Discard)
	verbose bool
	logFile *os.File
)

// SetVerbose enables or disables console mirroring. Takes effect at the
// next InitLogger call.
func SetVerbose(v bool) {
	verbose = v
}

// InitLogger opens the log file and configures the level. Level comes from
// SPECK_LOG_LEVEL (debug/info/warn/error), defaulting to info.
func InitLogger() error {
	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		xdg = filepath.Join(home, ".config")
	}
	logDir := filepath.Join(xdg, "speck", "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var err error
	logFile, err = os.OpenFile(filepath.Join(logDir, "speck.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	var w io.Writer = logFile
	if verbose {
		console := zerolog.ConsoleWriter{Out: os.Stderr}
		w = zerolog.MultiLevelWriter(logFile, console)
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("SPECK_LOG_LEVEL"); lvl != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(lvl)); err == nil {
			level = parsed
		}
	}

	logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
	logger.Info().Bool("verbose", verbose).Msg("logger initialized")
	return nil
}

func Debug(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}

func Info(format string, v ...interface{}) {
	logger.Info().Msgf(format, v...)
}

func Warn(format string, v ...interface{}) {
	logger.Warn().Msgf(format, v...)
}

func Error(format string, v ...interface{}) {
	logger.Error().Msgf(format, v...)
}

// Close closes the log file.
func Close() {
	if logFile != nil {
		logFile.Close()
	}
}
