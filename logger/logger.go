// Package logger wraps zap for structured logging.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log     *zap.Logger
	once    sync.Once
	file    *os.File
	logFile = "datahobbit.log" // Default log file
	level   = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// InitLogger initializes the Zap logger with structured logging.
func InitLogger() {
	once.Do(func() {
		// Configure file logging; a log file that cannot be opened only
		// disables the file core.
		cores := []zapcore.Core{}
		if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
			file = f
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(f), level))
		}

		// Configure console logging
		consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level))

		// Combine both outputs (console + file)
		log = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	})
}

// GetLogger provides access to the initialized logger.
func GetLogger() *zap.Logger {
	if log == nil {
		InitLogger()
	}
	return log
}

// SetLogPath changes the log file used by the next InitLogger.
func SetLogPath(path string) {
	logFile = path
}

// SetLevel changes the minimum level of both outputs. It applies to an
// already initialized logger as well.
func SetLevel(l string) error {
	parsed, err := zapcore.ParseLevel(l)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

// Sync ensures buffered logs are written before the application exits.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

// ResetLogger discards the current logger so the next call initializes a new one.
func ResetLogger() {
	Sync()
	if file != nil {
		_ = file.Close()
		file = nil
	}
	log = nil
	once = sync.Once{}
	level.SetLevel(zap.InfoLevel)
}
