package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. When logDirectory is empty the
// logger writes to stdout, otherwise to <dir>/<runID>.log so each batch
// run keeps its own file.
func New(logDirectory string, runID string) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true

	if logDirectory == "" {
		config.OutputPaths = []string{"stdout"}
	} else {
		if _, err := os.Stat(logDirectory); os.IsNotExist(err) {
			if err := os.MkdirAll(logDirectory, os.ModePerm); err != nil {
				return nil, err
			}
		}
		config.OutputPaths = []string{filepath.Join(logDirectory, runID+".log")}
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
