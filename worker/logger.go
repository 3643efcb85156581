package worker

import (
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level string `envconfig:"CARDIO_LOG_LEVEL" default:"debug"`
}

func loggerProvider() (*zap.SugaredLogger, error) {
	loggerConfig := LoggerConfig{}
	if err := envconfig.Process("", &loggerConfig); err != nil {
		return nil, err
	}
	level, err := zapcore.ParseLevel(loggerConfig.Level)
	if err != nil {
		return nil, err
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
