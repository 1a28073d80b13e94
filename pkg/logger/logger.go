package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var L *zap.Logger

func init() {
	var err error
	L, err = build(zapcore.InfoLevel, []string{"stderr"})
	if err != nil {
		panic(err)
	}
}

func build(level zapcore.Level, outputPaths []string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = outputPaths
	return config.Build(zap.AddCallerSkip(1))
}

// Configure 重建全域 logger。outputPaths 為空時丟棄所有輸出 (TUI 模式佔用終端機)
func Configure(level string, outputPaths []string) error {
	if len(outputPaths) == 0 {
		L = zap.NewNop()
		return nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	l, err := build(lvl, outputPaths)
	if err != nil {
		return err
	}
	L = l
	return nil
}

// WithComponent 回傳帶有 component 欄位的 logger，供 MQ、handler、service 等使用
func WithComponent(component string) *zap.Logger {
	return L.With(zap.String("component", component))
}
